package physics

// Physics constants shared by every stage.
const (
	Restitution    = 0.85 // ball-vs-ball energy retention, independent of per-ball elasticity
	MaxRandomSpeed = 10.0 // upper bound of each velocity component on random respawn

	DefaultRadius     = 10.0
	DefaultMass       = 1.0
	DefaultGravity    = 1.0
	DefaultElasticity = 0.98
	DefaultFriction   = 0.8
)
