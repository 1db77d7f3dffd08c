package physics

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidRadius = errors.New("radius must be a finite positive number")
	ErrInvalidMass   = errors.New("mass must be a finite positive number")
	ErrInvalidStage  = errors.New("stage size must be finite and positive")
)

// ValidateBallParams rejects a radius or mass that collision resolution cannot handle.
// NewBall and Fill do not call it; it is meant for input crossing a service boundary.
func ValidateBallParams(radius, mass float64) error {
	if !finitePositive(radius) {
		return fmt.Errorf("%w: got %v", ErrInvalidRadius, radius)
	}
	if !finitePositive(mass) {
		return fmt.Errorf("%w: got %v", ErrInvalidMass, mass)
	}
	return nil
}

// ValidateStageSize rejects a stage the border pass cannot contain balls in.
func ValidateStageSize(width, height float64) error {
	if !finitePositive(width) || !finitePositive(height) {
		return fmt.Errorf("%w: got %vx%v", ErrInvalidStage, width, height)
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}
