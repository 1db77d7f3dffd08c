package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const metadataTable = "schema_migrations_migrate"

var ErrNoDatabaseURL = errors.New("database URL is empty")

var versionPrefix = regexp.MustCompile(`^0*([0-9]+)_.*\.up\.sql$`)

// RunMigrations applies the SQL files in ./migrations.
func RunMigrations(databaseURL string) error {
	return RunMigrationsFrom(databaseURL, "migrations")
}

// RunMigrationsFrom applies the SQL files in dir. A database that already has
// simulation_runs but no migrate metadata is baselined to the newest version.
func RunMigrationsFrom(databaseURL, dir string) error {
	if databaseURL == "" {
		return ErrNoDatabaseURL
	}

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer sqlDB.Close()

	driver, err := pg.WithInstance(sqlDB, &pg.Config{MigrationsTable: metadataTable})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if needsBaseline(sqlDB) {
		if latest := LatestVersion(dir); latest > 0 {
			log.Printf("[MIGRATE] Existing schema without metadata; baselining to version %d", latest)
			if err := m.Force(int(latest)); err != nil {
				log.Printf("[MIGRATE] Force to version %d failed: %v", latest, err)
			}
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		log.Printf("[MIGRATE] Could not read schema version: %v", verr)
	}
	log.Printf("[MIGRATE] Schema at version %d (dirty=%v)", version, dirty)
	return nil
}

func needsBaseline(db *sql.DB) bool {
	var runsExist, metaExist bool
	if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name='simulation_runs')`).Scan(&runsExist); err != nil || !runsExist {
		return false
	}
	if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)`, metadataTable).Scan(&metaExist); err != nil {
		return false
	}
	return !metaExist
}

// LatestVersion returns the highest numeric prefix among the *.up.sql files in dir.
func LatestVersion(dir string) int64 {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	var latest int64
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		match := versionPrefix.FindStringSubmatch(f.Name())
		if len(match) < 2 {
			continue
		}
		v, _ := strconv.ParseInt(match[1], 10, 64)
		latest = max(latest, v)
	}
	return latest
}
