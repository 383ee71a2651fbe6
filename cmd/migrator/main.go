package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var migrationPath, databaseURL string
	var down bool
	flag.StringVar(&databaseURL, "database_url", "", "Database URL without the postgres:// scheme")
	flag.StringVar(&migrationPath, "migration-path", "./migrations", "Path to the migrations")
	flag.BoolVar(&down, "down", false, "Roll back every migration")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("MIGRATE_DATABASE_URL")
	}
	if databaseURL == "" {
		panic("database URL is required")
	}

	m, err := migrate.New("file://"+migrationPath, fmt.Sprintf("postgres://%s", databaseURL))
	if err != nil {
		panic(err)
	}
	defer m.Close()

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("no migrations to apply")
			return
		}
		panic(err)
	}

	version, dirty, _ := m.Version()
	slog.Info("migrations applied", "version", version, "dirty", dirty, "down", down)
}
