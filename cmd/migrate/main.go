package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	_ "github.com/lib/pq"
	flag "github.com/spf13/pflag"

	"github.com/yourusername/testps-api/internal/config"
	"github.com/yourusername/testps-api/pkg/database"
)

const usage = `Usage: migrate [flags] <command>

Commands:
  up              apply all pending migrations
  down            roll back the last migration
  force <version> set the version and clear the dirty flag
  version         print the current version

Flags:
`

func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "config/config.yaml"), "path to config file")
	steps := flag.Int("steps", 1, "number of migrations to roll back with 'down'")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Read(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		log.Fatal("database configuration (host, dbname, user) is incomplete")
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	m, err := database.NewMigrator(db)
	if err != nil {
		log.Fatal(err)
	}

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-*steps)
	case "force":
		if flag.NArg() < 2 {
			log.Fatal("force requires a version")
		}
		var version int
		if _, scanErr := fmt.Sscanf(flag.Arg(1), "%d", &version); scanErr != nil {
			log.Fatalf("invalid version %q: %v", flag.Arg(1), scanErr)
		}
		fmt.Printf("Forcing migration version to %d to clean dirty state...\n", version)
		err = m.Force(version)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrateV4.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return
		}
		if verr != nil {
			log.Fatal(verr)
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return
	default:
		flag.Usage()
		log.Fatalf("unknown command %q", cmd)
	}

	if errors.Is(err, migrateV4.ErrNoChange) {
		fmt.Println("No change.")
		return
	}
	if err != nil {
		log.Fatalf("Migration %s failed: %v", flag.Arg(0), err)
	}
	fmt.Println("Success!")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
