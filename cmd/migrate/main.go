package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/georgemunganga/supplyhub/internal/platform/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "DATABASE_URL"

func main() {
	var (
		dsn     = flag.String("dsn", "", "Database connection string (default $DATABASE_URL)")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	_ = godotenv.Load()
	log, err := logger.New(logger.Config{Level: "info", Environment: os.Getenv("APP_ENV"), ServiceName: "supplyhub-migrate"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if *dsn == "" {
		*dsn = os.Getenv(envDSN)
	}
	if *dsn == "" {
		log.Fatal("no database connection string; pass -dsn or set " + envDSN)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		log.Fatal("failed to create migration source", zap.Error(err))
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, *dsn)
	if err != nil {
		log.Fatal("failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatal("failed to get version", zap.Error(err))
		}
		log.Info("current version", zap.Uint("version", v), zap.Bool("dirty", dirty))
	case forceSet:
		if err := m.Force(*force); err != nil {
			log.Fatal("failed to force version", zap.Error(err))
		}
		log.Info("forced version", zap.Int("version", *force))
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("failed to run up migrations", zap.Error(err))
		}
		log.Info("migrations applied")
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("failed to run down migrations", zap.Error(err))
		}
		log.Info("migrations reverted")
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		log.Info("migration steps applied", zap.Int("steps", *steps))
	default:
		fmt.Println("usage: migrate [-dsn <connection-string>] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}
