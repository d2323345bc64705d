package main

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/config"
	"github.com/georgemunganga/supplyhub/internal/modules/contract"
	"github.com/georgemunganga/supplyhub/internal/modules/evaluation"
	"github.com/georgemunganga/supplyhub/internal/modules/operator"
	"github.com/georgemunganga/supplyhub/internal/modules/qualification"
	"github.com/georgemunganga/supplyhub/internal/modules/supplier"
	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

// repositories bundles the persistence backends of every module.
type repositories struct {
	suppliers      supplier.Repository
	contacts       supplier.ContactRepository
	qualifications qualification.Repository
	contracts      contract.Repository
	evaluations    evaluation.Repository
	operators      operator.Repository

	close func() error
}

// openStorage builds the repositories for the configured driver.
func openStorage(ctx context.Context, cfg config.StorageConfig) (*repositories, error) {
	clock := database.Clock(database.UTC)

	if cfg.Driver == config.DriverMemory {
		return memoryRepositories(clock), nil
	}

	db, err := database.Open(ctx, cfg.DatabaseURL, database.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	return postgresRepositories(db, clock), nil
}

// supplierScoped is implemented by memory stores holding rows owned by a
// supplier.
type supplierScoped interface {
	DeleteBySupplier(supplierID uuid.UUID)
}

func memoryRepositories(clock database.Clock) *repositories {
	repos := &repositories{
		contacts:       supplier.NewContactMemoryRepository(clock),
		qualifications: qualification.NewMemoryRepository(clock),
		contracts:      contract.NewMemoryRepository(clock),
		evaluations:    evaluation.NewMemoryRepository(clock),
		operators:      operator.NewMemoryRepository(clock),
		close:          func() error { return nil },
	}
	var cascade []func(uuid.UUID)
	for _, dep := range []any{repos.contacts, repos.qualifications, repos.contracts, repos.evaluations} {
		if s, ok := dep.(supplierScoped); ok {
			cascade = append(cascade, s.DeleteBySupplier)
		}
	}
	repos.suppliers = supplier.NewMemoryRepository(clock, cascade...)
	return repos
}

func postgresRepositories(db *sql.DB, clock database.Clock) *repositories {
	return &repositories{
		suppliers:      supplier.NewPostgresRepository(db, clock),
		contacts:       supplier.NewContactPostgresRepository(db, clock),
		qualifications: qualification.NewPostgresRepository(db, clock),
		contracts:      contract.NewPostgresRepository(db, clock),
		evaluations:    evaluation.NewPostgresRepository(db, clock),
		operators:      operator.NewPostgresRepository(db, clock),
		close:          db.Close,
	}
}
