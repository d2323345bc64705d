package operator

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

const selectSQL = `
	SELECT id, email, password_hash, display_name, role, created_at, updated_at
	FROM operators`

type postgresRepository struct {
	db    *sql.DB
	clock database.Clock
}

// NewPostgresRepository creates a new PostgreSQL operator repository.
func NewPostgresRepository(db *sql.DB, clock database.Clock) Repository {
	return &postgresRepository{db: db, clock: clock}
}

func (r *postgresRepository) Create(ctx context.Context, o *Operator) error {
	database.BeforeWrite(o, r.clock)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO operators (id, email, password_hash, display_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.Email, o.PasswordHash, o.DisplayName, o.Role, o.CreatedAt, o.UpdatedAt)
	return database.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Operator, error) {
	o, err := scanOperator(r.db.QueryRowContext(ctx, selectSQL+` WHERE id = $1`, id))
	return o, database.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*Operator, error) {
	o, err := scanOperator(r.db.QueryRowContext(ctx, selectSQL+` WHERE email = $1`, strings.ToLower(email)))
	return o, database.MapError(err, ErrNotFound, ErrDuplicate)
}

func scanOperator(row database.Scanner) (*Operator, error) {
	o := &Operator{}
	err := row.Scan(&o.ID, &o.Email, &o.PasswordHash, &o.DisplayName, &o.Role, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}
