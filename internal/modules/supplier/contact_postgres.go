package supplier

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

const selectContactSQL = `
	SELECT id, supplier_id, name, position, email, phone, is_primary, created_at, updated_at
	FROM supplier_contacts`

type contactPostgresRepository struct {
	db    *sql.DB
	clock database.Clock
}

// NewContactPostgresRepository creates a new PostgreSQL contact repository.
func NewContactPostgresRepository(db *sql.DB, clock database.Clock) ContactRepository {
	return &contactPostgresRepository{db: db, clock: clock}
}

func (r *contactPostgresRepository) Create(ctx context.Context, c *Contact) error {
	database.BeforeWrite(c, r.clock)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO supplier_contacts
		  (id, supplier_id, name, position, email, phone, is_primary, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.SupplierID, c.Name, database.NullIfEmpty(c.Position), database.NullIfEmpty(c.Email),
		database.NullIfEmpty(c.Phone), c.IsPrimary, c.CreatedAt, c.UpdatedAt)
	return database.MapError(err, ErrContactNotFound, ErrDuplicate)
}

func (r *contactPostgresRepository) Update(ctx context.Context, c *Contact) error {
	return r.update(ctx, r.db, c)
}

func (r *contactPostgresRepository) update(ctx context.Context, e interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, c *Contact) error {
	database.BeforeWrite(c, r.clock)
	err := database.ExecExpectOne(ctx, e, `
		UPDATE supplier_contacts
		SET name=$1, position=$2, email=$3, phone=$4, is_primary=$5, updated_at=$6
		WHERE id=$7`,
		c.Name, database.NullIfEmpty(c.Position), database.NullIfEmpty(c.Email),
		database.NullIfEmpty(c.Phone), c.IsPrimary, c.UpdatedAt, c.ID)
	return database.MapError(err, ErrContactNotFound, ErrDuplicate)
}

func (r *contactPostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := database.ExecExpectOne(ctx, r.db, `DELETE FROM supplier_contacts WHERE id=$1`, id)
	return database.MapError(err, ErrContactNotFound, ErrDuplicate)
}

func (r *contactPostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Contact, error) {
	c, err := scanContact(r.db.QueryRowContext(ctx, selectContactSQL+` WHERE id=$1`, id))
	return c, database.MapError(err, ErrContactNotFound, ErrDuplicate)
}

func (r *contactPostgresRepository) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		selectContactSQL+` WHERE supplier_id=$1 ORDER BY is_primary DESC, created_at ASC`, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *contactPostgresRepository) Transition(ctx context.Context, id uuid.UUID, fn func(*Contact) error) (*Contact, error) {
	var out *Contact
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		c, err := scanContact(tx.QueryRowContext(ctx, selectContactSQL+` WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return database.MapError(err, ErrContactNotFound, ErrDuplicate)
		}
		if err := fn(c); err != nil {
			return err
		}
		if err := r.update(ctx, tx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanContact(row database.Scanner) (*Contact, error) {
	c := &Contact{}
	var position, email, phone sql.NullString
	if err := row.Scan(&c.ID, &c.SupplierID, &c.Name, &position, &email, &phone,
		&c.IsPrimary, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Position = position.String
	c.Email = email.String
	c.Phone = phone.String
	return c, nil
}
