package contract

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

const selectSQL = `
	SELECT id, supplier_id, contract_number, title, contract_type, start_date, end_date,
	       amount, currency, signed_date, terms, remark, status, created_at, updated_at
	FROM contracts`

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type postgresRepository struct {
	db    *sql.DB
	clock database.Clock
}

// NewPostgresRepository creates a new PostgreSQL contract repository.
func NewPostgresRepository(db *sql.DB, clock database.Clock) Repository {
	return &postgresRepository{db: db, clock: clock}
}

func (r *postgresRepository) Create(ctx context.Context, c *Contract) error {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		database.BeforeWrite(c, r.clock)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contracts
			  (id, supplier_id, contract_number, title, contract_type, start_date, end_date,
			   amount, currency, signed_date, terms, remark, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
			c.ID, c.SupplierID, c.Number, c.Title, c.Type, c.StartDate, c.EndDate,
			c.Amount, c.Currency, database.NullTime(c.SignedDate), database.NullIfEmpty(c.Terms),
			database.NullIfEmpty(c.Remark), c.status, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return err
		}
		return insertChanges(ctx, tx, c)
	})
	return database.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *postgresRepository) Update(ctx context.Context, c *Contract) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return r.update(ctx, tx, c)
	})
}

func (r *postgresRepository) update(ctx context.Context, q queryer, c *Contract) error {
	database.BeforeWrite(c, r.clock)
	err := database.ExecExpectOne(ctx, q, `
		UPDATE contracts
		SET contract_number=$1, title=$2, contract_type=$3, start_date=$4, end_date=$5,
		    amount=$6, currency=$7, signed_date=$8, terms=$9, remark=$10, status=$11, updated_at=$12
		WHERE id=$13`,
		c.Number, c.Title, c.Type, c.StartDate, c.EndDate,
		c.Amount, c.Currency, database.NullTime(c.SignedDate), database.NullIfEmpty(c.Terms),
		database.NullIfEmpty(c.Remark), c.status, c.UpdatedAt, c.ID)
	if err != nil {
		return database.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return database.MapError(insertChanges(ctx, q, c), ErrNotFound, ErrDuplicate)
}

// insertChanges appends the contract's unsaved amount changes.
func insertChanges(ctx context.Context, q queryer, c *Contract) error {
	for _, ch := range c.pendingChanges() {
		_, err := q.ExecContext(ctx, `
			INSERT INTO contract_amount_changes
			  (contract_id, seq, changed_at, previous_amount, new_amount, reason)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			c.ID, ch.Seq, ch.ChangedAt, ch.PreviousAmount, ch.NewAmount, ch.Reason)
		if err != nil {
			return err
		}
	}
	c.markStored()
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Contract, error) {
	return r.load(ctx, r.db, selectSQL+` WHERE id=$1`, id)
}

func (r *postgresRepository) FindOneBy(ctx context.Context, c Criteria) (*Contract, error) {
	var w database.Where
	if c.Number != "" {
		w.Add("contract_number = ?", c.Number)
	}
	if c.SupplierID != uuid.Nil {
		w.Add("supplier_id = ?", c.SupplierID)
	}
	if c.ExcludeID != uuid.Nil {
		w.Add("id <> ?", c.ExcludeID)
	}
	where, args := w.SQL()
	return r.load(ctx, r.db, selectSQL+where+` ORDER BY created_at ASC LIMIT 1`, args...)
}

// load scans one contract and its amount history.
func (r *postgresRepository) load(ctx context.Context, q queryer, query string, args ...any) (*Contract, error) {
	c, err := scanContract(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, database.MapError(err, ErrNotFound, ErrDuplicate)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT seq, changed_at, previous_amount, new_amount, reason
		FROM contract_amount_changes WHERE contract_id=$1 ORDER BY seq`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ch AmountChange
		if err := rows.Scan(&ch.Seq, &ch.ChangedAt, &ch.PreviousAmount, &ch.NewAmount, &ch.Reason); err != nil {
			return nil, err
		}
		c.changes = append(c.changes, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	c.markStored()
	return c, nil
}

func (r *postgresRepository) Search(ctx context.Context, f Filter) ([]*Contract, int, error) {
	var w database.Where
	w.AddSearch(f.Query, "contract_number", "title")
	if f.SupplierID != uuid.Nil {
		w.Add("supplier_id = ?", f.SupplierID)
	}
	if f.Status != "" {
		w.Add("status = ?", f.Status)
	}
	if f.Type != "" {
		w.Add("contract_type = ?", f.Type)
	}

	where, args := w.SQL()
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, largs := w.Limit(f.Page)
	rows, err := r.db.QueryContext(ctx, selectSQL+where+` ORDER BY created_at DESC`+limit, largs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *postgresRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM contracts GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for rows.Next() {
		var s Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}

func (r *postgresRepository) Transition(ctx context.Context, id uuid.UUID, fn func(*Contract) error) (*Contract, error) {
	var out *Contract
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		c, err := r.load(ctx, tx, selectSQL+` WHERE id=$1 FOR UPDATE`, id)
		if err != nil {
			return err
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

func scanContract(row database.Scanner) (*Contract, error) {
	c := &Contract{}
	var signed sql.NullTime
	var terms, remark sql.NullString
	err := row.Scan(&c.ID, &c.SupplierID, &c.Number, &c.Title, &c.Type, &c.StartDate, &c.EndDate,
		&c.Amount, &c.Currency, &signed, &terms, &remark, &c.status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.SignedDate = database.TimePtr(signed)
	c.Terms = terms.String
	c.Remark = remark.String
	return c, nil
}
