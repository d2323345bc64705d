package qualification

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

const selectSQL = `
	SELECT id, supplier_id, name, qualification_type, certificate_number, issuing_authority,
	       issued_date, expiry_date, attachment_url, remark, is_active, status, created_at, updated_at
	FROM supplier_qualifications`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type postgresRepository struct {
	db    *sql.DB
	clock database.Clock
}

// NewPostgresRepository creates a new PostgreSQL qualification repository.
func NewPostgresRepository(db *sql.DB, clock database.Clock) Repository {
	return &postgresRepository{db: db, clock: clock}
}

func (r *postgresRepository) Create(ctx context.Context, q *Qualification) error {
	database.BeforeWrite(q, r.clock)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO supplier_qualifications
		  (id, supplier_id, name, qualification_type, certificate_number, issuing_authority,
		   issued_date, expiry_date, attachment_url, remark, is_active, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		q.ID, q.SupplierID, q.Name, q.Type, q.CertificateNumber, database.NullIfEmpty(q.IssuingAuthority),
		database.NullTime(q.IssuedDate), database.NullTime(q.ExpiryDate), database.NullIfEmpty(q.AttachmentURL),
		database.NullIfEmpty(q.Remark), q.IsActive, q.status, q.CreatedAt, q.UpdatedAt)
	return database.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *postgresRepository) Update(ctx context.Context, q *Qualification) error {
	return r.update(ctx, r.db, q)
}

func (r *postgresRepository) update(ctx context.Context, e execer, q *Qualification) error {
	database.BeforeWrite(q, r.clock)
	err := database.ExecExpectOne(ctx, e, `
		UPDATE supplier_qualifications
		SET name=$1, qualification_type=$2, certificate_number=$3, issuing_authority=$4,
		    issued_date=$5, expiry_date=$6, attachment_url=$7, remark=$8, is_active=$9,
		    status=$10, updated_at=$11
		WHERE id=$12`,
		q.Name, q.Type, q.CertificateNumber, database.NullIfEmpty(q.IssuingAuthority),
		database.NullTime(q.IssuedDate), database.NullTime(q.ExpiryDate), database.NullIfEmpty(q.AttachmentURL),
		database.NullIfEmpty(q.Remark), q.IsActive, q.status, q.UpdatedAt, q.ID)
	return database.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Qualification, error) {
	q, err := scanQualification(r.db.QueryRowContext(ctx, selectSQL+` WHERE id=$1`, id))
	return q, database.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *postgresRepository) FindOneBy(ctx context.Context, c Criteria) (*Qualification, error) {
	var w database.Where
	if c.SupplierID != uuid.Nil {
		w.Add("supplier_id = ?", c.SupplierID)
	}
	if c.CertificateNumber != "" {
		w.Add("certificate_number = ?", c.CertificateNumber)
	}
	where, args := w.SQL()
	q, err := scanQualification(r.db.QueryRowContext(ctx, selectSQL+where+` ORDER BY created_at ASC LIMIT 1`, args...))
	return q, database.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *postgresRepository) Search(ctx context.Context, f Filter) ([]*Qualification, int, error) {
	var w database.Where
	w.AddSearch(f.Query, "name", "qualification_type", "certificate_number", "issuing_authority")
	if f.SupplierID != uuid.Nil {
		w.Add("supplier_id = ?", f.SupplierID)
	}
	if f.Status != "" {
		w.Add("status = ?", f.Status)
	}

	where, args := w.SQL()
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM supplier_qualifications`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, largs := w.Limit(f.Page)
	rows, err := r.db.QueryContext(ctx, selectSQL+where+` ORDER BY created_at DESC`+limit, largs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Qualification
	for rows.Next() {
		q, err := scanQualification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

func (r *postgresRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM supplier_qualifications GROUP BY status`)
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

func (r *postgresRepository) ListDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM supplier_qualifications WHERE status=$1 AND expiry_date < $2 ORDER BY expiry_date`,
		StatusApproved, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresRepository) Transition(ctx context.Context, id uuid.UUID, fn func(*Qualification) error) (*Qualification, error) {
	var out *Qualification
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		q, err := scanQualification(tx.QueryRowContext(ctx, selectSQL+` WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return database.MapError(err, ErrNotFound, ErrDuplicate)
		}
		if err := fn(q); err != nil {
			return err
		}
		if err := r.update(ctx, tx, q); err != nil {
			return err
		}
		out = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanQualification(row database.Scanner) (*Qualification, error) {
	q := &Qualification{}
	var authority, attachment, remark sql.NullString
	var issued, expiry sql.NullTime
	err := row.Scan(&q.ID, &q.SupplierID, &q.Name, &q.Type, &q.CertificateNumber, &authority,
		&issued, &expiry, &attachment, &remark, &q.IsActive, &q.status, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	q.IssuingAuthority = authority.String
	q.AttachmentURL = attachment.String
	q.Remark = remark.String
	q.IssuedDate = database.TimePtr(issued)
	q.ExpiryDate = database.TimePtr(expiry)
	return q, nil
}
