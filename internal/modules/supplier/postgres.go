package supplier

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

const selectSupplierSQL = `
	SELECT id, name, legal_name, short_name, registration_number, tax_number,
	       legal_address, business_address, legal_representative, supplier_type,
	       cooperation_model, industry, website, remark, status, created_at, updated_at
	FROM suppliers`

type postgresRepository struct {
	db    *sql.DB
	clock database.Clock
}

// NewPostgresRepository creates a new PostgreSQL supplier repository.
func NewPostgresRepository(db *sql.DB, clock database.Clock) Repository {
	return &postgresRepository{db: db, clock: clock}
}

func (r *postgresRepository) Create(ctx context.Context, s *Supplier) error {
	database.BeforeWrite(s, r.clock)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO suppliers
		  (id, name, legal_name, short_name, registration_number, tax_number,
		   legal_address, business_address, legal_representative, supplier_type,
		   cooperation_model, industry, website, remark, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		s.ID, s.Name, s.LegalName, database.NullIfEmpty(s.ShortName), s.RegistrationNumber, s.TaxNumber,
		s.LegalAddress, database.NullIfEmpty(s.BusinessAddress), database.NullIfEmpty(s.LegalRepresentative),
		s.Type, s.CooperationModel, database.NullIfEmpty(s.Industry), database.NullIfEmpty(s.Website),
		database.NullIfEmpty(s.Remark), s.status, s.CreatedAt, s.UpdatedAt)
	return database.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *postgresRepository) Update(ctx context.Context, s *Supplier) error {
	return r.update(ctx, r.db, s)
}

func (r *postgresRepository) update(ctx context.Context, e interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, s *Supplier) error {
	database.BeforeWrite(s, r.clock)
	err := database.ExecExpectOne(ctx, e, `
		UPDATE suppliers
		SET name=$1, legal_name=$2, short_name=$3, registration_number=$4, tax_number=$5,
		    legal_address=$6, business_address=$7, legal_representative=$8, supplier_type=$9,
		    cooperation_model=$10, industry=$11, website=$12, remark=$13, status=$14, updated_at=$15
		WHERE id=$16`,
		s.Name, s.LegalName, database.NullIfEmpty(s.ShortName), s.RegistrationNumber, s.TaxNumber,
		s.LegalAddress, database.NullIfEmpty(s.BusinessAddress), database.NullIfEmpty(s.LegalRepresentative),
		s.Type, s.CooperationModel, database.NullIfEmpty(s.Industry), database.NullIfEmpty(s.Website),
		database.NullIfEmpty(s.Remark), s.status, s.UpdatedAt, s.ID)
	return database.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := database.ExecExpectOne(ctx, r.db, `DELETE FROM suppliers WHERE id=$1`, id)
	return database.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	s, err := scanSupplier(r.db.QueryRowContext(ctx, selectSupplierSQL+` WHERE id=$1`, id))
	return s, database.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *postgresRepository) FindOneBy(ctx context.Context, c Criteria) (*Supplier, error) {
	var w database.Where
	if c.Name != "" {
		w.Add("name = ?", c.Name)
	}
	if c.RegistrationNumber != "" {
		w.Add("registration_number = ?", c.RegistrationNumber)
	}
	if c.TaxNumber != "" {
		w.Add("tax_number = ?", c.TaxNumber)
	}
	if c.ExcludeID != uuid.Nil {
		w.Add("id <> ?", c.ExcludeID)
	}
	where, args := w.SQL()
	s, err := scanSupplier(r.db.QueryRowContext(ctx, selectSupplierSQL+where+` ORDER BY created_at ASC LIMIT 1`, args...))
	return s, database.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *postgresRepository) Search(ctx context.Context, f Filter) ([]*Supplier, int, error) {
	var w database.Where
	w.AddSearch(f.Query, "name", "legal_name", "short_name", "registration_number", "tax_number")
	if f.Status != "" {
		w.Add("status = ?", f.Status)
	}
	if f.Type != "" {
		w.Add("supplier_type = ?", f.Type)
	}
	if f.CooperationModel != "" {
		w.Add("cooperation_model = ?", f.CooperationModel)
	}

	where, args := w.SQL()
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM suppliers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, largs := w.Limit(f.Page)
	rows, err := r.db.QueryContext(ctx, selectSupplierSQL+where+` ORDER BY created_at DESC`+limit, largs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var suppliers []*Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, total, rows.Err()
}

func (r *postgresRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM suppliers GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Transition locks the supplier row for the duration of fn so that two
// concurrent transitions cannot both pass the same precondition.
func (r *postgresRepository) Transition(ctx context.Context, id uuid.UUID, fn func(*Supplier) error) (*Supplier, error) {
	var out *Supplier
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		s, err := scanSupplier(tx.QueryRowContext(ctx, selectSupplierSQL+` WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return database.MapError(err, ErrNotFound, ErrDuplicate)
		}
		if err := fn(s); err != nil {
			return err
		}
		if err := r.update(ctx, tx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanSupplier(row database.Scanner) (*Supplier, error) {
	s := &Supplier{}
	var shortName, businessAddr, legalRep, industry, website, remark sql.NullString
	err := row.Scan(
		&s.ID, &s.Name, &s.LegalName, &shortName, &s.RegistrationNumber, &s.TaxNumber,
		&s.LegalAddress, &businessAddr, &legalRep, &s.Type,
		&s.CooperationModel, &industry, &website, &remark, &s.status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.ShortName = shortName.String
	s.BusinessAddress = businessAddr.String
	s.LegalRepresentative = legalRep.String
	s.Industry = industry.String
	s.Website = website.String
	s.Remark = remark.String
	return s, nil
}
