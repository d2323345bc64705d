package evaluation

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

const selectSQL = `
	SELECT id, supplier_id, title, period, period_start, period_end, evaluator,
	       overall_score, grade, comments, status, created_at, updated_at
	FROM performance_evaluations`

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type postgresRepository struct {
	db    *sql.DB
	clock database.Clock
}

// NewPostgresRepository creates a new PostgreSQL evaluation repository.
func NewPostgresRepository(db *sql.DB, clock database.Clock) Repository {
	return &postgresRepository{db: db, clock: clock}
}

func (r *postgresRepository) Create(ctx context.Context, e *Evaluation) error {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		database.BeforeWrite(e, r.clock)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO performance_evaluations
			  (id, supplier_id, title, period, period_start, period_end, evaluator,
			   overall_score, grade, comments, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			e.ID, e.SupplierID, e.Title, e.Period, database.NullTime(e.PeriodStart), database.NullTime(e.PeriodEnd),
			e.Evaluator, e.OverallScore, database.NullIfEmpty(string(e.Grade)), database.NullIfEmpty(e.Comments),
			e.status, e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return err
		}
		return insertItems(ctx, tx, e)
	})
	return database.MapError(err, ErrNotFound, err)
}

func (r *postgresRepository) Update(ctx context.Context, e *Evaluation) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return r.update(ctx, tx, e)
	})
}

func (r *postgresRepository) update(ctx context.Context, q queryer, e *Evaluation) error {
	database.BeforeWrite(e, r.clock)
	err := database.ExecExpectOne(ctx, q, `
		UPDATE performance_evaluations
		SET title=$1, period=$2, period_start=$3, period_end=$4, evaluator=$5,
		    overall_score=$6, grade=$7, comments=$8, status=$9, updated_at=$10
		WHERE id=$11`,
		e.Title, e.Period, database.NullTime(e.PeriodStart), database.NullTime(e.PeriodEnd), e.Evaluator,
		e.OverallScore, database.NullIfEmpty(string(e.Grade)), database.NullIfEmpty(e.Comments),
		e.status, e.UpdatedAt, e.ID)
	if err != nil {
		return database.MapError(err, ErrNotFound, err)
	}
	return insertItems(ctx, q, e)
}

// insertItems writes the evaluation's unsaved items.
func insertItems(ctx context.Context, q queryer, e *Evaluation) error {
	for _, it := range e.pendingItems() {
		_, err := q.ExecContext(ctx, `
			INSERT INTO evaluation_items
			  (id, evaluation_id, name, item_type, weight, score, max_score, unit, remark, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			it.ID, e.ID, it.Name, it.Type, it.Weight, it.Score, it.MaxScore,
			database.NullIfEmpty(it.Unit), database.NullIfEmpty(it.Remark), it.CreatedAt, it.UpdatedAt)
		if err != nil {
			return err
		}
	}
	e.markStored()
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Evaluation, error) {
	return r.load(ctx, r.db, selectSQL+` WHERE id=$1`, id)
}

func (r *postgresRepository) FindOneBy(ctx context.Context, c Criteria) (*Evaluation, error) {
	var w database.Where
	if c.SupplierID != uuid.Nil {
		w.Add("supplier_id = ?", c.SupplierID)
	}
	if c.Period != "" {
		w.Add("period = ?", c.Period)
	}
	where, args := w.SQL()
	return r.load(ctx, r.db, selectSQL+where+` ORDER BY created_at DESC LIMIT 1`, args...)
}

// load scans one evaluation and its items.
func (r *postgresRepository) load(ctx context.Context, q queryer, query string, args ...any) (*Evaluation, error) {
	e, err := scanEvaluation(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, database.MapError(err, ErrNotFound, err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, evaluation_id, name, item_type, weight, score, max_score, unit, remark, created_at, updated_at
		FROM evaluation_items WHERE evaluation_id=$1 ORDER BY created_at, id`, e.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		var unit, remark sql.NullString
		err := rows.Scan(&it.ID, &it.EvaluationID, &it.Name, &it.Type, &it.Weight, &it.Score, &it.MaxScore,
			&unit, &remark, &it.CreatedAt, &it.UpdatedAt)
		if err != nil {
			return nil, err
		}
		it.Unit = unit.String
		it.Remark = remark.String
		e.items = append(e.items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	e.markStored()
	return e, nil
}

func (r *postgresRepository) Search(ctx context.Context, f Filter) ([]*Evaluation, int, error) {
	var w database.Where
	w.AddSearch(f.Query, "title", "period", "evaluator")
	if f.SupplierID != uuid.Nil {
		w.Add("supplier_id = ?", f.SupplierID)
	}
	if f.Status != "" {
		w.Add("status = ?", f.Status)
	}
	if f.Grade != "" {
		w.Add("grade = ?", f.Grade)
	}

	where, args := w.SQL()
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM performance_evaluations`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, largs := w.Limit(f.Page)
	rows, err := r.db.QueryContext(ctx, selectSQL+where+` ORDER BY created_at DESC`+limit, largs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *postgresRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM performance_evaluations GROUP BY status`)
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

func (r *postgresRepository) Transition(ctx context.Context, id uuid.UUID, fn func(*Evaluation) error) (*Evaluation, error) {
	var out *Evaluation
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		e, err := r.load(ctx, tx, selectSQL+` WHERE id=$1 FOR UPDATE`, id)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
		if err := r.update(ctx, tx, e); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanEvaluation(row database.Scanner) (*Evaluation, error) {
	e := &Evaluation{}
	var start, end sql.NullTime
	var grade, comments sql.NullString
	err := row.Scan(&e.ID, &e.SupplierID, &e.Title, &e.Period, &start, &end, &e.Evaluator,
		&e.OverallScore, &grade, &comments, &e.status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.PeriodStart = database.TimePtr(start)
	e.PeriodEnd = database.TimePtr(end)
	e.Grade = Grade(grade.String)
	e.Comments = comments.String
	return e, nil
}
