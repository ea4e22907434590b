package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"cycletracker/internal/cycle/models"
	"cycletracker/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

// Schema returns the DDL for the cycle tables. Applied by deployments and by
// the integration-test container manager.
func Schema() string { return schema }

// Postgres persists cycles in PostgreSQL. The single-open-cycle invariant is
// enforced by a partial unique index, so concurrent transitions fail cleanly
// at the storage layer rather than racing.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateCycle(ctx context.Context, startDate models.Date) (*models.Cycle, error) {
	c := &models.Cycle{ID: uuid.New(), StartDate: startDate}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cycles (id, start_date, end_date) VALUES ($1, $2, NULL)`,
		c.ID, c.StartDate)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("create cycle: %w", err)
	}
	return c, nil
}

func (s *Postgres) FindCurrent(ctx context.Context) (*models.Cycle, error) {
	return s.findOne(ctx,
		`SELECT id, start_date, end_date FROM cycles WHERE end_date IS NULL`)
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.Cycle, error) {
	return s.findOne(ctx,
		`SELECT id, start_date, end_date FROM cycles WHERE id = $1`, id)
}

func (s *Postgres) findOne(ctx context.Context, query string, args ...any) (*models.Cycle, error) {
	var c models.Cycle
	var endDate sql.Null[models.Date]
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.StartDate, &endDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find cycle: %w", err)
	}
	if endDate.Valid {
		c.EndDate = &endDate.V
	}
	if err := s.loadObservations(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Postgres) FindAllClosed(ctx context.Context) ([]*models.Cycle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start_date, end_date FROM cycles
		 WHERE end_date IS NOT NULL ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list closed cycles: %w", err)
	}
	defer rows.Close()

	var cycles []*models.Cycle
	for rows.Next() {
		var c models.Cycle
		var endDate sql.Null[models.Date]
		if err := rows.Scan(&c.ID, &c.StartDate, &endDate); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		if endDate.Valid {
			c.EndDate = &endDate.V
		}
		cycles = append(cycles, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list closed cycles: %w", err)
	}
	for _, c := range cycles {
		if err := s.loadObservations(ctx, c); err != nil {
			return nil, err
		}
	}
	return cycles, nil
}

func (s *Postgres) loadObservations(ctx context.Context, c *models.Cycle) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day_number, date, COALESCE(code, '') FROM observations
		 WHERE cycle_id = $1 ORDER BY day_number`, c.ID)
	if err != nil {
		return fmt.Errorf("load observations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var obs models.Observation
		if err := rows.Scan(&obs.DayNumber, &obs.Date, &obs.Code); err != nil {
			return fmt.Errorf("scan observation: %w", err)
		}
		c.Observations = append(c.Observations, obs)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load observations: %w", err)
	}
	return nil
}

func (s *Postgres) FindObservation(ctx context.Context, cycleID uuid.UUID, dayNumber int) (*models.Observation, error) {
	var obs models.Observation
	err := s.db.QueryRowContext(ctx,
		`SELECT day_number, date, COALESCE(code, '') FROM observations
		 WHERE cycle_id = $1 AND day_number = $2`, cycleID, dayNumber).
		Scan(&obs.DayNumber, &obs.Date, &obs.Code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find observation: %w", err)
	}
	return &obs, nil
}

func (s *Postgres) UpsertObservation(ctx context.Context, cycleID uuid.UUID, obs models.Observation) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO observations (cycle_id, day_number, date, code)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (cycle_id, day_number)
		 DO UPDATE SET date = EXCLUDED.date, code = EXCLUDED.code`,
		cycleID, obs.DayNumber, obs.Date, obs.Code)
	if err != nil {
		if isForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("upsert observation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("upsert observation: no rows affected")
	}
	return nil
}

func (s *Postgres) UpdateCycleEndDate(ctx context.Context, cycleID uuid.UUID, endDate models.Date) error {
	return s.closeCycle(ctx, s.db, cycleID, endDate)
}

// CloseAndStartNext performs the close-and-open transition in one
// transaction. The UPDATE re-checks end_date IS NULL, so a cycle closed by a
// concurrent request yields sentinel.ErrInvalidState instead of a double
// transition.
func (s *Postgres) CloseAndStartNext(ctx context.Context, cycleID uuid.UUID, endDate, nextStart models.Date) (*models.Cycle, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.closeCycle(ctx, tx, cycleID, endDate); err != nil {
		return nil, err
	}

	next := &models.Cycle{ID: uuid.New(), StartDate: nextStart}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cycles (id, start_date, end_date) VALUES ($1, $2, NULL)`,
		next.ID, next.StartDate); err != nil {
		if isUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("create next cycle: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return next, nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) closeCycle(ctx context.Context, db querier, cycleID uuid.UUID, endDate models.Date) error {
	res, err := db.ExecContext(ctx,
		`UPDATE cycles SET end_date = $2 WHERE id = $1 AND end_date IS NULL`,
		cycleID, endDate)
	if err != nil {
		return fmt.Errorf("close cycle: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close cycle: %w", err)
	}
	if n == 0 {
		// Either the cycle does not exist or it is already closed. Read
		// through the same handle so the check sees the transaction's view.
		var exists bool
		if err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM cycles WHERE id = $1)`, cycleID).
			Scan(&exists); err != nil {
			return fmt.Errorf("close cycle: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
