// Package postgres is the PostgreSQL storage engine built on pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/store"
	"github.com/MrSnakeDoc/statusboard/internal/store/migrations"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const serviceColumns = `id, name, normalized_name, category, description, website,
	status, reports_count, trend, created_at, updated_at`

const reportColumns = `id, service_id, service_name, problem_type, description, location, created_at`

// Store implements store.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Open creates a pool for dsn. Connections are established lazily, so
// callers should Ping before serving.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("configure database pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Target returns host:port/database of the pool without credentials.
func (s *Store) Target() string {
	cfg := s.pool.Config().ConnConfig
	return fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
}

// Migrate applies pending schema migrations through a database/sql view
// of the pool.
func (s *Store) Migrate(ctx context.Context) ([]migrations.Result, error) {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	return migrations.UpPostgres(runCtx, db)
}

// Engine returns the engine name.
func (s *Store) Engine() string { return store.EnginePostgres }

// Ping checks the pool.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Atomic runs fn inside a transaction. Rows read through tx by identifier
// are locked until commit.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	pgTx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = pgTx.Rollback(ctx) }()

	if err := fn(ctx, &txn{q: pgTx, lock: true}); err != nil {
		return err
	}
	if err := pgTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ServiceByID fetches a service by identifier.
func (s *Store) ServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	return (&txn{q: s.pool}).ServiceByID(ctx, id)
}

// ServiceByNormalizedName fetches a service by normalized name.
func (s *Store) ServiceByNormalizedName(ctx context.Context, normalized string) (*domain.Service, error) {
	return (&txn{q: s.pool}).ServiceByNormalizedName(ctx, normalized)
}

// ListServices returns every service.
func (s *Store) ListServices(ctx context.Context) ([]*domain.Service, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+serviceColumns+` FROM services
		ORDER BY reports_count DESC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

// ListReports returns matching reports newest first.
func (s *Store) ListReports(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error) {
	where, args := reportWhere(filter)
	query := `SELECT ` + reportColumns + ` FROM reports` + where + ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]*domain.Report, 0)
	for rows.Next() {
		var (
			r       domain.Report
			problem string
		)
		if err := rows.Scan(&r.ID, &r.ServiceID, &r.ServiceName, &problem, &r.Description, &r.Location, &r.Timestamp); err != nil {
			return nil, err
		}
		r.ProblemType = domain.ProblemType(problem)
		r.Timestamp = r.Timestamp.UTC()
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}

// CountReports counts matching reports.
func (s *Store) CountReports(ctx context.Context, filter domain.ReportFilter) (int, error) {
	where, args := reportWhere(filter)
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(1) FROM reports`+where, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func reportWhere(filter domain.ReportFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.ServiceID != "" {
		args = append(args, filter.ServiceID)
		clauses = append(clauses, fmt.Sprintf("service_id = $%d", len(args)))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since.UTC())
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !filter.Until.IsZero() {
		args = append(args, filter.Until.UTC())
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txn struct {
	q    querier
	lock bool
}

func (t *txn) forUpdate() string {
	if t.lock {
		return " FOR UPDATE"
	}
	return ""
}

func (t *txn) ServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	row := t.q.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`+t.forUpdate(), id)
	return scanServiceRow(row)
}

func (t *txn) ServiceByNormalizedName(ctx context.Context, normalized string) (*domain.Service, error) {
	row := t.q.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE normalized_name = $1`+t.forUpdate(), normalized)
	return scanServiceRow(row)
}

func (t *txn) InsertService(ctx context.Context, svc *domain.Service) error {
	const query = `INSERT INTO services (` + serviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := t.q.Exec(ctx, query,
		svc.ID,
		svc.Name,
		svc.NormalizedName,
		svc.Category,
		svc.Description,
		svc.Website,
		string(svc.Status),
		svc.ReportsCount,
		string(svc.Trend),
		svc.CreatedAt.UTC(),
		svc.UpdatedAt.UTC(),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrServiceExists
	}
	return err
}

func (t *txn) UpdateService(ctx context.Context, svc *domain.Service) error {
	const query = `UPDATE services
		SET name = $2,
			category = $3,
			description = $4,
			website = $5,
			status = $6,
			reports_count = $7,
			trend = $8,
			updated_at = $9
		WHERE id = $1`
	tag, err := t.q.Exec(ctx, query,
		svc.ID,
		svc.Name,
		svc.Category,
		svc.Description,
		svc.Website,
		string(svc.Status),
		svc.ReportsCount,
		string(svc.Trend),
		svc.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t *txn) InsertReport(ctx context.Context, r *domain.Report) error {
	const query = `INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := t.q.Exec(ctx, query,
		r.ID,
		r.ServiceID,
		r.ServiceName,
		string(r.ProblemType),
		r.Description,
		r.Location,
		r.Timestamp.UTC(),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return domain.ErrNotFound
	}
	return err
}

func scanServiceRow(row pgx.Row) (*domain.Service, error) {
	svc, err := scanService(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return svc, err
}

func scanService(row pgx.Row) (*domain.Service, error) {
	var (
		svc           domain.Service
		status, trend string
	)
	if err := row.Scan(
		&svc.ID,
		&svc.Name,
		&svc.NormalizedName,
		&svc.Category,
		&svc.Description,
		&svc.Website,
		&status,
		&svc.ReportsCount,
		&trend,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	svc.Status = domain.Status(status)
	svc.Trend = domain.Trend(trend)
	svc.CreatedAt = svc.CreatedAt.UTC()
	svc.UpdatedAt = svc.UpdatedAt.UTC()
	return &svc, nil
}
