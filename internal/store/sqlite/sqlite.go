// Package sqlite is an embedded SQL storage engine backed by the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/store"
	"github.com/MrSnakeDoc/statusboard/internal/store/migrations"
)

const serviceColumns = `id, name, normalized_name, category, description, website,
	status, reports_count, trend, created_at, updated_at`

const reportColumns = `id, service_id, service_name, problem_type, description, location, created_at`

// Store persists services and reports in a single SQLite file.
//
// The pool is limited to one connection: SQLite allows a single writer and
// this turns every atomic unit into a serialized transaction.
type Store struct {
	db   *sql.DB
	path string
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies
// pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := migrations.UpSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Engine returns the engine name.
func (s *Store) Engine() string { return store.EngineSQLite }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Atomic runs fn inside a database transaction.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(ctx, &txn{q: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ServiceByID fetches a service by identifier.
func (s *Store) ServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	return (&txn{q: s.db}).ServiceByID(ctx, id)
}

// ServiceByNormalizedName fetches a service by normalized name.
func (s *Store) ServiceByNormalizedName(ctx context.Context, normalized string) (*domain.Service, error) {
	return (&txn{q: s.db}).ServiceByNormalizedName(ctx, normalized)
}

// ListServices returns every service.
func (s *Store) ListServices(ctx context.Context) ([]*domain.Service, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+serviceColumns+` FROM services
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
	query := `SELECT ` + reportColumns + ` FROM reports` + where + ` ORDER BY created_at DESC, rowid DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]*domain.Report, 0)
	for rows.Next() {
		var (
			r       domain.Report
			problem string
			created int64
		)
		if err := rows.Scan(&r.ID, &r.ServiceID, &r.ServiceName, &problem, &r.Description, &r.Location, &created); err != nil {
			return nil, err
		}
		r.ProblemType = domain.ProblemType(problem)
		r.Timestamp = fromNanos(created)
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}

// CountReports counts matching reports.
func (s *Store) CountReports(ctx context.Context, filter domain.ReportFilter) (int, error) {
	where, args := reportWhere(filter)
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM reports`+where, args...).Scan(&count); err != nil {
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
		args = append(args, toNanos(filter.Since))
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !filter.Until.IsZero() {
		args = append(args, toNanos(filter.Until))
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txn struct {
	q querier
}

func (t *txn) ServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	row := t.q.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	return scanServiceRow(row)
}

func (t *txn) ServiceByNormalizedName(ctx context.Context, normalized string) (*domain.Service, error) {
	row := t.q.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE normalized_name = $1`, normalized)
	return scanServiceRow(row)
}

func (t *txn) InsertService(ctx context.Context, svc *domain.Service) error {
	const query = `INSERT INTO services (` + serviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := t.q.ExecContext(ctx, query,
		svc.ID,
		svc.Name,
		svc.NormalizedName,
		svc.Category,
		svc.Description,
		svc.Website,
		string(svc.Status),
		svc.ReportsCount,
		string(svc.Trend),
		toNanos(svc.CreatedAt),
		toNanos(svc.UpdatedAt),
	)
	if isUniqueViolation(err) {
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
	res, err := t.q.ExecContext(ctx, query,
		svc.ID,
		svc.Name,
		svc.Category,
		svc.Description,
		svc.Website,
		string(svc.Status),
		svc.ReportsCount,
		string(svc.Trend),
		toNanos(svc.UpdatedAt),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t *txn) InsertReport(ctx context.Context, r *domain.Report) error {
	const query = `INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := t.q.ExecContext(ctx, query,
		r.ID,
		r.ServiceID,
		r.ServiceName,
		string(r.ProblemType),
		r.Description,
		r.Location,
		toNanos(r.Timestamp),
	)
	if isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanServiceRow(row *sql.Row) (*domain.Service, error) {
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return svc, err
}

func scanService(row rowScanner) (*domain.Service, error) {
	var (
		svc              domain.Service
		status, trend    string
		created, updated int64
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
		&created,
		&updated,
	); err != nil {
		return nil, err
	}
	svc.Status = domain.Status(status)
	svc.Trend = domain.Trend(trend)
	svc.CreatedAt = fromNanos(created)
	svc.UpdatedAt = fromNanos(updated)
	return &svc, nil
}

func isUniqueViolation(err error) bool {
	return isConstraintViolation(err, "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return isConstraintViolation(err, "FOREIGN KEY constraint failed")
}

func isConstraintViolation(err error, message string) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	// Primary code check works whether or not extended result codes are on.
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(sqliteErr.Error(), message)
}

func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }
