package jobs

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"dubber/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// DatabaseFile is the sqlite file shared by all persistent state.
const DatabaseFile = "dubber.db"

// ErrNotFound indicates the requested job does not exist.
var ErrNotFound = errors.New("job not found")

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database under cfg's data
// directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.DataDir, DatabaseFile))
}

// OpenPath connects directly to the sqlite file at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Pragmas applied via Exec only reach the connection that runs them,
	// and a second pooled connection without busy_timeout hits
	// SQLITE_BUSY as soon as a submit races a progress update. Keep the
	// pool at a single connection so every statement sees the pragmas.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the sqlite file backing this store.
func (s *Store) Path() string {
	return s.path
}

// DB exposes the shared connection for sibling stores on the same file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Create inserts job as a new row.
func (s *Store) Create(ctx context.Context, job *Job) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
            id, owner_id, audio_dir, video_dir, output_dir, status,
            progress_percent, progress_message, error_message,
            created_at, updated_at, completed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.OwnerID,
		job.AudioDir,
		job.VideoDir,
		job.OutputDir,
		job.Status,
		job.ProgressPercent,
		job.ProgressMessage,
		job.ErrorMessage,
		job.CreatedAt.Format(time.RFC3339Nano),
		job.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(job.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetByID fetches a single job.
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return job, nil
}

// Update persists the current state of job. The updated timestamp is
// refreshed as a side effect.
func (s *Store) Update(ctx context.Context, job *Job) error {
	job.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET
            status = ?, progress_percent = ?, progress_message = ?,
            error_message = ?, updated_at = ?, completed_at = ?
        WHERE id = ?`,
		job.Status,
		job.ProgressPercent,
		job.ProgressMessage,
		job.ErrorMessage,
		job.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(job.CompletedAt),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job %s: %w", job.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job %s: rows affected: %w", job.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner returns the owner's jobs, newest first. A non-positive
// limit returns everything.
func (s *Store) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Job, error) {
	query := selectColumns + ` FROM jobs WHERE owner_id = ? ORDER BY created_at DESC`
	args := []any{ownerID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs for %s: %w", ownerID, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		result = append(result, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return result, nil
}

// CountActive counts the owner's pending and running jobs.
func (s *Store) CountActive(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM jobs WHERE owner_id = ? AND status IN (?, ?)`,
		ownerID, StatusPending, StatusRunning,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active jobs for %s: %w", ownerID, err)
	}
	return count, nil
}

// FailActive marks every pending and running job as failed with the
// given message. Used at daemon shutdown so no job is left dangling.
func (s *Store) FailActive(ctx context.Context, message string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET
            status = ?, progress_percent = -1, progress_message = ?,
            error_message = ?, updated_at = ?, completed_at = ?
        WHERE status IN (?, ?)`,
		StatusFailed, message, message, now, now,
		StatusPending, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("fail active jobs: %w", err)
	}
	return res.RowsAffected()
}

const selectColumns = `SELECT
    id, owner_id, audio_dir, video_dir, output_dir, status,
    progress_percent, progress_message, error_message,
    created_at, updated_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job         Job
		status      string
		createdAt   string
		updatedAt   string
		completedAt sql.NullString
	)
	err := row.Scan(
		&job.ID, &job.OwnerID, &job.AudioDir, &job.VideoDir, &job.OutputDir,
		&status, &job.ProgressPercent, &job.ProgressMessage, &job.ErrorMessage,
		&createdAt, &updatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, ok := ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("unknown status %q for job %s", status, job.ID)
	}
	job.Status = parsed

	if job.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if job.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if completedAt.Valid {
		ts, err := time.Parse(time.RFC3339Nano, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		job.CompletedAt = &ts
	}
	return &job, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
