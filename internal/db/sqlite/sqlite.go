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

	_ "github.com/mattn/go-sqlite3"

	"github.com/AI2HU/hotspot/internal/db"
	"github.com/AI2HU/hotspot/internal/models"
)

// SQLite implements db.SnapshotStore
type SQLite struct {
	db     *sql.DB
	config *models.Config
}

var _ db.SnapshotStore = (*SQLite)(nil)

// New creates a new SQLite database instance
func New(config *models.Config) (*SQLite, error) {
	if config == nil || config.URI == "" {
		return nil, fmt.Errorf("sqlite database path is required")
	}
	return &SQLite{
		config: config,
	}, nil
}

// Path resolves the configured URI, expanding ~ and making it absolute
func (s *SQLite) Path() (string, error) {
	dbPath := s.config.URI
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, dbPath[1:]), nil
	}
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	return absPath, nil
}

// Connect opens the database and applies migrations
func (s *SQLite) Connect(ctx context.Context) error {
	dbPath, err := s.Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database at path '%s': %w", dbPath, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping SQLite database at path '%s': %w", dbPath, err)
	}

	if err := db.RunMigrations(conn); err != nil {
		conn.Close()
		return err
	}

	s.db = conn
	return nil
}

// Disconnect closes the SQLite connection
func (s *SQLite) Disconnect(ctx context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection
func (s *SQLite) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("not connected to database")
	}
	return s.db.PingContext(ctx)
}

// SchemaVersion returns the applied migration version
func (s *SQLite) SchemaVersion() (uint, bool, error) {
	if s.db == nil {
		return 0, false, fmt.Errorf("not connected to database")
	}
	return db.MigrationVersion(s.db)
}

const snapshotColumns = `id, source, fetched_at, total_rows, kept_rows, other_kind_rows, malformed_rows, kind_filtered, min_date, max_date`

// CreateSnapshot stores a new snapshot
func (s *SQLite) CreateSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now().UTC()
	}

	query := `INSERT INTO snapshots (` + snapshotColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		snapshot.ID,
		snapshot.Source,
		snapshot.FetchedAt.UTC(),
		snapshot.TotalRows,
		snapshot.KeptRows,
		snapshot.OtherKindRows,
		snapshot.MalformedRows,
		snapshot.KindFiltered,
		nullTime(snapshot.MinDate),
		nullTime(snapshot.MaxDate),
	)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	return nil
}

// GetSnapshot retrieves a snapshot by ID
func (s *SQLite) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots WHERE id = ?`

	snapshot, err := scanSnapshot(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", db.ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// LatestSnapshot returns the most recently fetched snapshot
func (s *SQLite) LatestSnapshot(ctx context.Context) (*models.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots ORDER BY fetched_at DESC LIMIT 1`

	snapshot, err := scanSnapshot(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ListSnapshots lists snapshots newest first. A limit <= 0 returns all of them.
func (s *SQLite) ListSnapshots(ctx context.Context, limit int) ([]*models.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots ORDER BY fetched_at DESC`
	args := []interface{}{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*models.Snapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row scanner) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	var minDate, maxDate sql.NullTime

	err := row.Scan(
		&snapshot.ID,
		&snapshot.Source,
		&snapshot.FetchedAt,
		&snapshot.TotalRows,
		&snapshot.KeptRows,
		&snapshot.OtherKindRows,
		&snapshot.MalformedRows,
		&snapshot.KindFiltered,
		&minDate,
		&maxDate,
	)
	if err != nil {
		return nil, err
	}

	snapshot.FetchedAt = snapshot.FetchedAt.UTC()
	snapshot.MinDate = timePtr(minDate)
	snapshot.MaxDate = timePtr(maxDate)
	return &snapshot, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
