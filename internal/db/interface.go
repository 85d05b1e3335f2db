package db

import (
	"context"
	"errors"

	"github.com/AI2HU/hotspot/internal/models"
)

// ErrSnapshotNotFound is returned when a snapshot ID does not exist
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore keeps the history of source loads (SQLite)
type SnapshotStore interface {
	// Connection management
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	// Snapshot operations
	CreateSnapshot(ctx context.Context, snapshot *models.Snapshot) error
	GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]*models.Snapshot, error)
	LatestSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// RecordArchive stores the records of each snapshot for later aggregation (MongoDB)
type RecordArchive interface {
	// Connection management
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	ArchiveRecords(ctx context.Context, snapshotID string, records []models.Record) (int, error)

	// Aggregations over one archived snapshot, restricted to a date window
	CountByCategory(ctx context.Context, snapshotID string, window models.DateWindow) ([]models.CategoryCount, error)
	CountByCategoryAndMonth(ctx context.Context, snapshotID string, window models.DateWindow) ([]models.CategoryMonthCount, error)
}
