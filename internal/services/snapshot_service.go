package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AI2HU/hotspot/internal/db"
	"github.com/AI2HU/hotspot/internal/logger"
	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/window"
)

// SnapshotService records source loads and optionally archives their records.
// Either backend may be nil: without a store snapshots are built but not
// persisted, without an archive Archive is a no-op.
type SnapshotService struct {
	store   db.SnapshotStore
	archive db.RecordArchive
	log     *logger.Logger
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(store db.SnapshotStore, archive db.RecordArchive) *SnapshotService {
	return &SnapshotService{
		store:   store,
		archive: archive,
		log:     logger.Component("snapshots"),
	}
}

// HasStore reports whether snapshots are persisted
func (s *SnapshotService) HasStore() bool {
	return s != nil && s.store != nil
}

// HasArchive reports whether records can be archived
func (s *SnapshotService) HasArchive() bool {
	return s != nil && s.archive != nil
}

// Record builds a snapshot for one load and stores it when a store is configured
func (s *SnapshotService) Record(ctx context.Context, records []models.Record, report *models.LoadReport) (*models.Snapshot, error) {
	var minDate, maxDate *time.Time
	if lo, hi, ok := window.Bounds(records); ok {
		minDate, maxDate = &lo, &hi
	}

	snapshot := models.NewSnapshot(uuid.New().String(), report, minDate, maxDate)
	if !s.HasStore() {
		return snapshot, nil
	}

	if err := s.store.CreateSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}

	s.log.Debug("Recorded snapshot %s (%d records)", snapshot.ID, snapshot.KeptRows)
	return snapshot, nil
}

// Archive stores the records of a snapshot in the record archive
func (s *SnapshotService) Archive(ctx context.Context, snapshotID string, records []models.Record) (int, error) {
	if !s.HasArchive() {
		return 0, nil
	}

	n, err := s.archive.ArchiveRecords(ctx, snapshotID, records)
	if err != nil {
		return n, fmt.Errorf("failed to archive snapshot %s: %w", snapshotID, err)
	}

	s.log.Info("Archived %d records for snapshot %s", n, snapshotID)
	return n, nil
}

// List returns the most recent snapshots, newest first
func (s *SnapshotService) List(ctx context.Context, limit int) ([]*models.Snapshot, error) {
	if !s.HasStore() {
		return []*models.Snapshot{}, nil
	}
	return s.store.ListSnapshots(ctx, limit)
}

// Get returns one snapshot by ID
func (s *SnapshotService) Get(ctx context.Context, id string) (*models.Snapshot, error) {
	if !s.HasStore() {
		return nil, fmt.Errorf("%w: %s", db.ErrSnapshotNotFound, id)
	}
	return s.store.GetSnapshot(ctx, id)
}

// Latest returns the most recent snapshot
func (s *SnapshotService) Latest(ctx context.Context) (*models.Snapshot, error) {
	if !s.HasStore() {
		return nil, db.ErrSnapshotNotFound
	}
	return s.store.LatestSnapshot(ctx)
}

// ArchivedCounts aggregates an archived snapshot inside the record archive
func (s *SnapshotService) ArchivedCounts(ctx context.Context, snapshotID string, w models.DateWindow) ([]models.CategoryCount, []models.CategoryMonthCount, error) {
	if !s.HasArchive() {
		return nil, nil, fmt.Errorf("record archive is not configured")
	}

	byCategory, err := s.archive.CountByCategory(ctx, snapshotID, w)
	if err != nil {
		return nil, nil, err
	}
	byMonth, err := s.archive.CountByCategoryAndMonth(ctx, snapshotID, w)
	if err != nil {
		return nil, nil, err
	}
	return byCategory, byMonth, nil
}
