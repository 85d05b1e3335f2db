package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AI2HU/hotspot/internal/db"
	"github.com/AI2HU/hotspot/internal/models"
)

// MongoDB implements db.RecordArchive
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	config   *models.Config
}

var _ db.RecordArchive = (*MongoDB)(nil)

const (
	collHotspots = "hotspots"

	insertBatchSize = 1000
)

// New creates a new MongoDB database instance
func New(config *models.Config) (*MongoDB, error) {
	if !config.Enabled() {
		return nil, fmt.Errorf("mongodb uri is required")
	}
	return &MongoDB{
		config: config,
	}, nil
}

// Connect establishes connection to MongoDB
func (m *MongoDB) Connect(ctx context.Context) error {
	clientOptions := options.Client().ApplyURI(m.config.URI)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.database = client.Database(m.config.Database)

	if err := m.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}

// Ping checks the database connection
func (m *MongoDB) Ping(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("not connected to database")
	}
	return m.client.Ping(ctx, nil)
}

func (m *MongoDB) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "snapshot_id", Value: 1},
				{Key: "date", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "snapshot_id", Value: 1},
				{Key: "category_a", Value: 1},
			},
		},
	}

	_, err := m.database.Collection(collHotspots).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create hotspot indexes: %w", err)
	}
	return nil
}

// hotspotDocument is the archived form of a record. date and year_month are
// precomputed so window matching and monthly grouping stay inside the pipeline.
type hotspotDocument struct {
	SnapshotID string            `bson:"snapshot_id"`
	Timestamp  *time.Time        `bson:"timestamp,omitempty"`
	Date       *time.Time        `bson:"date,omitempty"`
	YearMonth  string            `bson:"year_month,omitempty"`
	CategoryA  string            `bson:"category_a,omitempty"`
	CategoryB  string            `bson:"category_b,omitempty"`
	Latitude   *float64          `bson:"latitude,omitempty"`
	Longitude  *float64          `bson:"longitude,omitempty"`
	Attributes map[string]string `bson:"attributes,omitempty"`
	ArchivedAt time.Time         `bson:"archived_at"`
}

func toDocument(snapshotID string, r models.Record, archivedAt time.Time) hotspotDocument {
	doc := hotspotDocument{
		SnapshotID: snapshotID,
		Timestamp:  r.Timestamp,
		CategoryA:  r.CategoryA,
		CategoryB:  r.CategoryB,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		Attributes: r.Attributes,
		ArchivedAt: archivedAt,
	}
	if d, ok := r.Date(); ok {
		doc.Date = &d
		doc.YearMonth = d.Format(models.MonthLayout)
	}
	return doc
}

// ArchiveRecords stores every record under snapshotID, in batches
func (m *MongoDB) ArchiveRecords(ctx context.Context, snapshotID string, records []models.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	coll := m.database.Collection(collHotspots)
	now := time.Now().UTC()
	inserted := 0

	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}

		docs := make([]interface{}, 0, end-start)
		for _, r := range records[start:end] {
			docs = append(docs, toDocument(snapshotID, r, now))
		}

		result, err := coll.InsertMany(ctx, docs)
		if err != nil {
			return inserted, fmt.Errorf("failed to archive records: %w", err)
		}
		inserted += len(result.InsertedIDs)
	}

	return inserted, nil
}

// CountByCategory aggregates archived records per category_a
func (m *MongoDB) CountByCategory(ctx context.Context, snapshotID string, window models.DateWindow) ([]models.CategoryCount, error) {
	results := make([]models.CategoryCount, 0)
	if window.IsInverted() {
		return results, nil
	}

	cursor, err := m.database.Collection(collHotspots).Aggregate(ctx, categoryPipeline(snapshotID, window))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate category counts: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode category counts: %w", err)
	}
	return results, nil
}

// CountByCategoryAndMonth aggregates archived records per (category_b, month)
func (m *MongoDB) CountByCategoryAndMonth(ctx context.Context, snapshotID string, window models.DateWindow) ([]models.CategoryMonthCount, error) {
	results := make([]models.CategoryMonthCount, 0)
	if window.IsInverted() {
		return results, nil
	}

	cursor, err := m.database.Collection(collHotspots).Aggregate(ctx, categoryMonthPipeline(snapshotID, window))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly counts: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode monthly counts: %w", err)
	}
	return results, nil
}

// windowMatch selects one snapshot's records inside the window with a
// non-empty value in field
func windowMatch(snapshotID string, window models.DateWindow, field string) bson.M {
	return bson.M{
		"$match": bson.M{
			"snapshot_id": snapshotID,
			"date": bson.M{
				"$gte": window.Start,
				"$lte": window.End,
			},
			field: bson.M{"$nin": bson.A{"", nil}},
		},
	}
}

func categoryPipeline(snapshotID string, window models.DateWindow) []bson.M {
	return []bson.M{
		windowMatch(snapshotID, window, "category_a"),
		{
			"$group": bson.M{
				"_id":   "$category_a",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$sort": bson.D{
				{Key: "count", Value: -1},
				{Key: "_id", Value: 1},
			},
		},
	}
}

func categoryMonthPipeline(snapshotID string, window models.DateWindow) []bson.M {
	return []bson.M{
		windowMatch(snapshotID, window, "category_b"),
		{
			"$group": bson.M{
				"_id": bson.M{
					"category":   "$category_b",
					"year_month": "$year_month",
				},
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"_id":        0,
				"category":   "$_id.category",
				"year_month": "$_id.year_month",
				"count":      1,
			},
		},
		{
			"$sort": bson.D{
				{Key: "year_month", Value: 1},
				{Key: "category", Value: 1},
			},
		},
	}
}
