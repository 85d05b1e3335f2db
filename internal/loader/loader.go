package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/AI2HU/hotspot/internal/config"
	"github.com/AI2HU/hotspot/internal/logger"
	"github.com/AI2HU/hotspot/internal/models"
)

// Options controls how a source is fetched and how its columns map onto records
type Options struct {
	Columns          config.ColumnConfig
	HotspotKind      string
	DateLayouts      []string
	DayFirst         bool // ambiguous dates are day-first, including the dateparse fallback
	Timeout          time.Duration
	MinFetchInterval time.Duration
	FetchBurst       int
}

// OptionsFromConfig builds loader options from the application config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Columns:          cfg.Columns,
		HotspotKind:      cfg.HotspotKind,
		DateLayouts:      cfg.DateLayouts,
		DayFirst:         cfg.DayFirst,
		Timeout:          cfg.Source.Timeout.Std(),
		MinFetchInterval: cfg.Source.MinFetchInterval.Std(),
		FetchBurst:       cfg.Source.FetchBurst,
	}
}

// Loader turns a CSV source into records. Concurrent loads of the same
// source share one fetch.
type Loader struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
	group   singleflight.Group
	log     *logger.Logger
}

type loaded struct {
	records []models.Record
	report  *models.LoadReport
}

// New creates a loader. A nil client uses http.DefaultClient.
func New(opts Options, client *http.Client) *Loader {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if len(opts.DateLayouts) == 0 {
		opts.DateLayouts = DefaultDateLayouts
		if opts.DayFirst {
			opts.DateLayouts = DayFirstDateLayouts
		}
	}
	if opts.FetchBurst <= 0 {
		opts.FetchBurst = 1
	}
	if client == nil {
		client = http.DefaultClient
	}

	limit := rate.Inf
	if opts.MinFetchInterval > 0 {
		limit = rate.Every(opts.MinFetchInterval)
	}

	return &Loader{
		opts:    opts,
		client:  client,
		limiter: rate.NewLimiter(limit, opts.FetchBurst),
		log:     logger.Component("loader"),
	}
}

// Load fetches source and parses it into records. Errors wrap
// ErrSourceUnavailable, or ErrThrottled when the fetch could not be
// scheduled within the timeout; bad cells degrade to missing values and are
// counted in the report. A caller joining a load already in flight gets its
// result, so cancelling ctx never aborts the fetch for the other callers.
func (l *Loader) Load(ctx context.Context, source string) ([]models.Record, *models.LoadReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, source, err)
	}

	ch := l.group.DoChan(source, func() (interface{}, error) {
		records, report, err := l.load(context.WithoutCancel(ctx), source)
		if err != nil {
			return nil, err
		}
		return &loaded{records: records, report: report}, nil
	})

	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, source, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, nil, res.Err
		}
		out := res.Val.(*loaded)
		report := *out.report
		return append([]models.Record(nil), out.records...), &report, nil
	}
}

func (l *Loader) load(ctx context.Context, source string) ([]models.Record, *models.LoadReport, error) {
	start := time.Now()
	l.log.Debug("Fetching %s", source)

	data, err := l.fetch(ctx, source)
	if err != nil {
		l.log.Error("Failed to load source: %v", err)
		return nil, nil, err
	}

	records, report, err := l.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, source, err)
	}
	report.Source = source
	report.FetchedAt = start.UTC()

	l.log.Info("Loaded %d records from %s (%d rows, %d other kind, %d malformed) in %s",
		report.KeptRows, source, report.TotalRows, report.OtherKindRows, report.MalformedRows,
		time.Since(start).Round(time.Millisecond))

	return records, report, nil
}

// columnIndex holds header positions; -1 means the column is absent
type columnIndex struct {
	timestamp, clock, kind, categoryA, categoryB, latitude, longitude int
}

func (l *Loader) indexHeader(header []string) (columnIndex, []string) {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	find := func(name string) int {
		if name == "" || name == config.ColumnDisabled {
			return -1
		}
		for i, n := range names {
			if n == name {
				return i
			}
		}
		return -1
	}

	cols := l.opts.Columns
	return columnIndex{
		timestamp: find(cols.Timestamp),
		clock:     find(cols.Time),
		kind:      find(cols.Kind),
		categoryA: find(cols.CategoryA),
		categoryB: find(cols.CategoryB),
		latitude:  find(cols.Latitude),
		longitude: find(cols.Longitude),
	}, names
}

// Parse reads CSV with a header row. An empty input yields no records.
// Rows whose kind column is present and not the configured hotspot kind are
// dropped; when the kind column is absent or disabled every row is kept.
func (l *Loader) Parse(r io.Reader) ([]models.Record, *models.LoadReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records := make([]models.Record, 0)
	report := &models.LoadReport{}

	header, err := reader.Read()
	if err == io.EOF {
		return records, report, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx, names := l.indexHeader(header)
	report.KindFiltered = idx.kind >= 0
	if idx.timestamp < 0 {
		l.log.Warning("Timestamp column %q not found; every row will be undated", l.opts.Columns.Timestamp)
	}

	mapped := map[int]bool{idx.timestamp: true, idx.categoryA: true, idx.categoryB: true, idx.latitude: true, idx.longitude: true}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				report.TotalRows++
				report.MalformedRows++
				l.log.Debug("Skipping unreadable row: %v", err)
				continue
			}
			return nil, nil, fmt.Errorf("failed to read row: %w", err)
		}
		if isBlankRow(row) {
			continue
		}
		report.TotalRows++

		if idx.kind >= 0 && strings.TrimSpace(cell(row, idx.kind)) != l.opts.HotspotKind {
			report.OtherKindRows++
			continue
		}

		rec, malformed := l.toRecord(row, idx, names, mapped)
		if malformed {
			report.MalformedRows++
		}
		records = append(records, rec)
	}

	report.KeptRows = len(records)
	return records, report, nil
}

// toRecord converts one CSV row. malformed is true when a timestamp or
// coordinate cell was present but unreadable.
func (l *Loader) toRecord(row []string, idx columnIndex, names []string, mapped map[int]bool) (models.Record, bool) {
	var rec models.Record
	malformed := false

	if ts, ok := parseTimestamp(cell(row, idx.timestamp), l.opts.DateLayouts, l.opts.DayFirst); ok {
		if idx.clock >= 0 {
			ts = withClock(ts, cell(row, idx.clock))
		}
		rec.Timestamp = &ts
	} else {
		malformed = true
	}

	rec.CategoryA = categoryValue(cell(row, idx.categoryA))
	rec.CategoryB = categoryValue(cell(row, idx.categoryB))

	var ok bool
	if rec.Latitude, ok = parseCoordinate(cell(row, idx.latitude), 90); !ok {
		malformed = true
	}
	if rec.Longitude, ok = parseCoordinate(cell(row, idx.longitude), 180); !ok {
		malformed = true
	}

	for i, name := range names {
		if mapped[i] || name == "" || i >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[i])
		if v == "" {
			continue
		}
		if rec.Attributes == nil {
			rec.Attributes = make(map[string]string)
		}
		rec.Attributes[name] = v
	}

	return rec, malformed
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func categoryValue(s string) string {
	if isEmptyCell(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

// parseCoordinate returns nil for empty cells. ok is false when the cell held
// something that is not a coordinate within ±limit. Decimal commas are accepted.
func parseCoordinate(s string, limit float64) (*float64, bool) {
	s = strings.TrimSpace(s)
	if isEmptyCell(s) {
		return nil, true
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < -limit || v > limit {
		return nil, false
	}
	return &v, true
}
