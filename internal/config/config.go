package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AI2HU/hotspot/internal/models"
)

// DefaultSourceURI is the published hotspot spreadsheet
const DefaultSourceURI = "https://docs.google.com/spreadsheets/d/e/2PACX-1vQTbJg8ZlumI6gCGSj0ayEiKYeskiVmxtBR81PSjACW-hmAMJFycXtcen-TZ2bJCp23C9g69aMCdXor/pub?output=csv"

// Default map view used when no boundary file is configured
const (
	DefaultCenterLat = -0.5
	DefaultCenterLon = 110.5
	DefaultZoom      = 7
)

// Config represents the application configuration
type Config struct {
	Source        SourceConfig   `yaml:"source"`
	Columns       ColumnConfig   `yaml:"columns"`
	HotspotKind   string         `yaml:"hotspot_kind"`
	DateLayouts   []string       `yaml:"date_layouts,omitempty"`
	DayFirst      bool           `yaml:"day_first,omitempty"` // read 03/04/2024 as 3 April when date_layouts is empty
	Map           MapConfig      `yaml:"map"`
	SQLDatabase   DatabaseConfig `yaml:"sql_database"`   // SQLite for snapshot history
	NoSQLDatabase DatabaseConfig `yaml:"nosql_database"` // MongoDB record archive, disabled when uri is empty
	Refresh       RefreshConfig  `yaml:"refresh"`
	CORSOrigin    string         `yaml:"cors_origin,omitempty"`
	LogLevel      string         `yaml:"log_level,omitempty"`
}

// SourceConfig describes where the bulk CSV comes from
type SourceConfig struct {
	URI              string   `yaml:"uri"` // http(s) URL or local path
	Timeout          Duration `yaml:"timeout"`
	MinFetchInterval Duration `yaml:"min_fetch_interval"`
	FetchBurst       int      `yaml:"fetch_burst,omitempty"` // fetches allowed back to back before min_fetch_interval applies
}

// ColumnDisabled as a column name switches that mapping off, e.g. kind: "-"
// keeps every row regardless of its kind.
const ColumnDisabled = "-"

// ColumnConfig maps source header names onto record fields
type ColumnConfig struct {
	Timestamp string `yaml:"timestamp"`
	Time      string `yaml:"time,omitempty"`
	Kind      string `yaml:"kind,omitempty"`
	CategoryA string `yaml:"category_a"`
	CategoryB string `yaml:"category_b"`
	Latitude  string `yaml:"latitude"`
	Longitude string `yaml:"longitude"`
}

// MapConfig holds the map view handed to the presentation layer
type MapConfig struct {
	BoundaryPath string  `yaml:"boundary_path,omitempty"`
	Basemap      string  `yaml:"basemap,omitempty"`
	CenterLat    float64 `yaml:"center_lat"`
	CenterLon    float64 `yaml:"center_lon"`
	Zoom         int     `yaml:"zoom"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Provider string            `yaml:"provider"` // sqlite, mongodb
	URI      string            `yaml:"uri"`
	Database string            `yaml:"database"`
	Options  map[string]string `yaml:"options,omitempty"`
}

// RefreshConfig controls the background snapshot scheduler
type RefreshConfig struct {
	Cron string `yaml:"cron"`
}

// Duration is a time.Duration that reads and writes as "10s", "5m", ...
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			URI:              DefaultSourceURI,
			Timeout:          Duration(10 * time.Second),
			MinFetchInterval: Duration(2 * time.Second),
			FetchBurst:       4,
		},
		Columns: ColumnConfig{
			Timestamp: "Tanggal",
			Time:      "Jam",
			Kind:      "Ket",
			CategoryA: "Desa",
			CategoryB: "Blok",
			Latitude:  "latitude",
			Longitude: "longitude",
		},
		HotspotKind: "Titik Api",
		Map: MapConfig{
			Basemap:   "OpenStreetMap",
			CenterLat: DefaultCenterLat,
			CenterLon: DefaultCenterLon,
			Zoom:      DefaultZoom,
		},
		SQLDatabase: DatabaseConfig{
			Provider: "sqlite",
			URI:      "~/.hotspot/hotspot.db",
			Database: "hotspot",
		},
		NoSQLDatabase: DatabaseConfig{
			Provider: "mongodb",
			Database: "hotspot",
		},
		Refresh: RefreshConfig{
			Cron: "*/30 * * * *",
		},
		CORSOrigin: "*",
		LogLevel:   "info",
	}
}

// ApplyDefaults fills every zero-valued setting from DefaultConfig
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()

	if c.Source.URI == "" {
		c.Source.URI = def.Source.URI
	}
	if c.Source.Timeout <= 0 {
		c.Source.Timeout = def.Source.Timeout
	}
	if c.Source.MinFetchInterval < 0 {
		c.Source.MinFetchInterval = 0
	}
	if c.Source.FetchBurst <= 0 {
		c.Source.FetchBurst = def.Source.FetchBurst
	}

	cols := &c.Columns
	if cols.Timestamp == "" {
		cols.Timestamp = def.Columns.Timestamp
	}
	if cols.Time == "" {
		cols.Time = def.Columns.Time
	}
	if cols.Kind == "" {
		cols.Kind = def.Columns.Kind
	}
	if cols.CategoryA == "" {
		cols.CategoryA = def.Columns.CategoryA
	}
	if cols.CategoryB == "" {
		cols.CategoryB = def.Columns.CategoryB
	}
	if cols.Latitude == "" {
		cols.Latitude = def.Columns.Latitude
	}
	if cols.Longitude == "" {
		cols.Longitude = def.Columns.Longitude
	}
	if c.HotspotKind == "" {
		c.HotspotKind = def.HotspotKind
	}

	if c.Map.CenterLat == 0 && c.Map.CenterLon == 0 {
		c.Map.CenterLat = def.Map.CenterLat
		c.Map.CenterLon = def.Map.CenterLon
	}
	if c.Map.Basemap == "" {
		c.Map.Basemap = def.Map.Basemap
	}
	if c.Map.Zoom <= 0 {
		c.Map.Zoom = def.Map.Zoom
	}

	if c.SQLDatabase.Provider == "" {
		c.SQLDatabase.Provider = def.SQLDatabase.Provider
	}
	if c.NoSQLDatabase.Provider == "" {
		c.NoSQLDatabase.Provider = def.NoSQLDatabase.Provider
	}
	if c.NoSQLDatabase.Database == "" {
		c.NoSQLDatabase.Database = def.NoSQLDatabase.Database
	}
	if c.Refresh.Cron == "" {
		c.Refresh.Cron = def.Refresh.Cron
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// SQLConfig returns the snapshot store connection settings
func (c *Config) SQLConfig() *models.Config {
	return toModelConfig(c.SQLDatabase)
}

// NoSQLConfig returns the record archive connection settings
func (c *Config) NoSQLConfig() *models.Config {
	return toModelConfig(c.NoSQLDatabase)
}

func toModelConfig(d DatabaseConfig) *models.Config {
	return &models.Config{
		Provider: d.Provider,
		URI:      d.URI,
		Database: d.Database,
		Options:  d.Options,
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.ApplyDefaults()

	return &config, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the config file path, honoring HOTSPOT_CONFIG_PATH
func GetConfigPath() string {
	if envPath := os.Getenv("HOTSPOT_CONFIG_PATH"); envPath != "" {
		return envPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hotspot/config.yaml"
	}
	return filepath.Join(home, ".hotspot", "config.yaml")
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
