package models

// Config holds database connection settings
type Config struct {
	Provider string            // sqlite, mongodb
	URI      string            // File path for sqlite, connection URI for mongodb
	Database string            // Database name
	Options  map[string]string // Provider-specific options
}

// Enabled reports whether a connection URI was configured
func (c *Config) Enabled() bool {
	return c != nil && c.URI != ""
}
