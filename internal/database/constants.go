package database

// Connection pool defaults shared by the SQL backends
const (
	// DefaultMaxOpenConns is used when the configured value is not positive
	DefaultMaxOpenConns = 25

	// DefaultMaxIdleConns is used when the configured value is not positive
	DefaultMaxIdleConns = 5
)
