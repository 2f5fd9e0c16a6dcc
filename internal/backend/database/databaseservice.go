package database

import "context"

// RecentLogLimit is the number of rows returned by the recent-activity query
const RecentLogLimit = 50

// DatabaseService persists the append-only audit log
type DatabaseService interface {
	// AddLogEntry appends one audit row stamped with the current time
	AddLogEntry(ctx context.Context, action, filename, ipAddress string) (*LogEntry, error)
	// GetRecentLogEntries returns at most limit rows, newest first
	GetRecentLogEntries(ctx context.Context, limit int) ([]*LogEntry, error)
	Ping(ctx context.Context) error
	Close() error
}
