package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLDatabase implements DatabaseService on any sqlx driver with RETURNING support
type SQLDatabase struct {
	db  *sqlx.DB
	now func() time.Time
}

func newSQLDatabase(db *sqlx.DB) *SQLDatabase {
	return &SQLDatabase{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *SQLDatabase) AddLogEntry(ctx context.Context, action, filename, ipAddress string) (*LogEntry, error) {
	entry := &LogEntry{
		Timestamp: s.now().Format(timestampLayout),
		Action:    action,
		Filename:  filename,
		IPAddress: ipAddress,
	}

	query := s.db.Rebind(`INSERT INTO logs (timestamp, action, filename, ip_address)
	          VALUES (?, ?, ?, ?) RETURNING id`)
	err := s.db.QueryRowxContext(ctx, query, entry.Timestamp, entry.Action, entry.Filename, entry.IPAddress).Scan(&entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert log entry: %w", err)
	}
	return entry, nil
}

func (s *SQLDatabase) GetRecentLogEntries(ctx context.Context, limit int) ([]*LogEntry, error) {
	if limit <= 0 {
		limit = RecentLogLimit
	}

	entries := []*LogEntry{}
	query := s.db.Rebind(`SELECT id, timestamp, action, filename, ip_address FROM logs
	          ORDER BY timestamp DESC, id DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query log entries: %w", err)
	}
	return entries, nil
}

func (s *SQLDatabase) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
