package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const defaultPingTimeout = 3 * time.Second

// ErrConnectivityUndetermined means the check could not finish in time to say either way.
var ErrConnectivityUndetermined = errors.New("connectivity could not be determined")

// ConnectivityMonitor checks whether the sync database is reachable.
// Downloads and shares need it to build files from fresh data.
type ConnectivityMonitor struct {
	db      *sql.DB
	timeout time.Duration
}

func NewConnectivityMonitor(db *sql.DB) *ConnectivityMonitor {
	return &ConnectivityMonitor{db: db, timeout: defaultPingTimeout}
}

// Check returns nil when the database answers, ErrConnectivityUndetermined when the ping
// timed out, and the ping error otherwise.
func (m *ConnectivityMonitor) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.db.PingContext(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrConnectivityUndetermined
	}
	return err
}
