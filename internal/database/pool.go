package database

import (
	"context"
	"log/slog"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	pingTimeout = 3 * time.Second
	// Pool usage above this share of MaxOpenConns is logged as a warning.
	highUsageRatio = 0.9
)

type PoolStats struct {
	MaxOpenConns      int    `json:"max_open_connections"`
	OpenConns         int    `json:"open_connections"`
	InUse             int    `json:"in_use"`
	Idle              int    `json:"idle"`
	WaitCount         int64  `json:"wait_count"`
	WaitDuration      string `json:"wait_duration"`
	MaxIdleClosed     int64  `json:"max_idle_closed"`
	MaxLifetimeClosed int64  `json:"max_lifetime_closed"`
}

// Busy reports whether the pool is close to exhaustion. Seat booking holds a
// connection per conditional update, so a busy pool shows up as booking latency.
func (s PoolStats) Busy() bool {
	return s.MaxOpenConns > 0 && float64(s.InUse) > float64(s.MaxOpenConns)*highUsageRatio
}

type HealthCheck struct {
	Status         string    `json:"status"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Error          string    `json:"error,omitempty"`
	Stats          PoolStats `json:"stats"`
	Timestamp      time.Time `json:"timestamp"`
}

func (h HealthCheck) Healthy() bool {
	return h.Status == StatusHealthy
}

func (db *DB) GetPoolStats() PoolStats {
	stats := db.Stats()
	return PoolStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration.String(),
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

// HealthCheck pings the database and reports the pool state.
func (db *DB) HealthCheck(ctx context.Context) HealthCheck {
	start := time.Now()
	check := HealthCheck{
		Status:    StatusHealthy,
		Timestamp: start,
		Stats:     db.GetPoolStats(),
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := db.PingContext(pingCtx)
	check.ResponseTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		check.Status = StatusUnhealthy
		check.Error = err.Error()
		slog.Error("Database health check failed", "error", err)
	}

	if check.Stats.Busy() {
		slog.Warn("High connection usage detected",
			"in_use", check.Stats.InUse, "max_open", check.Stats.MaxOpenConns)
	}

	return check
}
