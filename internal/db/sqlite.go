package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"gopherwatch/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS alerts(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	service_name TEXT NOT NULL,
	metric TEXT NOT NULL,
	metric_value REAL NOT NULL,
	triggered_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_alerts_triggered_at ON alerts(triggered_at);`

// SQLiteStore keeps alerts in a local SQLite file. triggered_at is stored as
// epoch milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating sqlite dir: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveAlert(ctx context.Context, alert models.Alert) (models.Alert, error) {
	rec := fromAlert(alert)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts(service_name, metric, metric_value, triggered_at) VALUES(?,?,?,?)`,
		rec.ServiceName, rec.Metric, rec.MetricValue, rec.TriggeredAt.UnixMilli())
	if err != nil {
		return models.Alert{}, fmt.Errorf("saving alert: %w", err)
	}

	if rec.ID, err = res.LastInsertId(); err != nil {
		return models.Alert{}, fmt.Errorf("saving alert: %w", err)
	}

	return rec.toAlert(), nil
}

func (s *SQLiteStore) RecentAlerts(ctx context.Context, limit int) (models.AlertList, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, service_name, metric, metric_value, triggered_at FROM alerts ORDER BY triggered_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	alerts := models.AlertList{}

	for rows.Next() {
		var (
			rec AlertRecord
			ms  int64
		)

		if err := rows.Scan(&rec.ID, &rec.ServiceName, &rec.Metric, &rec.MetricValue, &ms); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}

		rec.TriggeredAt = time.UnixMilli(ms)
		alerts = append(alerts, rec.toAlert())
	}

	return alerts, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
