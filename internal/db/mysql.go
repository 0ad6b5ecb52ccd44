package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gopherwatch/internal/models"
)

// MySQLStore keeps alerts in the MySQL alerts table through gorm.
type MySQLStore struct {
	db *gorm.DB
}

// OpenMySQL connects and migrates the alerts table. parseTime is forced on
// so that triggered_at scans into time.Time.
func OpenMySQL(dsn string) (*MySQLStore, error) {
	cfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	gdb, err := gorm.Open(mysql.Open(withParseTime(dsn)), cfg)
	if err != nil {
		return nil, fmt.Errorf("opening mysql: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)

	if err := gdb.AutoMigrate(&AlertRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrating alerts table: %w", err)
	}

	return &MySQLStore{db: gdb}, nil
}

func withParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}

	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}

	return dsn + "?parseTime=true"
}

func (s *MySQLStore) SaveAlert(ctx context.Context, alert models.Alert) (models.Alert, error) {
	rec := fromAlert(alert)

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.Alert{}, fmt.Errorf("saving alert: %w", err)
	}

	return rec.toAlert(), nil
}

func (s *MySQLStore) RecentAlerts(ctx context.Context, limit int) (models.AlertList, error) {
	var recs []AlertRecord

	err := s.db.WithContext(ctx).
		Order("triggered_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}

	alerts := make(models.AlertList, 0, len(recs))
	for _, rec := range recs {
		alerts = append(alerts, rec.toAlert())
	}

	return alerts, nil
}

func (s *MySQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
