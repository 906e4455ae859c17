package database

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eunseonJeong/life-planner-sub000/internal/models"
)

// Database stores market snapshots, the only persisted output of the
// aggregation pipeline.
type Database struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewDatabase(dbPath string, log *logrus.Logger) (*Database, error) {
	if log == nil {
		log = logrus.New()
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	return &Database{db: db, log: log}, nil
}

// RunMigrations creates or updates the snapshot table.
func (d *Database) RunMigrations() error {
	return d.db.AutoMigrate(&models.MarketSnapshot{})
}

// SaveSnapshot records one aggregation result.
func (d *Database) SaveSnapshot(snapshot *models.MarketSnapshot) error {
	return d.db.Create(snapshot).Error
}

// ListSnapshots returns recorded snapshots newest-first, optionally filtered
// by region and deal type.
func (d *Database) ListSnapshots(regionCode string, dealType string, limit int) ([]models.MarketSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}

	query := d.db.Model(&models.MarketSnapshot{}).Order("created_at DESC").Limit(limit)
	if regionCode != "" {
		query = query.Where("region_code = ?", regionCode)
	}
	if dealType != "" {
		query = query.Where("deal_type = ?", dealType)
	}

	var snapshots []models.MarketSnapshot
	if err := query.Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
