package seaice

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Record is one daily ice-extent measurement.
type Record struct {
	Hemisphere  string `gorm:"primaryKey;size:8" json:"hemisphere"`
	Date        string `gorm:"primaryKey;size:8" json:"date"` // YYYYMMDD
	IcePixels   int64  `json:"ice_pixels"`
	TotalPixels int64  `json:"total_pixels"`
}

// Open opens (or creates) the statistics database and migrates its schema.
func Open(path string, debug bool) (*gorm.DB, error) {
	logMode := logger.Silent
	if debug {
		logMode = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

// Upsert stores records, replacing the counts of days already present.
func Upsert(db *gorm.DB, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hemisphere"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"ice_pixels", "total_pixels"}),
	}).CreateInBatches(recs, 500)
	if result.Error != nil {
		return fmt.Errorf("upsert records: %w", result.Error)
	}
	return nil
}

// Series returns the stored records for a hemisphere ordered by date.
// Zero from/to bounds leave that side open.
func Series(ctx context.Context, db *gorm.DB, hemisphere string, from, to time.Time) ([]Record, error) {
	q := db.WithContext(ctx).Where("hemisphere = ?", hemisphere)
	if !from.IsZero() {
		q = q.Where("date >= ?", from.Format("20060102"))
	}
	if !to.IsZero() {
		q = q.Where("date <= ?", to.Format("20060102"))
	}

	var recs []Record
	if err := q.Order("date").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	return recs, nil
}
