package db

import (
	"context"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"scb-analyser/internal/model"
)

// openORM opens a GORM SQLite connection with sane defaults.
func openORM(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// migrateORM ensures the schema for all models exists.
func migrateORM(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Combiner{},
		&model.StringCurrent{},
		&model.IrradianceReading{},
		&model.WeakStringFlag{},
	)
}

// closeORM closes the underlying SQL DB associated with the GORM connection.
func closeORM(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// upsertCombiner inserts or updates a combiner definition.
func upsertCombiner(ctx context.Context, db *gorm.DB, c *model.Combiner) error {
	return db.WithContext(ctx).Save(c).Error
}

// insertStringCurrentsBatch persists string current rows in batches.
func insertStringCurrentsBatch(ctx context.Context, db *gorm.DB, rows []model.StringCurrent, batchSize int) error {
	if len(rows) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return db.WithContext(ctx).CreateInBatches(rows, batchSize).Error
}

// insertIrradiance persists one irradiance row.
func insertIrradiance(ctx context.Context, db *gorm.DB, row *model.IrradianceReading) error {
	return db.WithContext(ctx).Create(row).Error
}

// replaceFlagsForDate swaps out a date's weak-string flags inside one
// transaction, so a re-run of the analysis never duplicates rows and a day
// that became healthy loses its stale flags.
func replaceFlagsForDate(ctx context.Context, db *gorm.DB, combinerID string, date time.Time, flags []model.WeakStringFlag) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("combiner_id = ? AND date = ?", combinerID, date).
			Delete(&model.WeakStringFlag{}).Error; err != nil {
			return err
		}
		if len(flags) == 0 {
			return nil
		}
		return tx.Create(&flags).Error
	})
}
