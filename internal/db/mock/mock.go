package mock

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "kika/internal/log"
	"kika/internal/presets"
	"kika/models"
)

// New returns an in-memory sqlite database seeded with the builtin presets.
func New(ctx context.Context) (*gorm.DB, error) {
	return NewNamed(ctx, "kika-mock")
}

// NewNamed is New with a distinct shared-cache name, so tests running in
// parallel do not see each other's rows.
func NewNamed(ctx context.Context, name string) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database", "name", name)

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Material{},
		&models.MaterialNuclide{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	var existing int64
	if err := db.WithContext(ctx).Model(&models.Material{}).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		applog.Debug(ctx, "mock database already seeded", "materials", existing)
		return nil
	}

	lib, err := presets.Builtin()
	if err != nil {
		return err
	}

	for _, preset := range lib.List() {
		agg, err := preset.Build()
		if err != nil {
			return err
		}

		record := models.Material{Source: "preset:" + preset.Key}
		record.Apply(agg)
		if err := db.WithContext(ctx).Create(&record).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
