// Package store persists material aggregates through gorm. Every write
// replaces the nuclide rows of a material so stored positions mirror the
// aggregate order.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kika/internal/material"
	"kika/models"
)

// ErrMaterialExists is returned when a material id is already stored.
var ErrMaterialExists = errors.New("material id already in use")

// Find returns the row for materialID with its nuclides preloaded.
func Find(ctx context.Context, db *gorm.DB, materialID int) (models.Material, error) {
	var record models.Material
	err := db.WithContext(ctx).Preload("Nuclides").Where("material_id = ?", materialID).First(&record).Error
	return record, err
}

// Load is Find followed by Aggregate.
func Load(ctx context.Context, db *gorm.DB, materialID int) (models.Material, *material.Material, error) {
	record, err := Find(ctx, db, materialID)
	if err != nil {
		return record, nil, err
	}
	agg, err := record.Aggregate()
	if err != nil {
		return record, nil, err
	}
	return record, agg, nil
}

// List returns every material ordered by material id.
func List(ctx context.Context, db *gorm.DB) ([]models.Material, error) {
	var records []models.Material
	err := db.WithContext(ctx).Preload("Nuclides").Order("material_id ASC").Find(&records).Error
	return records, err
}

// Create stores agg as a new row. It fails with ErrMaterialExists when the
// material id is taken.
func Create(ctx context.Context, tx *gorm.DB, record *models.Material, agg *material.Material) error {
	var existing int64
	if err := tx.WithContext(ctx).Unscoped().Model(&models.Material{}).Where("material_id = ?", agg.ID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return fmt.Errorf("%w: %d", ErrMaterialExists, agg.ID)
	}
	return Save(ctx, tx, record, agg)
}

// Save writes agg through record, inserting the row when it has no primary
// key yet.
func Save(ctx context.Context, tx *gorm.DB, record *models.Material, agg *material.Material) error {
	record.Apply(agg)
	rows := record.Nuclides
	record.Nuclides = nil

	if err := tx.WithContext(ctx).Omit(clause.Associations).Save(record).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Unscoped().Where("material_record_id = ?", record.ID).Delete(&models.MaterialNuclide{}).Error; err != nil {
		return err
	}
	for i := range rows {
		rows[i].MaterialRecordID = record.ID
	}
	if len(rows) > 0 {
		if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
			return err
		}
	}
	record.Nuclides = rows
	return nil
}

// Delete removes a material and its nuclides for good, so the material id
// can be reused.
func Delete(ctx context.Context, db *gorm.DB, materialID int) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.Material
		if err := tx.Where("material_id = ?", materialID).First(&record).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("material_record_id = ?", record.ID).Delete(&models.MaterialNuclide{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&record).Error
	})
}

// Upsert creates or replaces the material with agg.ID in one transaction.
// Notes on an existing row are kept. It reports whether a row was created.
func Upsert(ctx context.Context, db *gorm.DB, agg *material.Material, source string) (bool, error) {
	created := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := Find(ctx, tx, agg.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = models.Material{}
			created = true
		case err != nil:
			return fmt.Errorf("find material %d: %w", agg.ID, err)
		}
		record.Source = source
		if err := Save(ctx, tx, &record, agg); err != nil {
			return fmt.Errorf("save material %d: %w", agg.ID, err)
		}
		return nil
	})
	return created, err
}
