package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/kasuganosora/lootgrid/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store persists inventories as one row per owner.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a Store.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Save writes the row count and layout of inv for ownerID, creating the
// row on first save.
func (st *Store) Save(ctx context.Context, ownerID int64, kind string, inv *Inventory) error {
	layout, err := EncodeLayout(inv.Layout())
	if err != nil {
		return err
	}
	return st.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.Inventory
		err := tx.Where("owner_id = ?", ownerID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = model.Inventory{
				OwnerID: ownerID,
				Kind:    kind,
				Rows:    inv.RowCount(),
				Layout:  datatypes.JSON(layout),
			}
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&row).Updates(map[string]interface{}{
			"rows":   inv.RowCount(),
			"layout": datatypes.JSON(layout),
		}).Error
	})
}

// Load restores the saved state for ownerID into inv. It reports false
// when nothing was saved for the owner.
func (st *Store) Load(ctx context.Context, ownerID int64, inv *Inventory) (bool, error) {
	var row model.Inventory
	err := st.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	records, err := DecodeLayout(row.Layout)
	if err != nil {
		return false, fmt.Errorf("owner %d: %w", ownerID, err)
	}
	inv.GrowTo(row.Rows)
	if len(records) != inv.SlotCount() {
		st.logger.Warn("saved layout size mismatch",
			zap.Int64("owner_id", ownerID),
			zap.Int("records", len(records)),
			zap.Int("slots", inv.SlotCount()))
	}
	inv.Load(records)
	return true, nil
}

// Delete removes the saved state for ownerID.
func (st *Store) Delete(ctx context.Context, ownerID int64) error {
	return st.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&model.Inventory{}).Error
}
