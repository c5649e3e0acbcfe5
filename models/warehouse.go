package models

import (
	"context"
	"errors"
	"time"

	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/utils"
	"gorm.io/gorm"
)

type Warehouse struct {
	ID        int           `gorm:"primary_key" json:"id"`
	Code      string        `gorm:"size:50;uniqueIndex;not null" json:"code" binding:"required"`
	Name      string        `gorm:"size:255;not null" json:"name" binding:"required"`
	Type      WarehouseType `gorm:"size:50;not null" json:"type"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetWarehouse(ctx context.Context, id int) (*Warehouse, error) {
	var warehouse Warehouse
	err := config.GetDB().WithContext(ctx).First(&warehouse, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFoundError("warehouse", id)
	}
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

// GetFirstInternalWarehouse returns the lowest-id internal warehouse, used as
// the default source for bundle capacity from singles. Nil when none exists.
func GetFirstInternalWarehouse(ctx context.Context) (*Warehouse, error) {
	var warehouse Warehouse
	err := config.GetDB().WithContext(ctx).
		Where("type = ?", WarehouseTypeInternal).
		Order("id").
		First(&warehouse).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}
