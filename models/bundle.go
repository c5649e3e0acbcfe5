package models

import (
	"context"
	"errors"

	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/utils"
	"gorm.io/gorm"
)

type BundleType struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Code string `gorm:"size:50;uniqueIndex;not null" json:"code" binding:"required"`
	Name string `gorm:"size:100;not null" json:"name" binding:"required"`
}

// BundleRecipe lists the colors required together to assemble one bundle of a
// given type for an article: one row per required color, position-ordered.
type BundleRecipe struct {
	ID           int `gorm:"primary_key" json:"id"`
	ArticleId    int `gorm:"not null;uniqueIndex:uq_bundle_recipe_color;uniqueIndex:uq_bundle_recipe_position" json:"article_id"`
	BundleTypeId int `gorm:"not null;uniqueIndex:uq_bundle_recipe_color;uniqueIndex:uq_bundle_recipe_position" json:"bundle_type_id"`
	ColorId      int `gorm:"not null;uniqueIndex:uq_bundle_recipe_color" json:"color_id"`
	Position     int `gorm:"not null;uniqueIndex:uq_bundle_recipe_position" json:"position"`
}

type ElasticType struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Code string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name string `gorm:"size:255;not null" json:"name"`
}

func GetBundleType(ctx context.Context, id int) (*BundleType, error) {
	var bundleType BundleType
	err := config.GetDB().WithContext(ctx).First(&bundleType, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFoundError("bundle type", id)
	}
	if err != nil {
		return nil, err
	}
	return &bundleType, nil
}

// GetBundleRecipe returns the recipe rows for (article, bundle type) ordered
// by position. An empty recipe is reported as not found: availability and
// deficit are meaningless without one.
func GetBundleRecipe(ctx context.Context, articleId, bundleTypeId int) ([]*BundleRecipe, error) {
	var rows []*BundleRecipe
	err := config.GetDB().WithContext(ctx).
		Where("article_id = ? AND bundle_type_id = ?", articleId, bundleTypeId).
		Order("position").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, utils.NotFoundError("bundle recipe for article", articleId)
	}
	return rows, nil
}
