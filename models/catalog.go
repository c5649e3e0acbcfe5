package models

import (
	"context"
	"errors"

	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/utils"
	"gorm.io/gorm"
)

type Article struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Code string `gorm:"size:50;uniqueIndex;not null" json:"code" binding:"required"`
	Name string `gorm:"size:255" json:"name"`
}

type Color struct {
	ID          int    `gorm:"primary_key" json:"id"`
	InnerCode   string `gorm:"size:50;uniqueIndex;not null" json:"inner_code" binding:"required"`
	PantoneCode string `gorm:"size:50" json:"pantone_code"`
	Description string `gorm:"size:255" json:"description"`
}

type Size struct {
	ID        int    `gorm:"primary_key" json:"id"`
	Label     string `gorm:"size:50;uniqueIndex;not null" json:"label" binding:"required"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`
}

// SkuUnit is the atomic allocation unit: one article in one color and size.
type SkuUnit struct {
	ID        int `gorm:"primary_key" json:"id"`
	ArticleId int `gorm:"not null;uniqueIndex:uq_sku_unit_article_color_size" json:"article_id"`
	ColorId   int `gorm:"not null;uniqueIndex:uq_sku_unit_article_color_size" json:"color_id"`
	SizeId    int `gorm:"not null;uniqueIndex:uq_sku_unit_article_color_size" json:"size_id"`
}

func GetArticle(ctx context.Context, id int) (*Article, error) {
	var article Article
	err := config.GetDB().WithContext(ctx).First(&article, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFoundError("article", id)
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func GetSkuUnitsByArticle(ctx context.Context, articleId int) ([]*SkuUnit, error) {
	var skus []*SkuUnit
	err := config.GetDB().WithContext(ctx).
		Where("article_id = ?", articleId).
		Order("id").
		Find(&skus).Error
	if err != nil {
		return nil, err
	}
	return skus, nil
}

func GetSizesByIds(ctx context.Context, ids []int) ([]*Size, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var sizes []*Size
	err := config.GetDB().WithContext(ctx).Where("id IN ?", ids).Find(&sizes).Error
	if err != nil {
		return nil, err
	}
	return sizes, nil
}
