package models

import (
	"time"
)

// PurchaseOrder is an immutable copy of an order proposal, created as a draft
// by the purchasing workflow. Status transitions past draft happen elsewhere.
type PurchaseOrder struct {
	ID          int                 `gorm:"primary_key" json:"id"`
	Status      PurchaseOrderStatus `gorm:"size:50;not null" json:"status"`
	TargetDate  time.Time           `gorm:"type:date;not null" json:"target_date"`
	Comment     string              `gorm:"size:1000" json:"comment"`
	ExternalRef string              `gorm:"size:255" json:"external_ref"`
	CreatedAt   time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time           `gorm:"autoUpdateTime" json:"updated_at"`

	Items []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderId" json:"items"`
}

type PurchaseOrderItem struct {
	ID              int    `gorm:"primary_key" json:"id"`
	PurchaseOrderId int    `gorm:"not null;uniqueIndex:uq_po_item_line" json:"purchase_order_id"`
	ArticleId       int    `gorm:"not null;uniqueIndex:uq_po_item_line" json:"article_id"`
	ColorId         int    `gorm:"not null;uniqueIndex:uq_po_item_line" json:"color_id"`
	SizeId          int    `gorm:"not null;uniqueIndex:uq_po_item_line" json:"size_id"`
	Quantity        int    `gorm:"not null" json:"quantity"`
	Source          string `gorm:"size:50;not null;default:auto" json:"source"`
	Notes           string `gorm:"size:1000" json:"notes"`
}
