package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/models"
	"github.com/whitestitch/planner_backend/planning"
	"gorm.io/gorm"
)

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// CreatePurchaseOrderDraft persists an order proposal as an immutable draft
// purchase order. The proposal itself is a preview; this is the only write
// path for it.
func CreatePurchaseOrderDraft(tx *gorm.DB, logger *logrus.Logger, proposal *planning.OrderProposal, targetDate time.Time, comment string) (*models.PurchaseOrder, error) {
	order := models.PurchaseOrder{
		Status:     models.PurchaseOrderStatusDraft,
		TargetDate: targetDate,
		Comment:    comment,
	}
	err := tx.Create(&order).Error
	if err != nil {
		config.LogError(logger, "purchaseOrderWorkflow.go", "CreatePurchaseOrderDraft", "CreateOrder", targetDate, err)
		return nil, err
	}

	var items []models.PurchaseOrderItem
	for _, article := range proposal.Articles {
		notes := strings.Join(article.Explanation, "; ")
		for _, line := range article.Lines {
			items = append(items, models.PurchaseOrderItem{
				PurchaseOrderId: order.ID,
				ArticleId:       line.ArticleId,
				ColorId:         line.ColorId,
				SizeId:          line.SizeId,
				Quantity:        line.Quantity,
				Source:          "auto",
				Notes:           notes,
			})
		}
	}
	if len(items) > 0 {
		err = tx.Create(&items).Error
		if err != nil {
			if isDuplicateKeyErr(err) {
				err = fmt.Errorf("duplicate order line for purchase order %d: %w", order.ID, err)
			}
			config.LogError(logger, "purchaseOrderWorkflow.go", "CreatePurchaseOrderDraft", "CreateItems", len(items), err)
			return nil, err
		}
	}
	order.Items = items

	logger.WithFields(logrus.Fields{
		"purchase_order_id": order.ID,
		"items":             len(items),
		"total_units":       proposal.TotalUnits,
	}).Info("purchase order draft created")
	return &order, nil
}
