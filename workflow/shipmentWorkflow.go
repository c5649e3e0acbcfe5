package workflow

import (
	"github.com/sirupsen/logrus"
	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/models"
	"github.com/whitestitch/planner_backend/planning"
	"gorm.io/gorm"
)

// CreateShipmentDraft persists a replenishment plan as a draft marketplace
// shipment. Final quantities start equal to the recommendations and stay
// editable while the shipment is a draft.
func CreateShipmentDraft(tx *gorm.DB, logger *logrus.Logger, plan *planning.ReplenishmentPlan, comment string) (*models.Shipment, error) {
	params := plan.Params
	shipment := models.Shipment{
		Status:                     models.ShipmentStatusDraft,
		TargetDate:                 params.TargetDate,
		ArrivalDate:                params.ArrivalDate,
		Comment:                    comment,
		Strategy:                   params.Strategy,
		ZeroSalesPolicy:            params.ZeroSalesPolicy,
		TargetCoverageDays:         params.TargetCoverageDays,
		MinCoverageDays:            params.MinCoverageDays,
		MaxCoverageDaysAfter:       params.MaxCoverageDaysAfter,
		MaxReplenishmentPerArticle: params.MaxReplenishmentPerArticle,
	}
	err := tx.Create(&shipment).Error
	if err != nil {
		config.LogError(logger, "shipmentWorkflow.go", "CreateShipmentDraft", "CreateShipment", params.TargetDate, err)
		return nil, err
	}

	var items []models.ShipmentItem
	for _, planItem := range plan.Items {
		items = append(items, models.ShipmentItem{
			ShipmentId:                shipment.ID,
			ArticleId:                 planItem.ArticleId,
			ColorId:                   planItem.ColorId,
			SizeId:                    planItem.SizeId,
			ExternalSku:               planItem.ExternalSku,
			RecommendedQty:            planItem.RecommendedQty,
			FinalQty:                  planItem.RecommendedQty,
			InternalStockAvailable:    planItem.InternalStock,
			OosRiskBefore:             planItem.OosRiskBefore,
			OosRiskAfter:              planItem.OosRiskAfter,
			LimitedByInternalStock:    planItem.LimitedBy(models.LimitInternalStock),
			LimitedByMaxCoverage:      planItem.LimitedBy(models.LimitMaxCoverage),
			IgnoredDueToZeroSales:     planItem.IgnoredDueToZeroSales,
			BelowMinCoverageThreshold: planItem.BelowMinCoverage,
			ArticleTotalDeficit:       planItem.ArticleTotalDeficit,
			ArticleTotalRecommended:   planItem.ArticleTotalRecommended,
			Explanation:               planItem.Explanation,
		})
	}
	if len(items) > 0 {
		err = tx.Create(&items).Error
		if err != nil {
			config.LogError(logger, "shipmentWorkflow.go", "CreateShipmentDraft", "CreateItems", len(items), err)
			return nil, err
		}
	}
	shipment.Items = items

	logger.WithFields(logrus.Fields{
		"shipment_id":       shipment.ID,
		"items":             len(items),
		"total_recommended": plan.TotalRecommended,
	}).Info("shipment draft created")
	return &shipment, nil
}
