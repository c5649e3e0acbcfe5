package reports

import (
	"fmt"
	"io"

	"github.com/whitestitch/planner_backend/planning"
	"github.com/xuri/excelize/v2"
)

// WriteOrderProposalExcel renders an order proposal as a one-sheet workbook,
// one row per order line.
func WriteOrderProposalExcel(w io.Writer, proposal *planning.OrderProposal) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetCellValue("Sheet1", "A1", "ArticleId")
	f.SetCellValue("Sheet1", "B1", "ArticleCode")
	f.SetCellValue("Sheet1", "C1", "ColorId")
	f.SetCellValue("Sheet1", "D1", "SizeId")
	f.SetCellValue("Sheet1", "E1", "Quantity")
	f.SetCellValue("Sheet1", "F1", "ArticleDeficit")
	f.SetCellValue("Sheet1", "G1", "ArticleTotal")

	row := 2
	for _, article := range proposal.Articles {
		for _, line := range article.Lines {
			f.SetCellValue("Sheet1", "A"+fmt.Sprint(row), line.ArticleId)
			f.SetCellValue("Sheet1", "B"+fmt.Sprint(row), article.ArticleCode)
			f.SetCellValue("Sheet1", "C"+fmt.Sprint(row), line.ColorId)
			f.SetCellValue("Sheet1", "D"+fmt.Sprint(row), line.SizeId)
			f.SetCellValue("Sheet1", "E"+fmt.Sprint(row), line.Quantity)
			f.SetCellValue("Sheet1", "F"+fmt.Sprint(row), article.DeficitUnits)
			f.SetCellValue("Sheet1", "G"+fmt.Sprint(row), article.TotalUnits)
			row++
		}
	}
	return f.Write(w)
}

// WriteReplenishmentPlanExcel renders a replenishment plan as a one-sheet
// workbook, one row per SKU.
func WriteReplenishmentPlanExcel(w io.Writer, plan *planning.ReplenishmentPlan) error {
	f := excelize.NewFile()
	defer f.Close()

	headers := []string{
		"ArticleId", "ColorId", "SizeId", "ExternalSku", "AvgDailySales",
		"MarketplaceStock", "InternalStock", "ProjectedAtArrival",
		"RecommendedQty", "CoverageCurrent", "CoverageAfter",
		"OosRiskBefore", "OosRiskAfter", "LimitReasons", "Explanation",
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue("Sheet1", cell, h)
	}

	for i, item := range plan.Items {
		limitReasons := ""
		for j, r := range item.LimitReasons {
			if j > 0 {
				limitReasons += ","
			}
			limitReasons += string(r)
		}
		values := []interface{}{
			item.ArticleId, item.ColorId, item.SizeId, item.ExternalSku,
			item.AvgDailySales.StringFixed(2),
			item.MarketplaceStock, item.InternalStock, item.ProjectedStockAtArrival,
			item.RecommendedQty,
			item.CoverageCurrent.StringFixed(1), item.CoverageAfter.StringFixed(1),
			string(item.OosRiskBefore), string(item.OosRiskAfter),
			limitReasons, item.Explanation,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			f.SetCellValue("Sheet1", cell, v)
		}
	}
	return f.Write(w)
}
