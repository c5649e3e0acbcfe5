package planning_test

import "github.com/shopspring/decimal"

func decimalFromInt(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}
