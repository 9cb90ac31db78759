package dashboard

import (
	"github.com/refina/finance_client/finance_api"
	"github.com/shopspring/decimal"
)

// Exponent of the minor currency unit, e.g. 2 for cents.
var MinorUnitExponent int32 = 2

// FormatAmount renders integer minor units as a decimal string, e.g.
// 50000 -> "500.00".
func FormatAmount(minorUnits int64) string {
	return decimal.New(minorUnits, -MinorUnitExponent).StringFixed(MinorUnitExponent)
}

// PercentOfTotal returns part/total as a percentage with two decimals, "0.00"
// when the total is zero.
func PercentOfTotal(part int64, total int64) string {
	if total == 0 {
		return decimal.Zero.StringFixed(2)
	}

	return decimal.NewFromInt(part).
		Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100)).
		StringFixed(2)
}

// ExpenseShares annotates the most-expenses aggregate with each category's
// share of the combined total.
func ExpenseShares(items []finance_api.MostExpense) map[string]string {
	var total int64
	for _, item := range items {
		total += item.Total
	}

	shares := map[string]string{}
	for _, item := range items {
		shares[item.CategoryName] = PercentOfTotal(item.Total, total)
	}

	return shares
}
