package dashboard_test

import (
	"testing"

	"github.com/refina/finance_client/dashboard"
	"github.com/refina/finance_client/finance_api"
	"github.com/zeebo/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "500.00", dashboard.FormatAmount(50000))
	assert.Equal(t, "0.05", dashboard.FormatAmount(5))
	assert.Equal(t, "-12.50", dashboard.FormatAmount(-1250))
	assert.Equal(t, "0.00", dashboard.FormatAmount(0))
}

func TestPercentOfTotal(t *testing.T) {
	assert.Equal(t, "25.00", dashboard.PercentOfTotal(25, 100))
	assert.Equal(t, "33.33", dashboard.PercentOfTotal(1, 3))
	assert.Equal(t, "0.00", dashboard.PercentOfTotal(10, 0))
}

func TestExpenseShares(t *testing.T) {
	shares := dashboard.ExpenseShares([]finance_api.MostExpense{
		{CategoryName: "Food", Total: 75000},
		{CategoryName: "Transport", Total: 25000},
	})

	assert.Equal(t, "75.00", shares["Food"])
	assert.Equal(t, "25.00", shares["Transport"])
}
