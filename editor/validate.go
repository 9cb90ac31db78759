package editor

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/refina/finance_client/finance_api"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError carries field-level failures produced before any network
// call. Keys are form field names, values the violated rule.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

// Error implements error.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, rule := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", field, rule))
	}
	return "invalid form fields: " + strings.Join(parts, ", ")
}

// cashFlowFields is the required shape for income and expense entries.
type cashFlowFields struct {
	Amount     int64  `validate:"required,gt=0"`
	WalletID   string `validate:"required"`
	CategoryID string `validate:"required"`
	Date       string `validate:"required"`
}

// transferFields is the required shape for fund transfers. The destination
// wallet must differ from the source.
type transferFields struct {
	Amount       int64  `validate:"required,gt=0"`
	FromWalletID string `validate:"required"`
	ToWalletID   string `validate:"required,nefield=FromWalletID"`
	AdminFee     int64  `validate:"gte=0"`
	Date         string `validate:"required"`
}

// Validate checks the form against its type-specific schema.
func (f *Form) Validate() error {
	var err error

	switch f.Type {
	case finance_api.TypeTransfer:
		err = validate.Struct(&transferFields{
			Amount:       f.Amount,
			FromWalletID: f.FromWalletID,
			ToWalletID:   f.ToWalletID,
			AdminFee:     f.AdminFee,
			Date:         f.Date,
		})
	case finance_api.TypeIncome, finance_api.TypeExpense:
		err = validate.Struct(&cashFlowFields{
			Amount:     f.Amount,
			WalletID:   f.WalletID,
			CategoryID: f.CategoryID,
			Date:       f.Date,
		})
	default:
		return &ValidationError{Fields: map[string]string{"Type": "unknown transaction type"}}
	}

	if err == nil {
		return nil
	}

	verr, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := map[string]string{}
	for _, fe := range verr {
		fields[fe.Field()] = fe.Tag()
	}

	return &ValidationError{Fields: fields}
}
