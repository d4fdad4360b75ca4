package usecase

import (
	"strings"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

// DefaultAmountField is the accounting amount column in REG010/REG114 layouts.
const DefaultAmountField = "montant_comptable"

// NoAmountField disables amount validation for raw-text layouts (GED001
// pulls) that carry no dedicated amount column.
const NoAmountField = "none"

// Rejection explains why a row was excluded from classification.
type Rejection struct {
	Reason string
	Field  string
	Value  string
}

// Normalizer trims a raw row and validates its designated amount column.
type Normalizer struct {
	amountField string
}

func NewNormalizer(amountField string) *Normalizer {
	if amountField == "" {
		amountField = DefaultAmountField
	}
	return &Normalizer{amountField: amountField}
}

// Normalize returns the normalized row, or a rejection when the amount
// column is missing or fails decimal validation. Rejected rows never reach
// the classifier but stay visible through diagnostics.
func (n *Normalizer) Normalize(row domain.Row) (domain.NormalizedRow, *Rejection) {
	values := make(map[string]string)
	for _, field := range row.Fields() {
		raw, _ := row.Value(field)
		if domain.Absent(raw) {
			continue
		}
		values[field] = strings.TrimSpace(raw)
	}

	if n.amountField == NoAmountField {
		return domain.NewNormalizedRow(row.Ref(), values, 0), nil
	}

	rawAmount, ok := values[n.amountField]
	if !ok {
		return domain.NormalizedRow{}, &Rejection{
			Reason: domain.RejectReasonInvalidAmount,
			Field:  n.amountField,
		}
	}
	amount, err := domain.ParseDecimal(rawAmount)
	if err != nil {
		return domain.NormalizedRow{}, &Rejection{
			Reason: domain.RejectReasonInvalidAmount,
			Field:  n.amountField,
			Value:  rawAmount,
		}
	}

	return domain.NewNormalizedRow(row.Ref(), values, amount), nil
}
