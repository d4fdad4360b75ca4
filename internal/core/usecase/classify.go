package usecase

import "github.com/slc-app/invoice-engine/internal/core/domain"

// Classifier matches a normalized row against the supplier catalog.
type Classifier struct{}

func NewClassifier() *Classifier { return &Classifier{} }

// Classify evaluates every supplier's recognition patterns against the row.
// A supplier is a candidate when any one of its patterns matches. The first
// registered candidate wins; all candidate IDs are returned so overlapping
// patterns surface as an ambiguous_match diagnostic.
func (c *Classifier) Classify(row domain.NormalizedRow, catalog *domain.CompiledCatalog) (*domain.CompiledSupplier, []string) {
	var winner *domain.CompiledSupplier
	var candidates []string

	for _, sup := range catalog.Suppliers {
		if !supplierMatches(row, sup) {
			continue
		}
		candidates = append(candidates, sup.ID)
		if winner == nil {
			winner = sup
		}
	}
	return winner, candidates
}

func supplierMatches(row domain.NormalizedRow, sup *domain.CompiledSupplier) bool {
	for _, p := range sup.Patterns {
		value, ok := row.Value(p.Field)
		if !ok {
			continue
		}
		if p.Expr.MatchString(value) {
			return true
		}
	}
	return false
}
