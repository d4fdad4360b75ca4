package usecase

import (
	"time"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

// FillReport is the per-field outcome of running a supplier's rules.
type FillReport struct {
	Filled   []string
	Unfilled []string
	Notes    []domain.RuleNote
}

// Gaps reports whether any rule failed to contribute its capture. Overridden
// rules are not gaps: their target was already filled.
func (r FillReport) Gaps() bool {
	for _, n := range r.Notes {
		if n.Kind != domain.NoteOverriddenSkipped {
			return true
		}
	}
	return false
}

// Extractor applies a classified supplier's extraction rules to a row.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// Extract runs the supplier's rules in declared order and builds the invoice
// plus its subtype extension. The first rule that successfully matches a
// target wins; later successful matches are recorded as overridden_skipped
// instead of silently overwriting. Captures for numeric and date targets are
// re-validated; a failed coercion counts against the rule, never the batch.
func (e *Extractor) Extract(row domain.NormalizedRow, sup *domain.CompiledSupplier) (*domain.Invoice, *domain.Extension, FillReport) {
	ref := row.Ref()
	inv := &domain.Invoice{
		SupplierID: sup.ID,
		Status:     domain.StatusPending,
		SourceFile: ref.SourceFile,
		LignePDF:   ref.Line,
	}
	ext := domain.NewExtension(sup.Subtype)

	var report FillReport
	filled := make(map[string]bool)

	for i, rule := range sup.Rules {
		note := domain.RuleNote{
			RuleIndex:   i,
			SourceField: rule.SourceField,
			TargetTable: rule.TargetTable,
			TargetField: rule.TargetField,
		}

		source, ok := row.Value(rule.SourceField)
		if !ok {
			note.Kind = domain.NoteMissingSource
			report.Notes = append(report.Notes, note)
			continue
		}

		capture, ok := applyRule(rule, source)
		if !ok {
			note.Kind = domain.NoteNoMatch
			report.Notes = append(report.Notes, note)
			continue
		}

		text, number, date, kindNote := coerceCapture(rule.Kind, capture)
		if kindNote != "" {
			note.Kind = kindNote
			report.Notes = append(report.Notes, note)
			continue
		}

		targetKey := string(rule.TargetTable) + "." + rule.TargetField
		if filled[targetKey] {
			note.Kind = domain.NoteOverriddenSkipped
			report.Notes = append(report.Notes, note)
			continue
		}

		if rule.TargetTable == domain.TargetInvoice {
			if err := inv.SetField(rule.TargetField, text, number); err != nil {
				note.Kind = domain.NoteNoMatch
				report.Notes = append(report.Notes, note)
				continue
			}
		} else {
			if err := ext.SetField(rule.TargetField, text, number, date); err != nil {
				note.Kind = domain.NoteNoMatch
				report.Notes = append(report.Notes, note)
				continue
			}
		}
		filled[targetKey] = true
	}

	for _, field := range domain.BaseInvoiceFields() {
		if filled[string(domain.TargetInvoice)+"."+field] {
			report.Filled = append(report.Filled, field)
		} else {
			report.Unfilled = append(report.Unfilled, field)
		}
	}

	return inv, ext, report
}

func applyRule(rule domain.CompiledRule, source string) (string, bool) {
	m := rule.Expr.FindStringSubmatch(source)
	if m == nil {
		return "", false
	}
	if rule.CaptureGroup >= len(m) {
		return "", false
	}
	capture := m[rule.CaptureGroup]
	if capture == "" {
		return "", false
	}
	return capture, true
}

// coerceCapture validates the captured text against the target field's kind.
func coerceCapture(kind domain.FieldKind, capture string) (text string, number float64, date time.Time, note domain.NoteKind) {
	switch kind {
	case domain.FieldNumber:
		n, err := domain.ParseDecimal(capture)
		if err != nil {
			return "", 0, time.Time{}, domain.NoteInvalidNumber
		}
		return capture, n, time.Time{}, ""
	case domain.FieldDate:
		d, err := domain.ParseDate(capture)
		if err != nil {
			return "", 0, time.Time{}, domain.NoteInvalidDate
		}
		return capture, 0, d, ""
	default:
		return capture, 0, time.Time{}, ""
	}
}
