package domain

// Outcome is the terminal state of one row's trip through the pipeline.
type Outcome string

const (
	OutcomeExtracted             Outcome = "extracted"
	OutcomePartial               Outcome = "partial"
	OutcomeRejectedNormalization Outcome = "rejected_normalization"
	OutcomeUnclassified          Outcome = "unclassified"
	OutcomeNotProcessed          Outcome = "not_processed"
)

// RejectReasonInvalidAmount marks rows whose amount column failed decimal
// validation during normalization.
const RejectReasonInvalidAmount = "invalid_amount"

type NoteKind string

const (
	NoteNoMatch           NoteKind = "no_match"
	NoteMissingSource     NoteKind = "missing_source"
	NoteOverriddenSkipped NoteKind = "overridden_skipped"
	NoteInvalidNumber     NoteKind = "invalid_number"
	NoteInvalidDate       NoteKind = "invalid_date"
)

// RuleNote records why one extraction rule did not fill its target.
type RuleNote struct {
	RuleIndex   int         `json:"rule_index"`
	SourceField string      `json:"source_field"`
	TargetTable TargetTable `json:"target_table"`
	TargetField string      `json:"target_field"`
	Kind        NoteKind    `json:"kind"`
}

// Diagnostic is the structured per-row audit record. Every input row gets
// exactly one, whatever its outcome.
type Diagnostic struct {
	Ref          RowRef     `json:"row"`
	Outcome      Outcome    `json:"outcome"`
	RejectReason string     `json:"reject_reason,omitempty"`
	SupplierID   string     `json:"supplier_id,omitempty"`
	Candidates   []string   `json:"ambiguous_match,omitempty"`
	Filled       []string   `json:"filled,omitempty"`
	Unfilled     []string   `json:"unfilled,omitempty"`
	Notes        []RuleNote `json:"notes,omitempty"`
}

// RowResult pairs a row's produced invoice (if any) with its diagnostic.
type RowResult struct {
	Ref        RowRef     `json:"row"`
	Outcome    Outcome    `json:"outcome"`
	Invoice    *Invoice   `json:"invoice,omitempty"`
	Extension  *Extension `json:"extension,omitempty"`
	Diagnostic Diagnostic `json:"diagnostic"`
}

// BatchSummary aggregates diagnostics so a review UI can render counts
// without re-walking every row.
type BatchSummary struct {
	Rows       int             `json:"rows"`
	Invoices   int             `json:"invoices"`
	ByOutcome  map[Outcome]int `json:"by_outcome"`
	BySupplier map[string]int  `json:"by_supplier"`
}

// BatchResult is the ordered output of one batch run: one entry per input
// row, in input order.
type BatchResult struct {
	BatchID string       `json:"batch_id,omitempty"`
	Results []RowResult  `json:"results"`
	Summary BatchSummary `json:"summary"`
}

// Summarize recomputes the batch summary from the per-row results.
func (b *BatchResult) Summarize() {
	s := BatchSummary{
		Rows:       len(b.Results),
		ByOutcome:  make(map[Outcome]int),
		BySupplier: make(map[string]int),
	}
	for _, r := range b.Results {
		s.ByOutcome[r.Outcome]++
		if r.Invoice != nil {
			s.Invoices++
			s.BySupplier[r.Invoice.SupplierID]++
		}
	}
	b.Summary = s
}

// BatchJob is the queue payload describing a submitted batch.
type BatchJob struct {
	BatchID    string `json:"batch_id"`
	SourcePath string `json:"source_path"`
	Format     string `json:"format"`
}
