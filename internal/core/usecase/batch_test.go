package usecase

import (
	"context"
	"reflect"
	"testing"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

func batchCatalog(t *testing.T) *domain.CompiledCatalog {
	t.Helper()
	edf := supplierDef("edf", domain.SubtypeElectricity,
		domain.RecognitionPattern{Field: "libelle_ecriture", Expr: `EDF`})
	edf.Rules = []domain.ExtractionRule{
		activeRule("montant_comptable", `.+`, domain.TargetInvoice, "montant_comptable"),
		activeRule("libelle_ecriture", `(\d{4}-\d{2})`, domain.TargetTable(domain.SubtypeElectricity), "periode"),
	}
	veolia := supplierDef("veolia", domain.SubtypeWater,
		domain.RecognitionPattern{Field: "libelle_ecriture", Expr: `VEOLIA`})
	veolia.Rules = []domain.ExtractionRule{
		activeRule("montant_comptable", `.+`, domain.TargetInvoice, "montant_comptable"),
	}
	return compileCatalog(t, edf, veolia)
}

func testRow(line int, libelle, montant string) domain.Row {
	return domain.NewRow(domain.RowRef{SourceFile: "reg010.pdf", Line: line}, map[string]string{
		"libelle_ecriture":  libelle,
		"montant_comptable": montant,
	})
}

func TestProcessBatchOneResultPerRowInOrder(t *testing.T) {
	uc := NewProcessBatchUseCase("", 3)
	rows := []domain.Row{
		testRow(1, "EDF FACTURE 2024-03", "1234,56"),
		testRow(2, "UNKNOWN SUPPLIER", "10,00"),
		testRow(3, "VEOLIA EAU", "55,20"),
		testRow(4, "EDF", "not-an-amount"),
	}

	result, err := uc.ProcessBatch(context.Background(), batchCatalog(t), rows)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if len(result.Results) != len(rows) {
		t.Fatalf("results = %d, want %d", len(result.Results), len(rows))
	}
	for i, r := range result.Results {
		if r.Ref.Line != i+1 {
			t.Fatalf("result %d references line %d, input order not preserved", i, r.Ref.Line)
		}
	}

	wantOutcomes := []domain.Outcome{
		domain.OutcomeExtracted,
		domain.OutcomeUnclassified,
		domain.OutcomeExtracted,
		domain.OutcomeRejectedNormalization,
	}
	for i, want := range wantOutcomes {
		if result.Results[i].Outcome != want {
			t.Fatalf("row %d outcome = %q, want %q", i+1, result.Results[i].Outcome, want)
		}
	}

	if result.Results[1].Invoice != nil {
		t.Fatal("unclassified row must not produce an invoice")
	}
	if result.Results[3].Diagnostic.RejectReason != domain.RejectReasonInvalidAmount {
		t.Fatalf("reject reason = %q", result.Results[3].Diagnostic.RejectReason)
	}
	if result.Results[0].Extension == nil || result.Results[0].Extension.Subtype != domain.SubtypeElectricity {
		t.Fatal("classified row's extension subtype must match the supplier")
	}

	if result.Summary.Rows != 4 || result.Summary.Invoices != 2 {
		t.Fatalf("summary = %+v", result.Summary)
	}
	if result.Summary.BySupplier["edf"] != 1 || result.Summary.BySupplier["veolia"] != 1 {
		t.Fatalf("summary by supplier = %+v", result.Summary.BySupplier)
	}
}

func TestProcessBatchAmbiguousMatchRecordsCandidates(t *testing.T) {
	a := supplierDef("supplier-a", domain.SubtypeGeneric,
		domain.RecognitionPattern{Field: "libelle_ecriture", Expr: `SHARED`})
	b := supplierDef("supplier-b", domain.SubtypeGeneric,
		domain.RecognitionPattern{Field: "libelle_ecriture", Expr: `SHARED`})
	catalog := compileCatalog(t, a, b)

	uc := NewProcessBatchUseCase("", 1)
	result, err := uc.ProcessBatch(context.Background(), catalog, []domain.Row{
		testRow(1, "SHARED LABEL", "1,00"),
	})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}

	diag := result.Results[0].Diagnostic
	if diag.SupplierID != "supplier-a" {
		t.Fatalf("classification = %q, want first-registered supplier-a", diag.SupplierID)
	}
	if !reflect.DeepEqual(diag.Candidates, []string{"supplier-a", "supplier-b"}) {
		t.Fatalf("candidates = %v, want both suppliers", diag.Candidates)
	}
}

func TestProcessBatchEmptyCatalogIsConfigurationError(t *testing.T) {
	uc := NewProcessBatchUseCase("", 2)
	_, err := uc.ProcessBatch(context.Background(), nil, []domain.Row{testRow(1, "EDF", "1,00")})
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("error kind = %v, want ErrConfiguration", err)
	}
}

func TestProcessBatchCancellationMarksNotProcessed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := make([]domain.Row, 50)
	for i := range rows {
		rows[i] = testRow(i+1, "EDF FACTURE 2024-03", "1,00")
	}

	uc := NewProcessBatchUseCase("", 2)
	result, err := uc.ProcessBatch(ctx, batchCatalog(t), rows)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if len(result.Results) != len(rows) {
		t.Fatalf("results = %d, want one per input row", len(result.Results))
	}

	notProcessed := result.Summary.ByOutcome[domain.OutcomeNotProcessed]
	if notProcessed == 0 {
		t.Fatal("expected undispatched rows to be reported as not_processed")
	}
	for i, r := range result.Results {
		if r.Outcome == domain.OutcomeNotProcessed && r.Invoice != nil {
			t.Fatalf("row %d: not_processed must not carry an invoice", i)
		}
	}
}

func TestProcessBatchDeterministic(t *testing.T) {
	rows := []domain.Row{
		testRow(1, "EDF FACTURE 2024-03", "1234,56"),
		testRow(2, "VEOLIA EAU", "55,20"),
		testRow(3, "UNKNOWN", "9,99"),
	}

	uc := NewProcessBatchUseCase("", 3)
	catalog := batchCatalog(t)

	first, err := uc.ProcessBatch(context.Background(), catalog, rows)
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	second, err := uc.ProcessBatch(context.Background(), catalog, rows)
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatal("re-running the same batch against the same catalog must be deterministic")
	}
}
