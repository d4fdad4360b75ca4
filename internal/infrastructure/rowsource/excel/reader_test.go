package excel

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "extract.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestReadRowsFixedLayout(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"CHAUFFAGE", "F-001", "AC", "606110", "1234,56", "EDF FACTURE 2024-03", "REF-1"},
		{"", "F-002", "AC", "606120", "55,20", "VEOLIA EAU", ""},
	})

	rows, err := NewReader(REG010Columns).ReadRows(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	if v, _ := rows[0].Value("montant_comptable"); v != "1234,56" {
		t.Fatalf("montant_comptable = %q", v)
	}
	if v, _ := rows[1].Value("libelle_ecriture"); v != "VEOLIA EAU" {
		t.Fatalf("libelle_ecriture = %q", v)
	}
	if rows[0].Ref().Line != 1 || rows[1].Ref().Line != 2 {
		t.Fatalf("row refs = %+v, %+v", rows[0].Ref(), rows[1].Ref())
	}
	if rows[0].Ref().SourceFile != "extract.xlsx" {
		t.Fatalf("source file = %q", rows[0].Ref().SourceFile)
	}
}

func TestReadRowsHeaderLayout(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"identifiant", "type", "texte_brut"},
		{"GED-1", "facture", "EDF FACTURE 2024-03 MONTANT 1234,56"},
	})

	rows, err := NewReader(nil).ReadRows(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if v, _ := rows[0].Value("identifiant"); v != "GED-1" {
		t.Fatalf("identifiant = %q", v)
	}
	if rows[0].Ref().Line != 2 {
		t.Fatalf("header layout rows start at worksheet line 2, got %d", rows[0].Ref().Line)
	}
}

func TestReadRowsMissingFile(t *testing.T) {
	_, err := NewReader(REG010Columns).ReadRows(context.Background(), filepath.Join(t.TempDir(), "absent.xlsx"))
	if err == nil {
		t.Fatal("expected error for missing workbook")
	}
}
