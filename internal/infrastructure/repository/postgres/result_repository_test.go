package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

func sampleBatch() *domain.BatchResult {
	period := "2024-03"
	result := &domain.BatchResult{
		BatchID: "batch-1",
		Results: []domain.RowResult{
			{
				Ref:     domain.RowRef{SourceFile: "reg010.pdf", Line: 1},
				Outcome: domain.OutcomeExtracted,
				Invoice: &domain.Invoice{
					SupplierID:       "edf",
					MontantComptable: 1234.56,
					Status:           domain.StatusPending,
					SourceFile:       "reg010.pdf",
					LignePDF:         1,
				},
				Extension: &domain.Extension{
					Subtype:     domain.SubtypeElectricity,
					Electricity: &domain.ElectricityDetails{Periode: period},
				},
				Diagnostic: domain.Diagnostic{
					Ref:        domain.RowRef{SourceFile: "reg010.pdf", Line: 1},
					Outcome:    domain.OutcomeExtracted,
					SupplierID: "edf",
				},
			},
			{
				Ref:     domain.RowRef{SourceFile: "reg010.pdf", Line: 2},
				Outcome: domain.OutcomeUnclassified,
				Diagnostic: domain.Diagnostic{
					Ref:     domain.RowRef{SourceFile: "reg010.pdf", Line: 2},
					Outcome: domain.OutcomeUnclassified,
				},
			},
		},
	}
	result.Summarize()
	return result
}

func TestResultRepositorySaveBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO invoices").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO invoice_extensions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO row_diagnostics").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO row_diagnostics").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewResultRepository(db)
	if err := repo.SaveBatch(context.Background(), sampleBatch()); err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResultRepositorySaveBatchRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO invoices").
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	repo := NewResultRepository(db)
	if err := repo.SaveBatch(context.Background(), sampleBatch()); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
