package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

func TestCatalogRepositoryLoadCatalogPreservesOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM suppliers").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "subtype"}).
			AddRow("edf", "EDF", "electricite").
			AddRow("veolia", "Veolia", "eau"))

	mock.ExpectQuery("FROM recognition_patterns").
		WillReturnRows(sqlmock.NewRows([]string{"supplier_id", "field", "regex", "case_sensitive"}).
			AddRow("edf", "libelle_ecriture", "EDF", false).
			AddRow("veolia", "libelle_ecriture", "VEOLIA", false))

	mock.ExpectQuery("FROM extraction_rules").
		WillReturnRows(sqlmock.NewRows([]string{
			"supplier_id", "source_field", "regex", "capture_group", "capture_name",
			"target_table", "target_field", "active", "description",
		}).
			AddRow("edf", "montant_comptable", ".+", 0, "", "facture", "montant_comptable", true, "").
			AddRow("edf", "libelle_ecriture", `(\d{4}-\d{2})`, 0, "", "electricite", "periode", true, "billing period").
			AddRow("veolia", "libelle_ecriture", "OLD", 0, "", "facture", "nature", false, "retired rule"))

	repo := NewCatalogRepository(db)
	catalog, err := repo.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	if len(catalog.Suppliers) != 2 {
		t.Fatalf("suppliers = %d, want 2", len(catalog.Suppliers))
	}
	if catalog.Suppliers[0].ID != "edf" || catalog.Suppliers[1].ID != "veolia" {
		t.Fatalf("supplier order = %s,%s", catalog.Suppliers[0].ID, catalog.Suppliers[1].ID)
	}
	if len(catalog.Suppliers[0].Rules) != 2 {
		t.Fatalf("edf rules = %d, want 2", len(catalog.Suppliers[0].Rules))
	}
	if len(catalog.Suppliers[1].Rules) != 0 {
		t.Fatal("inactive veolia rule must be dropped at compile")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCatalogRepositoryRejectsBrokenCatalog(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM suppliers").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "subtype"}).
			AddRow("edf", "EDF", "electricite"))
	mock.ExpectQuery("FROM recognition_patterns").
		WillReturnRows(sqlmock.NewRows([]string{"supplier_id", "field", "regex", "case_sensitive"}).
			AddRow("edf", "libelle_ecriture", "EDF(", false))
	mock.ExpectQuery("FROM extraction_rules").
		WillReturnRows(sqlmock.NewRows([]string{
			"supplier_id", "source_field", "regex", "capture_group", "capture_name",
			"target_table", "target_field", "active", "description",
		}))

	repo := NewCatalogRepository(db)
	_, err = repo.LoadCatalog(context.Background())
	if err == nil {
		t.Fatal("expected configuration error for invalid detection regex")
	}
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("error kind = %v, want ErrConfiguration", err)
	}
}

func TestCatalogRepositoryRejectsOrphanPattern(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM suppliers").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "subtype"}).
			AddRow("edf", "EDF", "electricite"))
	mock.ExpectQuery("FROM recognition_patterns").
		WillReturnRows(sqlmock.NewRows([]string{"supplier_id", "field", "regex", "case_sensitive"}).
			AddRow("ghost", "libelle_ecriture", "GHOST", false))

	repo := NewCatalogRepository(db)
	if _, err := repo.LoadCatalog(context.Background()); err == nil {
		t.Fatal("expected error for pattern referencing unknown supplier")
	}
}
