package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

// ResultRepository persists batch output for the review UI: invoices,
// subtype extensions and one diagnostic per input row.
type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052302)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS invoices (
	id TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL,
	supplier_id TEXT NOT NULL,
	nature TEXT NOT NULL DEFAULT '',
	numero_facture TEXT NOT NULL DEFAULT '',
	code_journal TEXT NOT NULL DEFAULT '',
	numero_compte_comptable TEXT NOT NULL DEFAULT '',
	montant_comptable DOUBLE PRECISION NOT NULL DEFAULT 0,
	libelle_ecriture TEXT NOT NULL DEFAULT '',
	references_partenaire_facture TEXT NOT NULL DEFAULT '',
	statut TEXT NOT NULL,
	commentaire_contestation TEXT,
	fichier_source TEXT NOT NULL,
	ligne_pdf INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS invoice_extensions (
	invoice_id TEXT PRIMARY KEY REFERENCES invoices(id),
	subtype TEXT NOT NULL,
	payload JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS row_diagnostics (
	id TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL,
	invoice_id TEXT REFERENCES invoices(id),
	source_file TEXT NOT NULL,
	ligne_pdf INT NOT NULL,
	outcome TEXT NOT NULL,
	detail JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invoices_batch ON invoices(batch_id);
CREATE INDEX IF NOT EXISTS idx_row_diagnostics_batch ON row_diagnostics(batch_id);
CREATE INDEX IF NOT EXISTS idx_row_diagnostics_outcome ON row_diagnostics(outcome);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// SaveBatch writes the whole batch in one transaction. Invoice IDs are
// assigned here: the engine's output is deterministic and carries none.
func (r *ResultRepository) SaveBatch(ctx context.Context, result *domain.BatchResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for i := range result.Results {
		if err := r.saveRow(ctx, tx, result.BatchID, &result.Results[i], now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch tx: %w", err)
	}
	return nil
}

func (r *ResultRepository) saveRow(ctx context.Context, tx *sql.Tx, batchID string, row *domain.RowResult, now time.Time) error {
	var invoiceID sql.NullString

	if row.Invoice != nil {
		inv := row.Invoice
		if inv.ID == "" {
			inv.ID = uuid.NewString()
		}
		invoiceID = sql.NullString{String: inv.ID, Valid: true}

		_, err := tx.ExecContext(ctx, `
INSERT INTO invoices (
	id, batch_id, supplier_id, nature, numero_facture, code_journal, numero_compte_comptable,
	montant_comptable, libelle_ecriture, references_partenaire_facture, statut,
	commentaire_contestation, fichier_source, ligne_pdf, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
`,
			inv.ID, batchID, inv.SupplierID, inv.Nature, inv.NumeroFacture, inv.CodeJournal,
			inv.NumeroCompteComptable, inv.MontantComptable, inv.LibelleEcriture,
			inv.ReferencesPartenaire, string(inv.Status), nullIfEmpty(inv.CommentContestation),
			inv.SourceFile, inv.LignePDF, now,
		)
		if err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}

		if row.Extension != nil {
			payload, err := json.Marshal(row.Extension)
			if err != nil {
				return fmt.Errorf("marshal extension: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO invoice_extensions (invoice_id, subtype, payload) VALUES ($1,$2,$3)
`, inv.ID, string(row.Extension.Subtype), payload); err != nil {
				return fmt.Errorf("insert extension: %w", err)
			}
		}
	}

	detail, err := json.Marshal(row.Diagnostic)
	if err != nil {
		return fmt.Errorf("marshal diagnostic: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO row_diagnostics (id, batch_id, invoice_id, source_file, ligne_pdf, outcome, detail, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, uuid.NewString(), batchID, invoiceID, row.Ref.SourceFile, row.Ref.Line, string(row.Outcome), detail, now); err != nil {
		return fmt.Errorf("insert diagnostic: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
