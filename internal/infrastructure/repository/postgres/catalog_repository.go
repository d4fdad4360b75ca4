package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

// CatalogRepository reads the supplier catalog the review UI maintains.
// Suppliers, patterns and rules are position-ordered: registration order is
// the classification tie-break and rule order the extraction tie-break.
type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052301)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS suppliers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	subtype TEXT NOT NULL,
	position INT NOT NULL
);

CREATE TABLE IF NOT EXISTS recognition_patterns (
	supplier_id TEXT NOT NULL REFERENCES suppliers(id),
	position INT NOT NULL,
	field TEXT NOT NULL,
	regex TEXT NOT NULL,
	case_sensitive BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (supplier_id, position)
);

CREATE TABLE IF NOT EXISTS extraction_rules (
	supplier_id TEXT NOT NULL REFERENCES suppliers(id),
	position INT NOT NULL,
	source_field TEXT NOT NULL,
	regex TEXT NOT NULL,
	capture_group INT NOT NULL DEFAULT 0,
	capture_name TEXT NOT NULL DEFAULT '',
	target_table TEXT NOT NULL,
	target_field TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	description TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (supplier_id, position)
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// LoadCatalog reads the full catalog and compiles it. Compile failures are
// configuration errors: the batch must not start against a broken catalog.
func (r *CatalogRepository) LoadCatalog(ctx context.Context) (*domain.CompiledCatalog, error) {
	suppliers, order, err := r.loadSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.loadPatterns(ctx, suppliers); err != nil {
		return nil, err
	}
	if err := r.loadRules(ctx, suppliers); err != nil {
		return nil, err
	}

	catalog := domain.Catalog{Suppliers: make([]domain.SupplierDefinition, 0, len(order))}
	for _, id := range order {
		catalog.Suppliers = append(catalog.Suppliers, *suppliers[id])
	}
	return catalog.Compile()
}

func (r *CatalogRepository) loadSuppliers(ctx context.Context) (map[string]*domain.SupplierDefinition, []string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, subtype
FROM suppliers
ORDER BY position
`)
	if err != nil {
		return nil, nil, fmt.Errorf("query suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := make(map[string]*domain.SupplierDefinition)
	var order []string
	for rows.Next() {
		var def domain.SupplierDefinition
		var subtype string
		if err := rows.Scan(&def.ID, &def.Name, &subtype); err != nil {
			return nil, nil, fmt.Errorf("scan supplier: %w", err)
		}
		def.Subtype = domain.Subtype(subtype)
		suppliers[def.ID] = &def
		order = append(order, def.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate suppliers: %w", err)
	}
	return suppliers, order, nil
}

func (r *CatalogRepository) loadPatterns(ctx context.Context, suppliers map[string]*domain.SupplierDefinition) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT supplier_id, field, regex, case_sensitive
FROM recognition_patterns
ORDER BY supplier_id, position
`)
	if err != nil {
		return fmt.Errorf("query recognition patterns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var supplierID string
		var p domain.RecognitionPattern
		if err := rows.Scan(&supplierID, &p.Field, &p.Expr, &p.CaseSensitive); err != nil {
			return fmt.Errorf("scan recognition pattern: %w", err)
		}
		def, ok := suppliers[supplierID]
		if !ok {
			return domain.WrapError(domain.ErrConfiguration, "load patterns",
				fmt.Errorf("pattern references unknown supplier %q", supplierID))
		}
		def.Patterns = append(def.Patterns, p)
	}
	return rows.Err()
}

func (r *CatalogRepository) loadRules(ctx context.Context, suppliers map[string]*domain.SupplierDefinition) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT supplier_id, source_field, regex, capture_group, capture_name, target_table, target_field, active, description
FROM extraction_rules
ORDER BY supplier_id, position
`)
	if err != nil {
		return fmt.Errorf("query extraction rules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var supplierID, targetTable string
		var rule domain.ExtractionRule
		if err := rows.Scan(
			&supplierID, &rule.SourceField, &rule.Expr, &rule.CaptureGroup, &rule.CaptureName,
			&targetTable, &rule.TargetField, &rule.Active, &rule.Description,
		); err != nil {
			return fmt.Errorf("scan extraction rule: %w", err)
		}
		rule.TargetTable = domain.TargetTable(targetTable)
		def, ok := suppliers[supplierID]
		if !ok {
			return domain.WrapError(domain.ErrConfiguration, "load rules",
				fmt.Errorf("rule references unknown supplier %q", supplierID))
		}
		def.Rules = append(def.Rules, rule)
	}
	return rows.Err()
}
