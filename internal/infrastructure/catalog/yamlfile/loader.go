// Package yamlfile loads supplier catalogs from YAML files, used by the CLI
// and as hand-built fixtures in tests. The compiled result goes through the
// same validation as catalogs loaded from the database.
package yamlfile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

type catalogFile struct {
	Suppliers []supplierEntry `yaml:"suppliers"`
}

type supplierEntry struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Subtype  string         `yaml:"subtype"`
	Patterns []patternEntry `yaml:"patterns"`
	Rules    []ruleEntry    `yaml:"rules"`
}

type patternEntry struct {
	Field         string `yaml:"field"`
	Regex         string `yaml:"regex"`
	CaseSensitive bool   `yaml:"case_sensitive"`
}

type ruleEntry struct {
	SourceField  string `yaml:"source_field"`
	Regex        string `yaml:"regex"`
	CaptureGroup int    `yaml:"capture_group"`
	CaptureName  string `yaml:"capture_name"`
	TargetTable  string `yaml:"target_table"`
	TargetField  string `yaml:"target_field"`
	Active       *bool  `yaml:"active"`
	Description  string `yaml:"description"`
}

func (l *Loader) LoadCatalog(_ context.Context) (*domain.CompiledCatalog, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "read catalog file", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "parse catalog yaml", err)
	}

	catalog := domain.Catalog{Suppliers: make([]domain.SupplierDefinition, 0, len(file.Suppliers))}
	for _, entry := range file.Suppliers {
		catalog.Suppliers = append(catalog.Suppliers, toDefinition(entry))
	}

	compiled, err := catalog.Compile()
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", l.path, err)
	}
	return compiled, nil
}

func toDefinition(entry supplierEntry) domain.SupplierDefinition {
	def := domain.SupplierDefinition{
		ID:      entry.ID,
		Name:    entry.Name,
		Subtype: domain.Subtype(entry.Subtype),
	}
	for _, p := range entry.Patterns {
		def.Patterns = append(def.Patterns, domain.RecognitionPattern{
			Field:         p.Field,
			Expr:          p.Regex,
			CaseSensitive: p.CaseSensitive,
		})
	}
	for _, r := range entry.Rules {
		// Rules default to active, matching the catalog table's default.
		active := r.Active == nil || *r.Active
		def.Rules = append(def.Rules, domain.ExtractionRule{
			SourceField:  r.SourceField,
			Expr:         r.Regex,
			CaptureGroup: r.CaptureGroup,
			CaptureName:  r.CaptureName,
			TargetTable:  domain.TargetTable(r.TargetTable),
			TargetField:  r.TargetField,
			Active:       active,
			Description:  r.Description,
		})
	}
	return def
}
