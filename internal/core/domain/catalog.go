package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// RecognitionPattern matches one row field against a regular expression.
// Case sensitivity is a per-pattern property: detection regexes usually run
// case-insensitively against scanned text.
type RecognitionPattern struct {
	Field         string
	Expr          string
	CaseSensitive bool
}

// ExtractionRule maps a regex capture over a source field to a target field
// on the base invoice or the supplier's subtype extension. Rule order within
// a supplier is the tie-break when several rules target the same field.
type ExtractionRule struct {
	SourceField  string
	Expr         string
	CaptureGroup int
	CaptureName  string
	TargetTable  TargetTable
	TargetField  string
	Active       bool
	Description  string
}

// SupplierDefinition is one catalog entry: how to recognize the supplier and
// how to pull invoice fields out of its rows.
type SupplierDefinition struct {
	ID       string
	Name     string
	Subtype  Subtype
	Patterns []RecognitionPattern
	Rules    []ExtractionRule
}

// Catalog is the raw, data-driven supplier catalog as loaded from storage.
// Supplier order is significant: the first registered supplier wins when
// several match the same row.
type Catalog struct {
	Suppliers []SupplierDefinition
}

// CompiledPattern is a RecognitionPattern with its expression compiled.
type CompiledPattern struct {
	Field string
	Expr  *regexp.Regexp
}

// CompiledRule carries the compiled expression, resolved capture index and
// target field kind for one active extraction rule.
type CompiledRule struct {
	SourceField  string
	Expr         *regexp.Regexp
	CaptureGroup int
	TargetTable  TargetTable
	TargetField  string
	Kind         FieldKind
}

type CompiledSupplier struct {
	ID       string
	Name     string
	Subtype  Subtype
	Patterns []CompiledPattern
	Rules    []CompiledRule
}

// CompiledCatalog is the immutable, validated form handed to a batch run.
type CompiledCatalog struct {
	Suppliers []*CompiledSupplier
}

// Compile validates the catalog eagerly and compiles every expression, so a
// malformed catalog fails the whole batch before any row is touched.
// Inactive rules are dropped here.
func (c Catalog) Compile() (*CompiledCatalog, error) {
	if len(c.Suppliers) == 0 {
		return nil, WrapError(ErrConfiguration, "compile catalog", errors.New("catalog has no suppliers"))
	}

	seen := make(map[string]bool, len(c.Suppliers))
	compiled := &CompiledCatalog{Suppliers: make([]*CompiledSupplier, 0, len(c.Suppliers))}

	for _, def := range c.Suppliers {
		sup, err := compileSupplier(def, seen)
		if err != nil {
			return nil, WrapError(ErrConfiguration, "compile catalog", err)
		}
		compiled.Suppliers = append(compiled.Suppliers, sup)
	}
	return compiled, nil
}

func compileSupplier(def SupplierDefinition, seen map[string]bool) (*CompiledSupplier, error) {
	if def.ID == "" {
		return nil, errors.New("supplier without id")
	}
	if seen[def.ID] {
		return nil, fmt.Errorf("duplicate supplier id %q", def.ID)
	}
	seen[def.ID] = true

	if !def.Subtype.Valid() {
		return nil, fmt.Errorf("supplier %q: unknown subtype %q", def.ID, def.Subtype)
	}
	if len(def.Patterns) == 0 {
		return nil, fmt.Errorf("supplier %q has no recognition patterns", def.ID)
	}

	sup := &CompiledSupplier{
		ID:      def.ID,
		Name:    def.Name,
		Subtype: def.Subtype,
	}

	for i, p := range def.Patterns {
		cp, err := compilePattern(p)
		if err != nil {
			return nil, fmt.Errorf("supplier %q pattern %d: %w", def.ID, i, err)
		}
		sup.Patterns = append(sup.Patterns, cp)
	}

	for i, r := range def.Rules {
		if !r.Active {
			continue
		}
		cr, err := compileRule(r, def.Subtype)
		if err != nil {
			return nil, fmt.Errorf("supplier %q rule %d: %w", def.ID, i, err)
		}
		sup.Rules = append(sup.Rules, cr)
	}
	return sup, nil
}

func compilePattern(p RecognitionPattern) (CompiledPattern, error) {
	if p.Field == "" {
		return CompiledPattern{}, errors.New("pattern without field")
	}
	expr := p.Expr
	if !p.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return CompiledPattern{}, fmt.Errorf("invalid detection regex %q: %w", p.Expr, err)
	}
	return CompiledPattern{Field: p.Field, Expr: re}, nil
}

func compileRule(r ExtractionRule, subtype Subtype) (CompiledRule, error) {
	if r.SourceField == "" {
		return CompiledRule{}, errors.New("rule without source field")
	}

	table := r.TargetTable
	if table == "" {
		table = TargetInvoice
	}
	if table != TargetInvoice {
		if subtype == SubtypeGeneric {
			return CompiledRule{}, fmt.Errorf("generic supplier cannot target table %q", table)
		}
		if Subtype(table) != subtype {
			return CompiledRule{}, fmt.Errorf("target table %q does not match supplier subtype %q", table, subtype)
		}
	}

	kind, err := TargetFieldKind(table, r.TargetField)
	if err != nil {
		return CompiledRule{}, err
	}

	// Extraction regexes always run case-insensitively and in multiline
	// mode: scanned text has unreliable casing, and raw-text rows span
	// lines, so ^ and $ anchor per line.
	re, err := regexp.Compile("(?im)" + r.Expr)
	if err != nil {
		return CompiledRule{}, fmt.Errorf("invalid extraction regex %q: %w", r.Expr, err)
	}

	group, err := resolveCapture(re, r.CaptureGroup, r.CaptureName)
	if err != nil {
		return CompiledRule{}, err
	}

	return CompiledRule{
		SourceField:  r.SourceField,
		Expr:         re,
		CaptureGroup: group,
		TargetTable:  table,
		TargetField:  r.TargetField,
		Kind:         kind,
	}, nil
}

// resolveCapture picks the capture index for a rule: an explicit named group
// first, then an explicit positional group, then group 1 when the expression
// has groups, else the whole match.
func resolveCapture(re *regexp.Regexp, group int, name string) (int, error) {
	if name != "" {
		for i, n := range re.SubexpNames() {
			if n == name {
				return i, nil
			}
		}
		return 0, fmt.Errorf("regex %q has no capture group named %q", re.String(), name)
	}
	if group < 0 || group > re.NumSubexp() {
		return 0, fmt.Errorf("capture group %d out of range for regex %q", group, re.String())
	}
	if group == 0 && re.NumSubexp() > 0 {
		return 1, nil
	}
	return group, nil
}
