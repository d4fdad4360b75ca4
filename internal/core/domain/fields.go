package domain

import (
	"fmt"
	"time"
)

// FieldKind drives the secondary validation applied to captured text before
// it is written to a target field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
	FieldDate
)

// TargetTable names the table an extraction rule writes to: the base invoice
// ("facture") or one of the subtype extensions.
type TargetTable string

const TargetInvoice TargetTable = TargetTable(SubtypeGeneric)

// invoiceFields is the set of base invoice fields a rule may target.
var invoiceFields = map[string]FieldKind{
	"nature":                        FieldText,
	"numero_facture":                FieldText,
	"code_journal":                  FieldText,
	"numero_compte_comptable":       FieldText,
	"montant_comptable":             FieldNumber,
	"libelle_ecriture":              FieldText,
	"references_partenaire_facture": FieldText,
}

var meterFields = map[string]FieldKind{
	"index_debut": FieldNumber,
	"index_fin":   FieldNumber,
	"date_debut":  FieldDate,
	"date_fin":    FieldDate,
	"periode":     FieldText,
}

var extensionFields = map[Subtype]map[string]FieldKind{
	SubtypeElectricity: meterFields,
	SubtypeWater:       withField(meterFields, "numero_compteur", FieldText),
	SubtypeGas:         withField(meterFields, "coefficient_conversion", FieldNumber),
}

func withField(base map[string]FieldKind, name string, kind FieldKind) map[string]FieldKind {
	out := make(map[string]FieldKind, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	out[name] = kind
	return out
}

// TargetFieldKind resolves a rule target against the declared schemas.
func TargetFieldKind(table TargetTable, field string) (FieldKind, error) {
	var schema map[string]FieldKind
	if table == TargetInvoice {
		schema = invoiceFields
	} else {
		schema = extensionFields[Subtype(table)]
	}
	if schema == nil {
		return FieldText, fmt.Errorf("unknown target table %q", table)
	}
	kind, ok := schema[field]
	if !ok {
		return FieldText, fmt.Errorf("target table %q has no field %q", table, field)
	}
	return kind, nil
}

// BaseInvoiceFields lists the base fields in a stable order, used for the
// per-row fill report.
func BaseInvoiceFields() []string {
	return []string{
		"nature",
		"numero_facture",
		"code_journal",
		"numero_compte_comptable",
		"montant_comptable",
		"libelle_ecriture",
		"references_partenaire_facture",
	}
}

// SetField writes a validated text value to a base invoice field. Numeric
// fields receive the pre-parsed number instead.
func (inv *Invoice) SetField(field, text string, number float64) error {
	switch field {
	case "nature":
		inv.Nature = text
	case "numero_facture":
		inv.NumeroFacture = text
	case "code_journal":
		inv.CodeJournal = text
	case "numero_compte_comptable":
		inv.NumeroCompteComptable = text
	case "montant_comptable":
		inv.MontantComptable = number
	case "libelle_ecriture":
		inv.LibelleEcriture = text
	case "references_partenaire_facture":
		inv.ReferencesPartenaire = text
	default:
		return fmt.Errorf("invoice has no field %q", field)
	}
	return nil
}

// SetField writes a validated value to the extension variant. The caller has
// already coerced the captured text according to the field kind.
func (e *Extension) SetField(field, text string, number float64, date time.Time) error {
	switch e.Subtype {
	case SubtypeElectricity:
		return e.Electricity.set(field, text, number, date)
	case SubtypeWater:
		return e.Water.set(field, text, number, date)
	case SubtypeGas:
		return e.Gas.set(field, text, number, date)
	}
	return fmt.Errorf("extension subtype %q has no fields", e.Subtype)
}

func (d *ElectricityDetails) set(field, text string, number float64, date time.Time) error {
	switch field {
	case "index_debut":
		d.IndexDebut = &number
	case "index_fin":
		d.IndexFin = &number
	case "date_debut":
		d.DateDebut = &date
	case "date_fin":
		d.DateFin = &date
	case "periode":
		d.Periode = text
	default:
		return fmt.Errorf("electricity extension has no field %q", field)
	}
	return nil
}

func (d *WaterDetails) set(field, text string, number float64, date time.Time) error {
	switch field {
	case "index_debut":
		d.IndexDebut = &number
	case "index_fin":
		d.IndexFin = &number
	case "date_debut":
		d.DateDebut = &date
	case "date_fin":
		d.DateFin = &date
	case "periode":
		d.Periode = text
	case "numero_compteur":
		d.NumeroCompteur = text
	default:
		return fmt.Errorf("water extension has no field %q", field)
	}
	return nil
}

func (d *GasDetails) set(field, text string, number float64, date time.Time) error {
	switch field {
	case "index_debut":
		d.IndexDebut = &number
	case "index_fin":
		d.IndexFin = &number
	case "date_debut":
		d.DateDebut = &date
	case "date_fin":
		d.DateFin = &date
	case "periode":
		d.Periode = text
	case "coefficient_conversion":
		d.CoefficientConversion = &number
	default:
		return fmt.Errorf("gas extension has no field %q", field)
	}
	return nil
}
