package domain

import "time"

type InvoiceStatus string

const (
	StatusPending   InvoiceStatus = "pending"
	StatusValidated InvoiceStatus = "validated"
	StatusDisputed  InvoiceStatus = "disputed"
)

// Subtype is the specialized invoice category a supplier implies. Values
// match the historical catalog data, "facture" being the generic category.
type Subtype string

const (
	SubtypeElectricity Subtype = "electricite"
	SubtypeWater       Subtype = "eau"
	SubtypeGas         Subtype = "gaz"
	SubtypeGeneric     Subtype = "facture"
)

func (s Subtype) Valid() bool {
	switch s {
	case SubtypeElectricity, SubtypeWater, SubtypeGas, SubtypeGeneric:
		return true
	}
	return false
}

// Invoice is the structured output of field extraction. Fields not filled by
// any rule keep their zero value and are reported as unfilled.
type Invoice struct {
	ID                    string        `json:"id,omitempty"`
	SupplierID            string        `json:"supplier_id"`
	Nature                string        `json:"nature"`
	NumeroFacture         string        `json:"numero_facture"`
	CodeJournal           string        `json:"code_journal"`
	NumeroCompteComptable string        `json:"numero_compte_comptable"`
	MontantComptable      float64       `json:"montant_comptable"`
	LibelleEcriture       string        `json:"libelle_ecriture"`
	ReferencesPartenaire  string        `json:"references_partenaire_facture"`
	Status                InvoiceStatus `json:"statut"`
	CommentContestation   string        `json:"commentaire_contestation,omitempty"`
	SourceFile            string        `json:"fichier_source"`
	LignePDF              int           `json:"ligne_pdf"`
}

// Extension is the subtype-specific payload attached to an Invoice. Exactly
// one variant is set, matching the Subtype discriminator.
type Extension struct {
	Subtype     Subtype             `json:"subtype"`
	Electricity *ElectricityDetails `json:"electricite,omitempty"`
	Water       *WaterDetails       `json:"eau,omitempty"`
	Gas         *GasDetails         `json:"gaz,omitempty"`
}

type ElectricityDetails struct {
	IndexDebut *float64   `json:"index_debut,omitempty"`
	IndexFin   *float64   `json:"index_fin,omitempty"`
	DateDebut  *time.Time `json:"date_debut,omitempty"`
	DateFin    *time.Time `json:"date_fin,omitempty"`
	Periode    string     `json:"periode,omitempty"`
}

type WaterDetails struct {
	IndexDebut     *float64   `json:"index_debut,omitempty"`
	IndexFin       *float64   `json:"index_fin,omitempty"`
	DateDebut      *time.Time `json:"date_debut,omitempty"`
	DateFin        *time.Time `json:"date_fin,omitempty"`
	Periode        string     `json:"periode,omitempty"`
	NumeroCompteur string     `json:"numero_compteur,omitempty"`
}

type GasDetails struct {
	IndexDebut            *float64   `json:"index_debut,omitempty"`
	IndexFin              *float64   `json:"index_fin,omitempty"`
	DateDebut             *time.Time `json:"date_debut,omitempty"`
	DateFin               *time.Time `json:"date_fin,omitempty"`
	Periode               string     `json:"periode,omitempty"`
	CoefficientConversion *float64   `json:"coefficient_conversion,omitempty"`
}

// NewExtension allocates the variant matching the subtype. Generic invoices
// carry no extension.
func NewExtension(subtype Subtype) *Extension {
	switch subtype {
	case SubtypeElectricity:
		return &Extension{Subtype: subtype, Electricity: &ElectricityDetails{}}
	case SubtypeWater:
		return &Extension{Subtype: subtype, Water: &WaterDetails{}}
	case SubtypeGas:
		return &Extension{Subtype: subtype, Gas: &GasDetails{}}
	}
	return nil
}
