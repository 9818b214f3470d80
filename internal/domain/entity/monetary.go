package entity

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Nombres de componentes monetarios (claves de MonetaryComponents).
const (
	ComponentLineExtension    = "line_extension_amount"
	ComponentTaxExclusive     = "tax_exclusive_amount"
	ComponentTaxInclusive     = "tax_inclusive_amount"
	ComponentAllowanceTotal   = "allowance_total_amount"
	ComponentChargeTotal      = "charge_total_amount"
	ComponentPrepaid          = "prepaid_amount"
	ComponentPayable          = "payable_amount"
	ComponentTotalImpuestos   = "total_impuestos_calculado"
	ComponentTotalRetenciones = "total_retenciones_calculado"

	// Prefijos del desglose por código de tributo (ej: impuesto_01, retencion_06).
	ComponentTaxSchemePrefix         = "impuesto_"
	ComponentWithholdingSchemePrefix = "retencion_"
)

// MonetaryComponents mapa nombre de componente -> valor. Un componente ausente se omite;
// nunca se asume cero fuera del extractor.
type MonetaryComponents struct {
	values map[string]decimal.Decimal
}

// NewMonetaryComponents copia el mapa recibido; el resultado es inmutable.
func NewMonetaryComponents(values map[string]decimal.Decimal) MonetaryComponents {
	cp := make(map[string]decimal.Decimal, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return MonetaryComponents{values: cp}
}

// Get devuelve el componente y si está presente.
func (m MonetaryComponents) Get(name string) (decimal.Decimal, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Has indica si el componente está presente.
func (m MonetaryComponents) Has(name string) bool {
	_, ok := m.values[name]
	return ok
}

// Len número de componentes presentes.
func (m MonetaryComponents) Len() int { return len(m.values) }

// Names nombres presentes en orden alfabético.
func (m MonetaryComponents) Names() []string {
	names := make([]string, 0, len(m.values))
	for k := range m.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Map copia defensiva de los valores (para serializar).
func (m MonetaryComponents) Map() map[string]decimal.Decimal {
	cp := make(map[string]decimal.Decimal, len(m.values))
	for k, v := range m.values {
		cp[k] = v
	}
	return cp
}

// TotalSource identifica la ubicación del documento de la que salió el total a pagar.
type TotalSource string

const (
	TotalSourceCustomTotalAPagar  TotalSource = "custom_total_a_pagar"
	TotalSourcePayableAmount      TotalSource = "payable_amount"
	TotalSourceTaxInclusiveAmount TotalSource = "tax_inclusive_amount"
	TotalSourceCustomTotal        TotalSource = "custom_total"
)

// WithholdingBasis indica si la fuente del total ya descuenta las retenciones.
type WithholdingBasis int

const (
	// WithholdingGross el total de la fuente no descuenta retenciones.
	WithholdingGross WithholdingBasis = iota
	// WithholdingNet el total de la fuente ya viene neto de retenciones.
	WithholdingNet
)

func (b WithholdingBasis) String() string {
	if b == WithholdingNet {
		return "net"
	}
	return "gross"
}

// MarshalText serializa la base como "net" o "gross".
func (b WithholdingBasis) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// ResolvedTotal total a pagar elegido por el extractor de totales. Se crea una vez por documento.
type ResolvedTotal struct {
	Amount decimal.Decimal  `json:"amount"`
	Source TotalSource      `json:"source"`
	Basis  WithholdingBasis `json:"basis"`
}

// AlreadyNet indica si la fuente ganadora ya descuenta retenciones.
func (r ResolvedTotal) AlreadyNet() bool {
	return r.Basis == WithholdingNet
}
