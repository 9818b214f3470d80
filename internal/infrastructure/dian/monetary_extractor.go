package dian

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
	"github.com/jhoicas/conciliador-ubl/pkg/dian"
)

// Campos simples de cac:LegalMonetaryTotal.
var legalMonetaryFields = []struct {
	name string
	path string
}{
	{entity.ComponentLineExtension, "cac:LegalMonetaryTotal/cbc:LineExtensionAmount"},
	{entity.ComponentTaxExclusive, "cac:LegalMonetaryTotal/cbc:TaxExclusiveAmount"},
	{entity.ComponentTaxInclusive, "cac:LegalMonetaryTotal/cbc:TaxInclusiveAmount"},
	{entity.ComponentAllowanceTotal, "cac:LegalMonetaryTotal/cbc:AllowanceTotalAmount"},
	{entity.ComponentChargeTotal, "cac:LegalMonetaryTotal/cbc:ChargeTotalAmount"},
	{entity.ComponentPrepaid, "cac:LegalMonetaryTotal/cbc:PrepaidAmount"},
	{entity.ComponentPayable, "cac:LegalMonetaryTotal/cbc:PayableAmount"},
}

// ExtractMonetaryComponents recoge todas las cifras monetarias del documento sin interpretarlas.
// Los campos de LegalMonetaryTotal ausentes o inválidos se omiten. Los agregados de impuestos y
// retenciones siempre están presentes: sin grupos valen 0.00.
func ExtractMonetaryComponents(invoice *etree.Element) entity.MonetaryComponents {
	values := make(map[string]decimal.Decimal, len(legalMonetaryFields)+4)

	for _, f := range legalMonetaryFields {
		if v, ok := Decimal(invoice, f.path); ok {
			values[f.name] = v
		}
	}

	// Solo grupos a nivel de documento: los TaxTotal de cada InvoiceLine no cuentan.
	values[entity.ComponentTotalImpuestos] = sumGroups(invoice, "cac:TaxTotal", entity.ComponentTaxSchemePrefix, values)
	values[entity.ComponentTotalRetenciones] = sumGroups(invoice, "cac:WithholdingTaxTotal", entity.ComponentWithholdingSchemePrefix, values)

	return entity.NewMonetaryComponents(values)
}

// sumGroups suma cbc:TaxAmount de cada grupo (ausente o inválido suma cero) y acumula en
// values el desglose por código de tributo de sus cac:TaxSubtotal.
func sumGroups(invoice *etree.Element, groupPath, prefix string, values map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, group := range Nodes(invoice, groupPath) {
		if v, ok := Decimal(group, "cbc:TaxAmount"); ok {
			total = total.Add(v)
		}
		for _, sub := range Nodes(group, "cac:TaxSubtotal") {
			code, ok := Text(sub, "cac:TaxCategory/cac:TaxScheme/cbc:ID")
			if !ok || code == "" {
				continue
			}
			amount, ok := Decimal(sub, "cbc:TaxAmount")
			if !ok {
				continue
			}
			key := prefix + code
			values[key] = values[key].Add(amount)
		}
	}
	return total
}

// SchemeAmount valor del desglose para un código de tributo; cero si no aparece.
func SchemeAmount(m entity.MonetaryComponents, prefix, code string) decimal.Decimal {
	v, _ := m.Get(prefix + code)
	return v
}

// WithholdingsFromTaxTotals suma los TaxTotal cuyo tributo es una retención (05, 06, 07).
// Algunos emisores declaran las retenciones en cac:TaxTotal en lugar de cac:WithholdingTaxTotal.
func WithholdingsFromTaxTotals(m entity.MonetaryComponents) decimal.Decimal {
	total := decimal.Zero
	for key, v := range m.Map() {
		code, ok := strings.CutPrefix(key, entity.ComponentTaxSchemePrefix)
		if ok && dian.IsWithholdingTaxCode(code) {
			total = total.Add(v)
		}
	}
	return total
}
