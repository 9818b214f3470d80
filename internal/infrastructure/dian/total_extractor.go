package dian

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/jhoicas/conciliador-ubl/internal/domain"
	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
)

type totalCandidate struct {
	source entity.TotalSource
	path   string
	basis  entity.WithholdingBasis
}

// totalCandidates orden fijo de confianza. El campo TotalAPagar de las extensiones del
// proveedor ya descuenta retenciones; los demás se toman brutos.
var totalCandidates = []totalCandidate{
	{entity.TotalSourceCustomTotalAPagar, "ext:UBLExtensions//*:TotalAPagar", entity.WithholdingNet},
	{entity.TotalSourcePayableAmount, "cac:LegalMonetaryTotal/cbc:PayableAmount", entity.WithholdingGross},
	{entity.TotalSourceTaxInclusiveAmount, "cac:LegalMonetaryTotal/cbc:TaxInclusiveAmount", entity.WithholdingGross},
	{entity.TotalSourceCustomTotal, "ext:UBLExtensions//*:Total", entity.WithholdingGross},
}

// ResolveTotal devuelve el primer candidato presente y mayor que cero. No promedia ni combina
// candidatos. Sin candidato utilizable devuelve domain.ErrMissingTotal.
func ResolveTotal(invoice *etree.Element) (entity.ResolvedTotal, error) {
	for _, c := range totalCandidates {
		v, ok := Decimal(invoice, c.path)
		if !ok || !v.IsPositive() {
			continue
		}
		return entity.ResolvedTotal{Amount: v, Source: c.source, Basis: c.basis}, nil
	}
	return entity.ResolvedTotal{}, fmt.Errorf("%w: se probaron %d fuentes", domain.ErrMissingTotal, len(totalCandidates))
}
