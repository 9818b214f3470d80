// Package reconciliation valida la coherencia aritmética entre subtotal, IVA,
// retenciones y total a pagar de una factura electrónica.
//
// Se aceptan dos formas excluyentes:
//
//	neta:  total_a_pagar == subtotal + iva - retenciones
//	bruta: total_a_pagar == subtotal + iva, con retenciones > 0 declaradas aparte
//
// No se modela el neteo parcial (algunas retenciones descontadas y otras no).
package reconciliation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliador-ubl/internal/domain"
)

// Tolerance absorbe el redondeo del sistema emisor (±1 unidad monetaria).
var Tolerance = decimal.NewFromInt(1)

// Interpretation indica con cuál fórmula cuadró el total.
type Interpretation string

const (
	InterpretationNet   Interpretation = "net"
	InterpretationGross Interpretation = "gross"
)

// Amounts los cuatro valores que entran a la validación.
type Amounts struct {
	Subtotal    decimal.Decimal
	IVA         decimal.Decimal
	Retenciones decimal.Decimal
	TotalAPagar decimal.Decimal
}

// CoherenceError describe un rechazo: ambas fórmulas, su valor esperado y la diferencia real.
type CoherenceError struct {
	Amounts       Amounts
	NetExpected   decimal.Decimal // subtotal + iva - retenciones
	NetDelta      decimal.Decimal // |total - NetExpected|
	GrossExpected decimal.Decimal // subtotal + iva
	GrossDelta    decimal.Decimal // |total - GrossExpected|
	Tolerance     decimal.Decimal
}

func (e *CoherenceError) Error() string {
	return fmt.Sprintf(
		"%s: total_a_pagar=%s; neta (subtotal+iva-retenciones)=%s diferencia=%s; bruta (subtotal+iva)=%s diferencia=%s; tolerancia=%s",
		domain.ErrIncoherentTotals.Error(),
		e.Amounts.TotalAPagar.StringFixed(2),
		e.NetExpected.StringFixed(2), e.NetDelta.StringFixed(2),
		e.GrossExpected.StringFixed(2), e.GrossDelta.StringFixed(2),
		e.Tolerance.StringFixed(2),
	)
}

// Unwrap permite errors.Is(err, domain.ErrIncoherentTotals).
func (e *CoherenceError) Unwrap() error {
	return domain.ErrIncoherentTotals
}

// Check decide cuál fórmula satisface el total. Si ambas cuadran gana la neta.
func Check(a Amounts) (Interpretation, error) {
	gross := a.Subtotal.Add(a.IVA)
	net := gross.Sub(a.Retenciones)

	netDelta := a.TotalAPagar.Sub(net).Abs()
	grossDelta := a.TotalAPagar.Sub(gross).Abs()

	if netDelta.LessThanOrEqual(Tolerance) {
		return InterpretationNet, nil
	}
	if a.Retenciones.IsPositive() && grossDelta.LessThanOrEqual(Tolerance) {
		return InterpretationGross, nil
	}
	return "", &CoherenceError{
		Amounts:       a,
		NetExpected:   net,
		NetDelta:      netDelta,
		GrossExpected: gross,
		GrossDelta:    grossDelta,
		Tolerance:     Tolerance,
	}
}
