package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliador-ubl/internal/domain"
	"github.com/jhoicas/conciliador-ubl/internal/domain/reconciliation"
)

// Party contraparte de la factura (emisor o adquiriente).
type Party struct {
	ID                string `json:"id"`                           // NIT o documento, solo el número
	VerificationDigit string `json:"verification_digit,omitempty"` // DV declarado en schemeID
	SchemeName        string `json:"scheme_name,omitempty"`        // tipo de documento (31 = NIT)
	Name              string `json:"name,omitempty"`
}

// InvoiceNotes campos reconocidos en las notas libres (cbc:Note). No hay campo "otros":
// las etiquetas no reconocidas se descartan.
type InvoiceNotes struct {
	CostCenter    string `json:"cost_center,omitempty"`
	SAPOrder      string `json:"sap_order,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	TaxRegime     string `json:"tax_regime,omitempty"`
	AmountInWords string `json:"amount_in_words,omitempty"`
}

// InvoiceRecordParams datos de entrada para construir un InvoiceRecord.
type InvoiceRecordParams struct {
	InvoiceNumber    string
	CUFE             string
	IssueDate        time.Time
	DueDate          *time.Time
	Currency         string
	Supplier         Party
	Customer         Party
	Subtotal         decimal.Decimal
	IVA              decimal.Decimal
	Retenciones      decimal.Decimal
	Total            ResolvedTotal
	Components       MonetaryComponents
	Items            []InvoiceItem
	OrderReferences  []string
	Notes            InvoiceNotes
	PaymentMeansCode string
	PaymentFormCode  string
	Fingerprint      string
}

// InvoiceRecord resultado canónico de la extracción. Solo se construye con NewInvoiceRecord,
// que exige que los totales cuadren con la fórmula neta o con la bruta.
type InvoiceRecord struct {
	InvoiceNumber    string                        `json:"invoice_number"`
	CUFE             string                        `json:"cufe,omitempty"`
	IssueDate        time.Time                     `json:"issue_date"`
	DueDate          *time.Time                    `json:"due_date,omitempty"`
	Currency         string                        `json:"currency,omitempty"`
	Supplier         Party                         `json:"supplier"`
	Customer         Party                         `json:"customer"`
	Subtotal         decimal.Decimal               `json:"subtotal"`
	IVA              decimal.Decimal               `json:"iva"`
	Retenciones      decimal.Decimal               `json:"retenciones"`
	TotalAPagar      decimal.Decimal               `json:"total_a_pagar"`
	TotalSource      TotalSource                   `json:"total_source"`
	SourceBasis      WithholdingBasis              `json:"source_basis"`
	Interpretation   reconciliation.Interpretation `json:"interpretation"`
	Components       map[string]decimal.Decimal    `json:"components,omitempty"`
	Items            []InvoiceItem                 `json:"items"`
	OrderReferences  []string                      `json:"order_references,omitempty"`
	Notes            InvoiceNotes                  `json:"notes"`
	PaymentMeansCode string                        `json:"payment_means_code,omitempty"`
	PaymentFormCode  string                        `json:"payment_form_code,omitempty"`
	Fingerprint      string                        `json:"fingerprint,omitempty"`
}

// NewInvoiceRecord valida la coherencia de los totales y construye el registro.
// Retenciones negativas son entrada inválida. Si los totales no cuadran devuelve
// *reconciliation.CoherenceError y ningún registro.
func NewInvoiceRecord(p InvoiceRecordParams) (*InvoiceRecord, error) {
	if strings.TrimSpace(p.InvoiceNumber) == "" {
		return nil, fmt.Errorf("%w: número de factura vacío", domain.ErrInvalidInput)
	}
	if p.Retenciones.IsNegative() {
		return nil, fmt.Errorf("%w: retenciones negativas (%s)", domain.ErrInvalidInput, p.Retenciones.StringFixed(2))
	}
	interpretation, err := reconciliation.Check(reconciliation.Amounts{
		Subtotal:    p.Subtotal,
		IVA:         p.IVA,
		Retenciones: p.Retenciones,
		TotalAPagar: p.Total.Amount,
	})
	if err != nil {
		return nil, err
	}
	items := make([]InvoiceItem, len(p.Items))
	copy(items, p.Items)
	refs := make([]string, len(p.OrderReferences))
	copy(refs, p.OrderReferences)

	return &InvoiceRecord{
		InvoiceNumber:    strings.TrimSpace(p.InvoiceNumber),
		CUFE:             strings.TrimSpace(p.CUFE),
		IssueDate:        p.IssueDate,
		DueDate:          p.DueDate,
		Currency:         p.Currency,
		Supplier:         p.Supplier,
		Customer:         p.Customer,
		Subtotal:         p.Subtotal,
		IVA:              p.IVA,
		Retenciones:      p.Retenciones,
		TotalAPagar:      p.Total.Amount,
		TotalSource:      p.Total.Source,
		SourceBasis:      p.Total.Basis,
		Interpretation:   interpretation,
		Components:       p.Components.Map(),
		Items:            items,
		OrderReferences:  refs,
		Notes:            p.Notes,
		PaymentMeansCode: p.PaymentMeansCode,
		PaymentFormCode:  p.PaymentFormCode,
		Fingerprint:      p.Fingerprint,
	}, nil
}

// Key identidad del registro para la consolidación de lotes: el CUFE si existe,
// si no la huella del XML canónico, y en último caso emisor + número.
func (r *InvoiceRecord) Key() string {
	switch {
	case r.CUFE != "":
		return "cufe:" + strings.ToLower(r.CUFE)
	case r.Fingerprint != "":
		return "xml:" + r.Fingerprint
	default:
		return "num:" + r.Supplier.ID + "/" + r.InvoiceNumber
	}
}
