// Package extraction orquesta la lectura de una factura UBL: extrae componentes monetarios,
// resuelve el total a pagar, valida la coherencia y arma el InvoiceRecord con sus avisos.
package extraction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliador-ubl/internal/application/attachments"
	"github.com/jhoicas/conciliador-ubl/internal/domain"
	domaindian "github.com/jhoicas/conciliador-ubl/internal/domain/dian"
	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
	"github.com/jhoicas/conciliador-ubl/internal/domain/reconciliation"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/dian"
	pkgdian "github.com/jhoicas/conciliador-ubl/pkg/dian"
)

// Status resultado final de un documento.
type Status string

const (
	StatusAccepted     Status = "accepted"
	StatusMalformed    Status = "malformed"
	StatusMissingTotal Status = "missing_total"
	StatusIncoherent   Status = "incoherent"
	StatusCanceled     Status = "canceled"
)

// Diagnostic detalle de un rechazo por incoherencia, para revisión humana.
type Diagnostic struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	IVA           decimal.Decimal `json:"iva"`
	Retenciones   decimal.Decimal `json:"retenciones"`
	TotalAPagar   decimal.Decimal `json:"total_a_pagar"`
	TotalSource   string          `json:"total_source"`
	NetExpected   decimal.Decimal `json:"net_expected"`
	NetDelta      decimal.Decimal `json:"net_delta"`
	GrossExpected decimal.Decimal `json:"gross_expected"`
	GrossDelta    decimal.Decimal `json:"gross_delta"`
}

// Outcome resultado de procesar un documento. Los rechazos son variantes de Status, nunca panics.
type Outcome struct {
	Source        string                    `json:"source"`
	InvoiceNumber string                    `json:"invoice_number,omitempty"`
	Supplier      string                    `json:"supplier,omitempty"`
	Status        Status                    `json:"status"`
	Record        *entity.InvoiceRecord     `json:"record,omitempty"`
	Warnings      []string                  `json:"warnings,omitempty"`
	Error         string                    `json:"error,omitempty"`
	Diagnostic    *Diagnostic               `json:"diagnostic,omitempty"`
	Attachments   []attachments.StoreResult `json:"attachments,omitempty"`

	// Err causa del rechazo (envuelve los errores de domain).
	Err error `json:"-"`
	// Pending adjuntos del documento aún no almacenados.
	Pending []entity.AttachmentRecord `json:"-"`
}

// Accepted indica si el documento produjo un InvoiceRecord.
func (o Outcome) Accepted() bool { return o.Status == StatusAccepted }

func (o *Outcome) warn(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// Options parámetros de verificación DIAN.
type Options struct {
	// TechnicalKeys clave técnica por NIT emisor (solo dígitos) para recalcular el CUFE.
	TechnicalKeys map[string]string
	// Environment ambiente DIAN cuando la factura no trae cbc:ProfileExecutionID.
	Environment string
}

// Engine transformación sin estado compartido: seguro para uso concurrente.
type Engine struct {
	opts Options
	cufe *pkgdian.CufeCalculatorService
	log  zerolog.Logger
}

// NewEngine crea el motor.
func NewEngine(opts Options, log zerolog.Logger) *Engine {
	if opts.Environment == "" {
		opts.Environment = pkgdian.EnvironmentProduccion
	}
	return &Engine{opts: opts, cufe: pkgdian.NewCufeCalculatorService(), log: log}
}

// Extract parsea raw y procesa el documento. XML inválido o sin Invoice UBL es StatusMalformed.
func (e *Engine) Extract(source string, raw []byte) Outcome {
	doc, err := dian.ParseDocument(raw)
	if err != nil {
		return rejected(Outcome{Source: source}, StatusMalformed, err)
	}
	return e.ExtractDocument(source, doc)
}

// ExtractDocument procesa un documento ya parseado.
func (e *Engine) ExtractDocument(source string, doc *dian.Document) Outcome {
	root := doc.Root
	meta := dian.ExtractMetadata(root)
	out := Outcome{Source: source, InvoiceNumber: meta.InvoiceNumber, Supplier: meta.Supplier.ID}
	out.Warnings = append(out.Warnings, meta.Warnings...)

	components := dian.ExtractMonetaryComponents(root)
	total, err := dian.ResolveTotal(root)
	if err != nil {
		return rejected(out, StatusMissingTotal, err)
	}

	subtotal, ok := components.Get(entity.ComponentLineExtension)
	if !ok {
		if subtotal, ok = components.Get(entity.ComponentTaxExclusive); !ok {
			return rejected(out, StatusMalformed,
				fmt.Errorf("%w: sin LineExtensionAmount ni TaxExclusiveAmount", domain.ErrMissingSubtotal))
		}
		out.warn("sin LineExtensionAmount: subtotal tomado de TaxExclusiveAmount")
	}

	// Retenciones declaradas dentro de cac:TaxTotal se mueven del IVA a las retenciones.
	misplaced := dian.WithholdingsFromTaxTotals(components)
	taxes, _ := components.Get(entity.ComponentTotalImpuestos)
	withholdings, _ := components.Get(entity.ComponentTotalRetenciones)
	iva := taxes.Sub(misplaced)
	retenciones := withholdings.Add(misplaced)
	if misplaced.IsPositive() {
		out.warn("retenciones declaradas en TaxTotal (%s) se tratan como retenciones", misplaced.StringFixed(2))
	}

	items, dropped := dian.ExtractItems(root)
	if dropped > 0 {
		out.warn("%d línea(s) repetida(s) descartada(s)", dropped)
	}
	notes := dian.ExtractNotes(root)

	fingerprint, err := dian.Fingerprint(doc.Raw)
	if err != nil {
		out.warn("no se pudo calcular la huella del XML: %v", err)
	}

	record, err := entity.NewInvoiceRecord(entity.InvoiceRecordParams{
		InvoiceNumber:    meta.InvoiceNumber,
		CUFE:             meta.CUFE,
		IssueDate:        meta.IssueDate,
		DueDate:          meta.DueDate,
		Currency:         meta.Currency,
		Supplier:         meta.Supplier,
		Customer:         meta.Customer,
		Subtotal:         subtotal,
		IVA:              iva,
		Retenciones:      retenciones,
		Total:            total,
		Components:       components,
		Items:            items,
		OrderReferences:  dian.ExtractOrderReferences(root, notes),
		Notes:            notes,
		PaymentMeansCode: meta.PaymentMeansCode,
		PaymentFormCode:  meta.PaymentFormCode,
		Fingerprint:      fingerprint,
	})
	if err != nil {
		var ce *reconciliation.CoherenceError
		if errors.As(err, &ce) {
			out.Diagnostic = diagnosticFrom(ce, total)
			return rejected(out, StatusIncoherent, err)
		}
		return rejected(out, StatusMalformed, err)
	}

	out.Status = StatusAccepted
	out.Record = record
	e.basisWarnings(&out, record, total, components)
	e.identityWarnings(&out, record, meta, components)

	embedded, warnings := dian.ExtractEmbeddedAttachments(root, meta.Supplier.ID)
	out.Pending = embedded
	out.Warnings = append(out.Warnings, warnings...)

	e.log.Debug().
		Str("source", source).
		Str("invoice", record.InvoiceNumber).
		Str("total_source", string(total.Source)).
		Str("interpretation", string(record.Interpretation)).
		Int("warnings", len(out.Warnings)).
		Msg("factura aceptada")
	return out
}

// basisWarnings señales de que la fuente del total y la fórmula que cuadró no coinciden.
func (e *Engine) basisWarnings(out *Outcome, r *entity.InvoiceRecord, total entity.ResolvedTotal, m entity.MonetaryComponents) {
	switch {
	case !total.AlreadyNet() && r.Retenciones.IsPositive() && r.Interpretation == reconciliation.InterpretationNet:
		out.warn("el total de %s no descuenta retenciones históricamente, pero hay retenciones (%s) y cuadró con la fórmula neta",
			total.Source, r.Retenciones.StringFixed(2))
	case total.AlreadyNet() && r.Interpretation == reconciliation.InterpretationGross:
		out.warn("el total de %s se considera neto pero solo cuadra con la fórmula bruta", total.Source)
	}

	if total.Source == entity.TotalSourcePayableAmount {
		return
	}
	payable, ok := m.Get(entity.ComponentPayable)
	if !ok {
		return
	}
	// Un PayableAmount bruto que difiere justo en las retenciones es el caso esperado.
	diff := payable.Sub(total.Amount).Abs()
	grossDiff := payable.Sub(total.Amount.Add(r.Retenciones)).Abs()
	if diff.GreaterThan(reconciliation.Tolerance) && grossDiff.GreaterThan(reconciliation.Tolerance) {
		out.warn("PayableAmount (%s) difiere del total a pagar resuelto (%s, fuente %s)",
			payable.StringFixed(2), total.Amount.StringFixed(2), total.Source)
	}
}

// identityWarnings NIT de las partes y CUFE.
func (e *Engine) identityWarnings(out *Outcome, r *entity.InvoiceRecord, meta dian.Metadata, m entity.MonetaryComponents) {
	if err := domaindian.ValidateParties(r.Supplier, r.Customer); err != nil {
		out.Warnings = append(out.Warnings, strings.ReplaceAll(err.Error(), "\n", ": "))
	}

	switch {
	case r.CUFE == "":
		out.warn("factura sin CUFE")
		return
	case !pkgdian.IsWellFormedCUFE(r.CUFE):
		out.warn("CUFE con formato inválido (se esperan %d caracteres hexadecimales)", pkgdian.CUFELength)
		return
	}

	key, ok := e.opts.TechnicalKeys[r.Supplier.ID]
	if !ok {
		return
	}
	env := meta.Environment
	if env == "" {
		env = e.opts.Environment
	}
	payable, _ := m.Get(entity.ComponentPayable)
	match, err := e.cufe.Verify(&pkgdian.CufeParams{
		NumFac:         r.InvoiceNumber,
		FecFac:         r.IssueDate.Format("2006-01-02"),
		HorFac:         meta.IssueTime,
		ValFac:         r.Subtotal,
		ValImp1:        dian.SchemeAmount(m, entity.ComponentTaxSchemePrefix, pkgdian.TaxCodeIVA),
		ValImp2:        dian.SchemeAmount(m, entity.ComponentTaxSchemePrefix, pkgdian.TaxCodeINC),
		ValImp3:        dian.SchemeAmount(m, entity.ComponentTaxSchemePrefix, pkgdian.TaxCodeICA),
		ValTot:         payable,
		NitOferente:    r.Supplier.ID,
		DocAdquiriente: r.Customer.ID,
		ClaveTecnica:   key,
		TipoAmbiente:   env,
	}, r.CUFE)
	switch {
	case err != nil:
		out.warn("no se pudo recalcular el CUFE: %v", err)
	case !match:
		out.warn("el CUFE no coincide con el recalculado con la clave técnica del emisor")
	}
}

func rejected(out Outcome, status Status, err error) Outcome {
	out.Status = status
	out.Err = err
	out.Error = err.Error()
	return out
}

func diagnosticFrom(ce *reconciliation.CoherenceError, total entity.ResolvedTotal) *Diagnostic {
	return &Diagnostic{
		Subtotal:      ce.Amounts.Subtotal,
		IVA:           ce.Amounts.IVA,
		Retenciones:   ce.Amounts.Retenciones,
		TotalAPagar:   ce.Amounts.TotalAPagar,
		TotalSource:   string(total.Source),
		NetExpected:   ce.NetExpected,
		NetDelta:      ce.NetDelta,
		GrossExpected: ce.GrossExpected,
		GrossDelta:    ce.GrossDelta,
	}
}
