package dian

import (
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
	"github.com/jhoicas/conciliador-ubl/pkg/dian"
)

// Metadata datos de cabecera de la factura.
type Metadata struct {
	InvoiceNumber    string
	CUFE             string
	IssueDate        time.Time
	IssueTime        string // tal como viene en cbc:IssueTime; entra en el CUFE
	DueDate          *time.Time
	Currency         string
	Supplier         entity.Party
	Customer         entity.Party
	PaymentMeansCode string
	PaymentFormCode  string
	Environment      string // cbc:ProfileExecutionID
	// Warnings problemas no fatales (fechas que no parsean).
	Warnings []string
}

const dateLayout = "2006-01-02"

// ExtractMetadata lee número, CUFE, fechas, moneda, partes y medio de pago.
func ExtractMetadata(invoice *etree.Element) Metadata {
	m := Metadata{
		InvoiceNumber:    textOrEmpty(invoice, "cbc:ID"),
		CUFE:             textOrEmpty(invoice, "cbc:UUID"),
		IssueTime:        textOrEmpty(invoice, "cbc:IssueTime"),
		Currency:         textOrEmpty(invoice, "cbc:DocumentCurrencyCode"),
		Supplier:         extractParty(invoice, "cac:AccountingSupplierParty/cac:Party"),
		Customer:         extractParty(invoice, "cac:AccountingCustomerParty/cac:Party"),
		PaymentMeansCode: textOrEmpty(invoice, "cac:PaymentMeans/cbc:PaymentMeansCode"),
		PaymentFormCode:  textOrEmpty(invoice, "cac:PaymentMeans/cbc:ID"),
		Environment:      textOrEmpty(invoice, "cbc:ProfileExecutionID"),
	}

	if s, ok := Text(invoice, "cbc:IssueDate"); ok && s != "" {
		if t, err := time.Parse(dateLayout, s); err == nil {
			m.IssueDate = t
		} else {
			m.Warnings = append(m.Warnings, fmt.Sprintf("fecha de emisión inválida %q", s))
		}
	}

	for _, p := range []string{"cbc:DueDate", "cac:PaymentMeans/cbc:PaymentDueDate"} {
		s, ok := Text(invoice, p)
		if !ok || s == "" {
			continue
		}
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			m.Warnings = append(m.Warnings, fmt.Sprintf("fecha de vencimiento inválida %q", s))
			continue
		}
		m.DueDate = &t
		break
	}
	return m
}

func extractParty(invoice *etree.Element, partyPath string) entity.Party {
	party := Node(invoice, partyPath)
	if party == nil {
		return entity.Party{}
	}

	var p entity.Party
	id := Node(party, "cac:PartyTaxScheme/cbc:CompanyID")
	if id == nil || id.Text() == "" {
		id = Node(party, "cac:PartyIdentification/cbc:ID")
	}
	if id != nil {
		p.ID = dian.NormalizeNIT(id.Text())
		p.VerificationDigit = id.SelectAttrValue("schemeID", "")
		p.SchemeName = id.SelectAttrValue("schemeName", "")
	}

	for _, path := range []string{
		"cac:PartyTaxScheme/cbc:RegistrationName",
		"cac:PartyLegalEntity/cbc:RegistrationName",
		"cac:PartyName/cbc:Name",
	} {
		if v, ok := Text(party, path); ok && v != "" {
			p.Name = v
			break
		}
	}
	return p
}
