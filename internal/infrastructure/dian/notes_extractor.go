package dian

import (
	"strings"
	"unicode"

	"github.com/beevik/etree"

	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
)

type noteSlot int

const (
	slotNone noteSlot = iota
	slotCostCenter
	slotSAPOrder
	slotPaymentMethod
	slotTaxRegime
	slotAmountInWords
)

// noteLabels etiquetas reconocidas, ya normalizadas (minúsculas, sin tildes ni puntuación).
var noteLabels = map[string]noteSlot{
	"centro de costo":        slotCostCenter,
	"centro de costos":       slotCostCenter,
	"centro costo":           slotCostCenter,
	"ceco":                   slotCostCenter,
	"cc":                     slotCostCenter,
	"orden sap":              slotSAPOrder,
	"pedido sap":             slotSAPOrder,
	"orden de compra":        slotSAPOrder,
	"orden de compra sap":    slotSAPOrder,
	"oc":                     slotSAPOrder,
	"po":                     slotSAPOrder,
	"forma de pago":          slotPaymentMethod,
	"medio de pago":          slotPaymentMethod,
	"metodo de pago":         slotPaymentMethod,
	"condiciones de pago":    slotPaymentMethod,
	"regimen":                slotTaxRegime,
	"regimen tributario":     slotTaxRegime,
	"regimen fiscal":         slotTaxRegime,
	"tipo de regimen":        slotTaxRegime,
	"responsabilidad fiscal": slotTaxRegime,
	"son":                    slotAmountInWords,
	"valor en letras":        slotAmountInWords,
	"total en letras":        slotAmountInWords,
	"monto en letras":        slotAmountInWords,
}

// ExtractNotes clasifica los segmentos "etiqueta: valor" de cada cbc:Note (separados por salto de
// línea o "|") en los campos fijos de InvoiceNotes. Las etiquetas no reconocidas se descartan.
// Si una etiqueta aparece varias veces se conserva el primer valor.
func ExtractNotes(invoice *etree.Element) entity.InvoiceNotes {
	var notes entity.InvoiceNotes
	for _, n := range Nodes(invoice, "cbc:Note") {
		for _, seg := range splitNote(n.Text()) {
			label, value, ok := strings.Cut(seg, ":")
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			assign(&notes, noteLabels[normalizeLabel(label)], value)
		}
	}
	return notes
}

func splitNote(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '|'
	})
}

func assign(n *entity.InvoiceNotes, slot noteSlot, value string) {
	var dst *string
	switch slot {
	case slotCostCenter:
		dst = &n.CostCenter
	case slotSAPOrder:
		dst = &n.SAPOrder
	case slotPaymentMethod:
		dst = &n.PaymentMethod
	case slotTaxRegime:
		dst = &n.TaxRegime
	case slotAmountInWords:
		dst = &n.AmountInWords
	default:
		return
	}
	if *dst == "" {
		*dst = value
	}
}

// normalizeLabel "Orden de Compra N°." -> "orden de compra".
func normalizeLabel(label string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, label)
	words := strings.Fields(entity.NormalizeDescription(cleaned))
	// Sufijos de numeración que no cambian el significado de la etiqueta.
	for len(words) > 1 {
		switch words[len(words)-1] {
		case "no", "nro", "num", "numero", "n":
			words = words[:len(words)-1]
			continue
		}
		break
	}
	return strings.Join(words, " ")
}

// ExtractOrderReferences cbc:ID de cada cac:OrderReference, sin repetidos y en orden. Si las
// notas traen una orden SAP que no estaba, se agrega al final.
func ExtractOrderReferences(invoice *etree.Element, notes entity.InvoiceNotes) []string {
	var refs []string
	seen := map[string]struct{}{}
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		refs = append(refs, id)
	}
	for _, ref := range Nodes(invoice, "cac:OrderReference") {
		id, _ := Text(ref, "cbc:ID")
		add(id)
	}
	add(notes.SAPOrder)
	return refs
}
