package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// InvoiceItem línea de detalle extraída de cac:InvoiceLine.
// Hash es un hash de contenido para deduplicar; no es una llave de base de datos.
type InvoiceItem struct {
	LineID      string          `json:"line_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineValue   decimal.Decimal `json:"line_value"`
	ProductCode string          `json:"product_code,omitempty"`
	Hash        string          `json:"hash"`
}

// NewInvoiceItem construye el ítem y calcula su hash de contenido.
func NewInvoiceItem(lineID, description string, quantity, unitPrice, lineValue decimal.Decimal, productCode string) InvoiceItem {
	description = strings.TrimSpace(description)
	return InvoiceItem{
		LineID:      strings.TrimSpace(lineID),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineValue:   lineValue,
		ProductCode: strings.TrimSpace(productCode),
		Hash:        ItemHash(description, lineValue),
	}
}

// ItemHash SHA-256 (hex) de la descripción normalizada + "|" + valor de línea con 2 decimales.
func ItemHash(description string, lineValue decimal.Decimal) string {
	sum := sha256.Sum256([]byte(NormalizeDescription(description) + "|" + lineValue.StringFixed(2)))
	return hex.EncodeToString(sum[:])
}

// NormalizeDescription minúsculas, sin tildes y con espacios colapsados.
// "  Café  ORGÁNICO " -> "cafe organico".
func NormalizeDescription(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
