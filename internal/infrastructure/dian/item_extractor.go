package dian

import (
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
)

// ExtractItems recorre cac:InvoiceLine. Las líneas repetidas (mismo hash de contenido) se
// colapsan conservando la primera; dropped indica cuántas se descartaron.
func ExtractItems(invoice *etree.Element) (items []entity.InvoiceItem, dropped int) {
	lines := Nodes(invoice, "cac:InvoiceLine")
	items = make([]entity.InvoiceItem, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))

	for _, line := range lines {
		item := entity.NewInvoiceItem(
			textOrEmpty(line, "cbc:ID"),
			textOrEmpty(line, "cac:Item/cbc:Description"),
			decimalOrZero(line, "cbc:InvoicedQuantity"),
			decimalOrZero(line, "cac:Price/cbc:PriceAmount"),
			decimalOrZero(line, "cbc:LineExtensionAmount"),
			productCode(line),
		)
		if _, dup := seen[item.Hash]; dup {
			dropped++
			continue
		}
		seen[item.Hash] = struct{}{}
		items = append(items, item)
	}
	return items, dropped
}

func productCode(line *etree.Element) string {
	for _, p := range []string{
		"cac:Item/cac:StandardItemIdentification/cbc:ID",
		"cac:Item/cac:SellersItemIdentification/cbc:ID",
	} {
		if v, ok := Text(line, p); ok && v != "" {
			return v
		}
	}
	return ""
}

func textOrEmpty(node *etree.Element, path string) string {
	v, _ := Text(node, path)
	return v
}

func decimalOrZero(node *etree.Element, path string) decimal.Decimal {
	v, _ := Decimal(node, path)
	return v
}
