package dian

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/jhoicas/conciliador-ubl/internal/domain"
)

// Document factura UBL lista para los extractores.
type Document struct {
	// Root elemento Invoice.
	Root *etree.Element
	// Raw bytes del Invoice (el interno cuando vino dentro de un AttachedDocument).
	Raw []byte
	// Envelope el archivo recibido era un AttachedDocument.
	Envelope bool
}

// ParseDocument parsea bytes XML y devuelve el Invoice. Acepta la factura directa o el
// AttachedDocument que envía la DIAN, con la factura en
// cac:Attachment/cac:ExternalReference/cbc:Description. Cualquier otra raíz, o XML que no
// parsea, devuelve domain.ErrMalformedDocument.
func ParseDocument(data []byte) (*Document, error) {
	root, err := parseRoot(data)
	if err != nil {
		return nil, err
	}

	switch {
	case isElement(root, NsInvoice, "Invoice"):
		return &Document{Root: root, Raw: data}, nil

	case isElement(root, NsAttachedDocument, "AttachedDocument"):
		inner, ok := Text(root, "cac:Attachment/cac:ExternalReference/cbc:Description")
		if !ok || inner == "" {
			return nil, fmt.Errorf("%w: AttachedDocument sin factura embebida", domain.ErrMalformedDocument)
		}
		raw := []byte(inner)
		invoice, err := parseRoot(raw)
		if err != nil {
			return nil, err
		}
		if !isElement(invoice, NsInvoice, "Invoice") {
			return nil, fmt.Errorf("%w: AttachedDocument contiene %s, se esperaba Invoice",
				domain.ErrMalformedDocument, invoice.FullTag())
		}
		return &Document{Root: invoice, Raw: raw, Envelope: true}, nil
	}

	return nil, fmt.Errorf("%w: raíz %s (%s) no es una factura UBL",
		domain.ErrMalformedDocument, root.FullTag(), root.NamespaceURI())
}

func parseRoot(data []byte) (*etree.Element, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: documento vacío", domain.ErrMalformedDocument)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: documento sin raíz", domain.ErrMalformedDocument)
	}
	return root, nil
}

func isElement(e *etree.Element, ns, local string) bool {
	return e.Tag == local && e.NamespaceURI() == ns
}
