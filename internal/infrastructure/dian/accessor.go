package dian

import (
	"regexp"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

// Rutas del accessor: pasos "prefijo:Local" separados por "/", relativos al nodo recibido.
//
//	cac:LegalMonetaryTotal/cbc:PayableAmount   hijos directos
//	//*:TotalAPagar                            descendientes a cualquier profundidad, cualquier namespace
//	ext:UBLExtensions//*:Total                 "//" también vale entre pasos
//
// Una ruta con prefijo desconocido no encuentra nada.

type step struct {
	ns    string // URI resuelto; "*" = cualquiera
	local string
	deep  bool // buscar en descendientes, no solo hijos
}

type xpath struct {
	steps []step
	valid bool
}

var pathCache sync.Map // string -> xpath

func compilePath(expr string) xpath {
	if p, ok := pathCache.Load(expr); ok {
		return p.(xpath)
	}
	p := parsePath(expr)
	pathCache.Store(expr, p)
	return p
}

func parsePath(expr string) xpath {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return xpath{}
	}
	var steps []step
	deep := false
	for _, seg := range strings.Split(expr, "/") {
		if seg == "" {
			// "//" produce un segmento vacío: el siguiente paso es profundo
			deep = true
			continue
		}
		prefix, local, ok := strings.Cut(seg, ":")
		if !ok || local == "" {
			return xpath{}
		}
		ns := "*"
		if prefix != "*" {
			uri, known := prefixes[prefix]
			if !known {
				return xpath{}
			}
			ns = uri
		}
		steps = append(steps, step{ns: ns, local: local, deep: deep})
		deep = false
	}
	if len(steps) == 0 {
		return xpath{}
	}
	return xpath{steps: steps, valid: true}
}

func (s step) matches(e *etree.Element) bool {
	if e.Tag != s.local {
		return false
	}
	return s.ns == "*" || e.NamespaceURI() == s.ns
}

func (s step) collect(from *etree.Element, out []*etree.Element) []*etree.Element {
	for _, child := range from.ChildElements() {
		if s.matches(child) {
			out = append(out, child)
		}
		if s.deep {
			out = s.collect(child, out)
		}
	}
	return out
}

// Nodes devuelve todos los elementos que coinciden con la ruta, en orden de documento.
func Nodes(node *etree.Element, expr string) []*etree.Element {
	if node == nil {
		return nil
	}
	p := compilePath(expr)
	if !p.valid {
		return nil
	}
	current := []*etree.Element{node}
	for _, s := range p.steps {
		var next []*etree.Element
		for _, e := range current {
			next = s.collect(e, next)
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// Node primer elemento que coincide con la ruta, o nil.
func Node(node *etree.Element, expr string) *etree.Element {
	if nodes := Nodes(node, expr); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// Text texto (sin espacios al borde) del primer elemento que coincide. false si no existe.
func Text(node *etree.Element, expr string) (string, bool) {
	e := Node(node, expr)
	if e == nil {
		return "", false
	}
	return strings.TrimSpace(e.Text()), true
}

// Attr valor del atributo del primer elemento que coincide. false si no existe.
func Attr(node *etree.Element, expr, attr string) (string, bool) {
	e := Node(node, expr)
	if e == nil {
		return "", false
	}
	a := e.SelectAttr(attr)
	if a == nil {
		return "", false
	}
	return strings.TrimSpace(a.Value), true
}

// Decimal valor numérico del primer elemento que coincide. false si no existe o no es un número válido.
func Decimal(node *etree.Element, expr string) (decimal.Decimal, bool) {
	s, ok := Text(node, expr)
	if !ok {
		return decimal.Zero, false
	}
	return ParseAmount(s)
}

var amountPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ParseAmount convierte texto a decimal. Solo admite signo opcional, dígitos y un punto decimal:
// separadores de miles, símbolos de moneda, exponentes o texto vacío devuelven false.
// Un punto final sin decimales ("1.") es válido.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
