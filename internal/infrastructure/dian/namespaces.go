// Package dian lee facturas electrónicas UBL 2.1 DIAN (Colombia) recibidas de proveedores
// y extrae su contenido monetario, ítems, notas y adjuntos.
package dian

// Namespaces oficiales UBL 2.1 y DIAN (Anexo Técnico 1.9).
const (
	// Documento Invoice
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	// Contenedor AttachedDocument con el que la DIAN entrega la factura al receptor
	NsAttachedDocument = "urn:oasis:names:specification:ubl:schema:xsd:AttachedDocument-2"
	// Common Aggregate Components
	NsCac = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	// Common Basic Components
	NsCbc = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	// Extension Components
	NsExt = "urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2"
	// DIAN Extensions
	NsSts = "dian:gov:co:facturaelectronica:v1"
	// XML Digital Signature
	NsDs = "http://www.w3.org/2000/09/xmldsig#"
)

// prefixes tabla fija prefijo -> URI usada por las rutas del accessor. El prefijo que use
// el documento es irrelevante: se compara contra el URI resuelto del elemento.
var prefixes = map[string]string{
	"inv": NsInvoice,
	"ad":  NsAttachedDocument,
	"cac": NsCac,
	"cbc": NsCbc,
	"ext": NsExt,
	"sts": NsSts,
	"ds":  NsDs,
}
