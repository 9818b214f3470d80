package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	// ErrMalformedDocument el XML no se pudo parsear o no es una factura UBL.
	ErrMalformedDocument = errors.New("documento XML mal formado o sin namespaces UBL")
	// ErrMissingTotal ninguna fuente candidata produjo un total a pagar utilizable.
	ErrMissingTotal = errors.New("no se encontró un total a pagar utilizable")
	// ErrMissingSubtotal la factura no declara LineExtensionAmount ni TaxExclusiveAmount.
	ErrMissingSubtotal = errors.New("no se encontró el subtotal de la factura")
	// ErrIncoherentTotals subtotal, IVA, retenciones y total no cuadran con ninguna fórmula.
	ErrIncoherentTotals = errors.New("totales incoherentes")
	// ErrInvalidPartition identificador de contraparte vacío o inválido para el índice.
	ErrInvalidPartition = errors.New("partición de deduplicación inválida")
	// ErrBlobExists el nombre de archivo ya está ocupado en la partición.
	ErrBlobExists = errors.New("el archivo ya existe")
	// ErrInvalidInput entrada inválida.
	ErrInvalidInput = errors.New("entrada inválida")
)
