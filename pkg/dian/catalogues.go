// Package dian contiene catálogos y validaciones alineados al Anexo Técnico
// de Factura Electrónica de Venta DIAN (Colombia) v1.9, vistos desde el receptor.
package dian

import "strings"

// =============================================================================
// Tabla 11 - Tributos (Anexo 1.9 - 13.2.2)
// Los códigos 05, 06 y 07 son retenciones y aparecen en cac:WithholdingTaxTotal.
// =============================================================================

const (
	TaxCodeIVA       = "01" // IVA
	TaxCodeIC        = "02" // Impuesto al consumo departamental
	TaxCodeICA       = "03" // Industria y comercio
	TaxCodeINC       = "04" // Impuesto Nacional al Consumo
	TaxCodeReteIVA   = "05" // Retención sobre el IVA
	TaxCodeReteRenta = "06" // Retención en la fuente (renta)
	TaxCodeReteICA   = "07" // Retención sobre el ICA
	TaxCodeBolsas    = "22" // Impuesto nacional al consumo de bolsa plástica
	TaxCodeOtros     = "ZZ" // Otros tributos
)

// IsWithholdingTaxCode indica si el código corresponde a una retención.
func IsWithholdingTaxCode(code string) bool {
	switch code {
	case TaxCodeReteIVA, TaxCodeReteRenta, TaxCodeReteICA:
		return true
	}
	return false
}

// =============================================================================
// Tabla 14 - Forma de Pago (Anexo 1.9 - 13.3.4.1)
// =============================================================================

const (
	PaymentFormContado = "1" // Contado
	PaymentFormCredito = "2" // Crédito
)

// PaymentDescription "Crédito / Consignación bancaria". Los códigos desconocidos se muestran tal cual.
func PaymentDescription(formCode, meansCode string) string {
	var parts []string
	switch formCode {
	case PaymentFormContado:
		parts = append(parts, "Contado")
	case PaymentFormCredito:
		parts = append(parts, "Crédito")
	case "":
	default:
		parts = append(parts, formCode)
	}
	if meansCode != "" {
		if name, ok := PaymentMethodNames[meansCode]; ok {
			parts = append(parts, name)
		} else {
			parts = append(parts, meansCode)
		}
	}
	return strings.Join(parts, " / ")
}

// =============================================================================
// Tabla 13 - Medios de Pago (Anexo 1.9 - 13.3.4.2) - códigos de uso frecuente
// =============================================================================

const (
	PaymentMethodInstrumentoNoDefinido = "1"   // Instrumento no definido
	PaymentMethodEfectivo              = "10"  // Efectivo
	PaymentMethodCheque                = "20"  // Cheque
	PaymentMethodConsignacion          = "42"  // Consignación bancaria
	PaymentMethodTransferencia         = "47"  // Transferencia Débito Bancaria
	PaymentMethodTarjetaCredito        = "48"  // Tarjeta Crédito
	PaymentMethodTarjetaDebito         = "49"  // Tarjeta Débito
	PaymentMethodAcuerdoMutuo          = "ZZZ" // Acuerdo mutuo
)

// PaymentMethodNames descripción de los medios de pago conocidos.
var PaymentMethodNames = map[string]string{
	PaymentMethodInstrumentoNoDefinido: "Instrumento no definido",
	PaymentMethodEfectivo:              "Efectivo",
	PaymentMethodCheque:                "Cheque",
	PaymentMethodConsignacion:          "Consignación bancaria",
	PaymentMethodTransferencia:         "Transferencia Débito Bancaria",
	PaymentMethodTarjetaCredito:        "Tarjeta Crédito",
	PaymentMethodTarjetaDebito:         "Tarjeta Débito",
	PaymentMethodAcuerdoMutuo:          "Acuerdo mutuo",
}

// =============================================================================
// Tabla 3 - Tipos de identificación (Anexo 1.9 - 13.2.1)
// =============================================================================

const (
	IdentificationTypeNIT = "31" // NIT - requiere dígito de verificación
)

// =============================================================================
// Ambientes (cbc:ProfileExecutionID)
// =============================================================================

const (
	EnvironmentProduccion   = "1"
	EnvironmentHabilitacion = "2"
)
