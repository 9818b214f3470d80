package dian

import (
	"fmt"
	"unicode"
)

// pesos para el cálculo del dígito de verificación NIT (Orden Administrativa 4 de 1989, DIAN).
// Se aplican de derecha a izquierda sobre los dígitos del NIT (hasta 15).
var nitWeights = [15]int{3, 7, 13, 17, 19, 23, 29, 37, 41, 43, 47, 53, 59, 67, 71}

// ComputeNITVerificationDigit calcula el dígito de verificación del NIT (sin DV).
// Acepta "900123456", "900.123.456" o "900-123-456".
func ComputeNITVerificationDigit(nit string) (byte, error) {
	digits := extractDigits(nit)
	if len(digits) == 0 {
		return 0, fmt.Errorf("dian: NIT vacío")
	}
	if len(digits) > len(nitWeights) {
		return 0, fmt.Errorf("dian: NIT demasiado largo (%d dígitos)", len(digits))
	}
	var sum int
	for i := 0; i < len(digits); i++ {
		d := digits[len(digits)-1-i]
		sum += int(d-'0') * nitWeights[i]
	}
	remainder := sum % 11
	if remainder == 0 || remainder == 1 {
		return byte('0' + remainder), nil
	}
	return byte('0' + (11 - remainder)), nil
}

// ValidateNITVerificationDigit valida que dv sea el dígito de verificación de nit.
// nit va sin DV (así llega en cbc:CompanyID; el DV viaja en el atributo schemeID).
func ValidateNITVerificationDigit(nit, dv string) error {
	expected, err := ComputeNITVerificationDigit(nit)
	if err != nil {
		return err
	}
	got := extractDigits(dv)
	if len(got) != 1 {
		return fmt.Errorf("dian: dígito de verificación inválido %q", dv)
	}
	if got[0] != expected {
		return fmt.Errorf("dian: dígito de verificación del NIT %s inválido: esperado %c, recibido %c", NormalizeNIT(nit), expected, got[0])
	}
	return nil
}

// NormalizeNIT deja solo los dígitos del NIT ("900.123.456" -> "900123456").
func NormalizeNIT(nit string) string {
	return string(extractDigits(nit))
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			out = append(out, byte(r))
		}
	}
	return out
}
