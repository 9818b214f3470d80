// Package dian: verificación del CUFE (Código Único de Factura Electrónica) según Anexo Técnico DIAN 1.9.
// Algoritmo: SHA-384 sobre la cadena de concatenación en el orden estricto definido por la DIAN.

package dian

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// CUFELength longitud en caracteres hexadecimales de un CUFE (SHA-384).
const CUFELength = 96

var (
	whitespace = regexp.MustCompile(`\s+`)
	cufeFormat = regexp.MustCompile(`^[0-9a-fA-F]{96}$`)
)

// CufeParams contiene los datos leídos del XML para recalcular el CUFE (orden estricto DIAN).
type CufeParams struct {
	NumFac         string          // cbc:ID (prefijo + número, sin espacios)
	FecFac         string          // cbc:IssueDate YYYY-MM-DD
	HorFac         string          // cbc:IssueTime HH:MM:SS-05:00 (opcional)
	ValFac         decimal.Decimal // cbc:LineExtensionAmount
	ValImp1        decimal.Decimal // total impuesto 01 (IVA)
	ValImp2        decimal.Decimal // total impuesto 04 (INC)
	ValImp3        decimal.Decimal // total impuesto 03 (ICA)
	ValTot         decimal.Decimal // cbc:PayableAmount
	NitOferente    string          // NIT emisor, solo dígitos
	DocAdquiriente string          // Documento adquiriente, solo dígitos
	ClaveTecnica   string          // Clave técnica de la resolución del emisor
	TipoAmbiente   string          // "1" = producción, "2" = habilitación
}

// CufeCalculatorService recalcula el CUFE según el Anexo Técnico DIAN.
type CufeCalculatorService struct{}

// NewCufeCalculatorService crea el servicio.
func NewCufeCalculatorService() *CufeCalculatorService {
	return &CufeCalculatorService{}
}

// Calculate genera el CUFE a partir de parámetros ya preparados.
// Orden: NumFac + FecFac + HorFac + ValFac + 01 + ValImp1 + 04 + ValImp2 + 03 + ValImp3 + ValTot + NitOfe + DocAdq + ClTec + TipoAmb.
// Hash: SHA-384, salida en hexadecimal (minúsculas).
func (s *CufeCalculatorService) Calculate(p *CufeParams) (string, error) {
	if p == nil {
		return "", fmt.Errorf("dian: CufeParams es obligatorio")
	}

	numFac := whitespace.ReplaceAllString(strings.TrimSpace(p.NumFac), "")
	if numFac == "" {
		return "", fmt.Errorf("dian: NumFac es obligatorio")
	}
	if p.FecFac == "" {
		return "", fmt.Errorf("dian: FecFac es obligatorio")
	}
	nitOfe := NormalizeNIT(p.NitOferente)
	docAdq := NormalizeNIT(p.DocAdquiriente)
	if nitOfe == "" {
		return "", fmt.Errorf("dian: NitOferente es obligatorio para el CUFE")
	}
	if docAdq == "" {
		return "", fmt.Errorf("dian: DocAdquiriente es obligatorio para el CUFE")
	}
	if p.ClaveTecnica == "" {
		return "", fmt.Errorf("dian: ClaveTecnica es obligatoria para el CUFE")
	}
	tipoAmb := p.TipoAmbiente
	if tipoAmb == "" {
		tipoAmb = EnvironmentProduccion
	}

	cadena := numFac +
		p.FecFac +
		strings.TrimSpace(p.HorFac) +
		formatDecimalForCufe(p.ValFac) +
		TaxCodeIVA + formatDecimalForCufe(p.ValImp1) +
		TaxCodeINC + formatDecimalForCufe(p.ValImp2) +
		TaxCodeICA + formatDecimalForCufe(p.ValImp3) +
		formatDecimalForCufe(p.ValTot) +
		nitOfe +
		docAdq +
		p.ClaveTecnica +
		tipoAmb

	hash := sha512.Sum384([]byte(cadena))
	return hex.EncodeToString(hash[:]), nil
}

// Verify recalcula el CUFE y lo compara (sin distinguir mayúsculas) con el declarado.
func (s *CufeCalculatorService) Verify(p *CufeParams, declared string) (bool, error) {
	cufe, err := s.Calculate(p)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(cufe, strings.TrimSpace(declared)), nil
}

// IsWellFormedCUFE indica si s tiene forma de CUFE (96 caracteres hexadecimales).
func IsWellFormedCUFE(s string) bool {
	return cufeFormat.MatchString(strings.TrimSpace(s))
}

// formatDecimalForCufe formatea el valor para la cadena CUFE: sin separador de miles, punto decimal, 2 decimales.
func formatDecimalForCufe(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
