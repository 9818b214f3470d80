// Package dian contiene validaciones de dominio sobre facturas DIAN (Colombia) recibidas,
// según Anexo Técnico 1.9. Utiliza catálogos y reglas de pkg/dian.
package dian

import (
	"errors"
	"fmt"

	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
	"github.com/jhoicas/conciliador-ubl/pkg/dian"
)

// ErrInvalidIdentification agrupa errores de identificación de las partes.
var ErrInvalidIdentification = errors.New("identificación de las partes inválida")

// ValidateParties revisa el dígito de verificación del emisor y del adquiriente cuando vienen
// como NIT (schemeName 31) o traen DV en schemeID. No es fatal: el llamador lo reporta como aviso.
func ValidateParties(supplier, customer entity.Party) error {
	var errs []error

	if supplier.ID == "" {
		errs = append(errs, errors.New("emisor sin NIT"))
	} else if err := validateParty(supplier); err != nil {
		errs = append(errs, fmt.Errorf("emisor: %w", err))
	}
	if customer.ID != "" {
		if err := validateParty(customer); err != nil {
			errs = append(errs, fmt.Errorf("adquiriente: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidIdentification}, errs...)...)
	}
	return nil
}

func validateParty(p entity.Party) error {
	// Sin DV no hay nada que verificar; cédulas y documentos extranjeros no lo llevan.
	if p.VerificationDigit == "" {
		if p.SchemeName == dian.IdentificationTypeNIT {
			return fmt.Errorf("NIT %s sin dígito de verificación", p.ID)
		}
		return nil
	}
	return dian.ValidateNITVerificationDigit(p.ID, p.VerificationDigit)
}
