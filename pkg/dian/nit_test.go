package dian_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conciliador-ubl/pkg/dian"
)

func TestComputeNITVerificationDigit(t *testing.T) {
	tests := []struct {
		nit string
		dv  byte
	}{
		{"890903938", '8'},
		{"900.123.456", '8'},
		{"800987654", '4'},
		{"860-002-964", '4'},
		{"811012345", '1'},
	}
	for _, tt := range tests {
		t.Run(tt.nit, func(t *testing.T) {
			dv, err := dian.ComputeNITVerificationDigit(tt.nit)
			require.NoError(t, err)
			assert.Equal(t, tt.dv, dv)
		})
	}
}

func TestComputeNITVerificationDigit_Errores(t *testing.T) {
	_, err := dian.ComputeNITVerificationDigit("sin-digitos")
	assert.Error(t, err)

	_, err = dian.ComputeNITVerificationDigit("1234567890123456")
	assert.Error(t, err, "más de 15 dígitos no es un NIT")
}

func TestValidateNITVerificationDigit(t *testing.T) {
	assert.NoError(t, dian.ValidateNITVerificationDigit("890903938", "8"))
	assert.Error(t, dian.ValidateNITVerificationDigit("890903938", "7"))
	assert.Error(t, dian.ValidateNITVerificationDigit("890903938", ""))
	assert.Error(t, dian.ValidateNITVerificationDigit("890903938", "12"))
}

func TestNormalizeNIT(t *testing.T) {
	assert.Equal(t, "900123456", dian.NormalizeNIT("900.123.456"))
	assert.Equal(t, "9001234568", dian.NormalizeNIT(" 900123456-8 "))
	assert.Equal(t, "", dian.NormalizeNIT("N/A"))
}

func TestIsWithholdingTaxCode(t *testing.T) {
	assert.True(t, dian.IsWithholdingTaxCode(dian.TaxCodeReteRenta))
	assert.True(t, dian.IsWithholdingTaxCode(dian.TaxCodeReteIVA))
	assert.True(t, dian.IsWithholdingTaxCode(dian.TaxCodeReteICA))
	assert.False(t, dian.IsWithholdingTaxCode(dian.TaxCodeIVA))
}
