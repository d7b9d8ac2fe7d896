package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodePrefix(t *testing.T) {
	cases := []struct {
		category, name, want string
	}{
		{"Bebidas", "Café Molido Premium", "BEBI-CAFE-MOLI-"},
		{"", "Pan", "GEN-PAN-"},
		{"Lácteos", "", "LACT-PROD-"},
		{"123", "7 Up", "GEN-UP-"},
		{"ñu", "Ñandú azul", "NU-NAND-AZUL-"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CodePrefix(tc.category, tc.name), "%q/%q", tc.category, tc.name)
	}
}

func TestNextCode(t *testing.T) {
	assert.Equal(t, "GEN-PAN-001", NextCode("GEN-PAN-", ""))
	assert.Equal(t, "GEN-PAN-002", NextCode("GEN-PAN-", "GEN-PAN-001"))
	assert.Equal(t, "GEN-PAN-1000", NextCode("GEN-PAN-", "GEN-PAN-999"))
	// Sufijo no numérico: se reinicia la secuencia.
	assert.Equal(t, "GEN-PAN-001", NextCode("GEN-PAN-", "GEN-PAN-X"))
}
