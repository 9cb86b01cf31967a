package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDocument(t *testing.T) {
	assert.Equal(t, "52998224725", NormalizeDocument("529.982.247-25"))
	assert.Equal(t, "11222333000181", NormalizeDocument("11.222.333/0001-81"))
	assert.Equal(t, "12345", NormalizeDocument(" 12a34b5 "))
	assert.Equal(t, "", NormalizeDocument("abc"))
}

func TestClassifyDocumentCPF(t *testing.T) {
	kind, ok := ClassifyDocument("52998224725")
	assert.True(t, ok)
	assert.Equal(t, DocumentTypeCPF, kind)

	// Flipped check digit.
	_, ok = ClassifyDocument("52998224726")
	assert.False(t, ok)

	// Repeated digits pass the arithmetic but are not real documents.
	_, ok = ClassifyDocument("11111111111")
	assert.False(t, ok)
	_, ok = ClassifyDocument("00000000000")
	assert.False(t, ok)
}

func TestClassifyDocumentCNPJ(t *testing.T) {
	kind, ok := ClassifyDocument("11222333000181")
	assert.True(t, ok)
	assert.Equal(t, DocumentTypeCNPJ, kind)

	_, ok = ClassifyDocument("11222333000182")
	assert.False(t, ok)

	_, ok = ClassifyDocument("11111111111111")
	assert.False(t, ok)
}

func TestClassifyDocumentLength(t *testing.T) {
	for _, digits := range []string{"", "123", "123456789012", "123456789012345"} {
		_, ok := ClassifyDocument(digits)
		assert.False(t, ok, digits)
	}
}
