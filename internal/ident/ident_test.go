package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_NFC(t *testing.T) {
	// "é" as combining sequence (e + U+0301) normalizes to the
	// precomposed form (U+00E9).
	decomposed := "é"
	precomposed := "é"

	assert.Equal(t, precomposed, Normalize(decomposed))
	assert.Equal(t, precomposed, Normalize(precomposed))
}

func TestNormalize_ASCIIUnchanged(t *testing.T) {
	assert.Equal(t, "user-42", Normalize("user-42"))
}

func TestValidate_Accepts(t *testing.T) {
	for _, id := range []string{
		"u1",
		"550e8400-e29b-41d4-a716-446655440000",
		"пользователь",
		"name with spaces",
	} {
		assert.NoError(t, Validate(id), "id %q", id)
	}
}

func TestValidate_RejectsEmpty(t *testing.T) {
	assert.Error(t, Validate(""))
}

func TestValidate_RejectsControlCharacters(t *testing.T) {
	assert.Error(t, Validate("a\x00b"))
	assert.Error(t, Validate("a\nb"))
}

func TestValidate_RejectsOversized(t *testing.T) {
	long := make([]byte, MaxLen+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, Validate(string(long)))
}

func TestValidate_RejectsInvalidUTF8(t *testing.T) {
	assert.Error(t, Validate(string([]byte{0xff, 0xfe})))
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	gen := UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()

	require.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestFixedGenerator_ReturnsInOrder(t *testing.T) {
	gen := NewFixedGenerator("id-1", "id-2")

	assert.Equal(t, "id-1", gen.Generate())
	assert.Equal(t, "id-2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
