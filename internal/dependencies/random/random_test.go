package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCryptoRandom_Intn(t *testing.T) {
	r := New()
	for range 100 {
		n := r.Intn(4)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 4)
	}
	assert.Equal(t, 0, r.Intn(0))
}

func TestCryptoRandom_String(t *testing.T) {
	r := New()
	alphabet := "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	s := r.String(4, alphabet)
	assert.Len(t, s, 4)
	for _, c := range s {
		assert.True(t, strings.ContainsRune(alphabet, c), "unexpected rune %q", c)
	}
	assert.Empty(t, r.String(0, alphabet))
	assert.Empty(t, r.String(4, ""))
}
