package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomToken(t *testing.T) {
	a, err := RandomToken("rd_", 24)
	require.NoError(t, err)
	b, err := RandomToken("rd_", 24)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "rd_"))
	assert.Len(t, a, 27)
	assert.NotEqual(t, a, b)
	for _, c := range strings.TrimPrefix(a, "rd_") {
		assert.Contains(t, base62Chars, string(c))
	}
}
