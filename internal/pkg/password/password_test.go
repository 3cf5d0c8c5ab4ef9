package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		pw, err := Generate(0)
		require.NoError(t, err)
		assert.Len(t, pw, MinLength)
		for _, set := range classes {
			assert.True(t, strings.ContainsAny(pw, set), "%q lacks one of %q", pw, set)
		}
		assert.NotContains(t, pw, "0")
		assert.NotContains(t, pw, "l")
		seen[pw] = true
	}
	assert.Len(t, seen, 50)

	pw, err := Generate(20)
	require.NoError(t, err)
	assert.Len(t, pw, 20)
}
