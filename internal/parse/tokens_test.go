package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	t.Run("splits on whitespace", func(t *testing.T) {
		tokens, err := Tokenize("ls -l /tmp ; echo done")
		require.NoError(t, err)
		assert.Equal(t, []string{"ls", "-l", "/tmp", ";", "echo", "done"}, tokens)
	})

	t.Run("empty line yields no tokens", func(t *testing.T) {
		tokens, err := Tokenize("   ")
		require.NoError(t, err)
		assert.Empty(t, tokens)
	})

	t.Run("quoting keeps whitespace in one token", func(t *testing.T) {
		tokens, err := Tokenize(`echo "hello world"`)
		require.NoError(t, err)
		assert.Equal(t, []string{"echo", "hello world"}, tokens)
	})

	t.Run("unterminated quote is an error", func(t *testing.T) {
		_, err := Tokenize(`echo "oops`)
		assert.Error(t, err)
	})
}
