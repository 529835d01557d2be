package claude

import (
	"io"
	"testing"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ask/internal/domain"
)

const keyEnv = "TEST_ANTHROPIC_API_KEY"

func TestNewClientMissingCredential(t *testing.T) {
	t.Setenv(keyEnv, "")
	_, err := NewClient(Config{APIKeyEnv: keyEnv}, &log.Logger{Writer: &log.IOWriter{Writer: io.Discard}})
	require.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Contains(t, err.Error(), keyEnv)
}

func TestNewClientDefaults(t *testing.T) {
	t.Setenv(keyEnv, "sk-ant-test")
	c, err := NewClient(Config{APIKeyEnv: keyEnv}, &log.Logger{Writer: &log.IOWriter{Writer: io.Discard}})
	require.NoError(t, err)
	assert.Equal(t, "claude", c.Name())
	assert.Equal(t, "claude-sonnet-4-20250514", c.model)
	assert.Equal(t, 4000, c.maxTokens)
}
