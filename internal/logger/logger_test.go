package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", 7, "jwt_secret", "abc", "Authorization", "Bearer x", "dangling"})
	require.Len(t, out, 7)
	assert.Equal(t, 7, out[1])
	assert.Equal(t, "[REDACTED]", out[3])
	assert.Equal(t, "[REDACTED]", out[5])
	assert.Equal(t, "dangling", out[6])
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "test", "production"} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		l.Info("hello", "mode", mode)
	}
	Nop().Error("discarded")
}
