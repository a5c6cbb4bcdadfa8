package breaker

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerPassesThroughSuccess(t *testing.T) {
	b := New("test")

	out, err := b.Do(func() (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New("test")
	boom := errors.New("boom")

	for i := 0; i < consecutiveFailures; i++ {
		_, err := b.Do(func() (string, error) {
			return "", boom
		})
		require.Error(t, err)
	}

	assert.Equal(t, "open", b.State())

	// open breaker short-circuits without invoking fn
	called := false
	_, err := b.Do(func() (string, error) {
		called = true
		return "ok", nil
	})
	require.Error(t, err)
	assert.False(t, called)
}
