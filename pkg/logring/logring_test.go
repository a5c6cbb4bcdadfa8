package logring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestRingEvictsOldest(t *testing.T) {
	r := New(3)
	for i := 0; i < 5; i++ {
		r.Append(fmt.Sprintf("line-%d", i))
	}

	require.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"line-2", "line-3", "line-4"}, r.Lines())
}

func TestRingPartialFill(t *testing.T) {
	r := New(10)
	r.Append("a")
	r.Append("b")

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"a", "b"}, r.Lines())
}

func TestRingLinesReturnsCopy(t *testing.T) {
	r := New(4)
	r.Append("original")

	lines := r.Lines()
	lines[0] = "mutated"

	assert.Equal(t, []string{"original"}, r.Lines())
}

func TestCoreTeesIntoRing(t *testing.T) {
	ring := New(16)
	logger := zap.New(NewCore(ring, zapcore.InfoLevel))

	logger.Info("sweep started", zap.String("symbol", "BTC_USDT"))
	logger.Debug("ignored at info level")
	logger.Warn("snapshot unavailable")

	require.Equal(t, 2, ring.Len())
	lines := ring.Lines()
	assert.Contains(t, lines[0], "INFO")
	assert.Contains(t, lines[0], "sweep started")
	assert.Contains(t, lines[0], "BTC_USDT")
	assert.Contains(t, lines[1], "WARN")
	assert.Contains(t, lines[1], "snapshot unavailable")
}

func TestCoreWithFields(t *testing.T) {
	ring := New(8)
	logger := zap.New(NewCore(ring, zapcore.InfoLevel)).With(zap.String("component", "loop"))

	logger.Info("cycle done")

	require.Equal(t, 1, ring.Len())
	assert.Contains(t, ring.Lines()[0], "component")
}
