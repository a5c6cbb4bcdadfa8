package logring

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Core is a zapcore.Core that writes formatted entries into a Ring.
// Tee it with the primary core so the same lines reach stdout and the
// status endpoint.
type Core struct {
	zapcore.LevelEnabler
	enc  zapcore.Encoder
	ring *Ring
}

// NewCore builds a ring-backed core with a compact console layout.
func NewCore(ring *Ring, enab zapcore.LevelEnabler) *Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return &Core{
		LevelEnabler: enab,
		enc:          zapcore.NewConsoleEncoder(encCfg),
		ring:         ring,
	}
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := &Core{
		LevelEnabler: c.LevelEnabler,
		enc:          c.enc.Clone(),
		ring:         c.ring,
	}
	for i := range fields {
		fields[i].AddTo(clone.enc)
	}
	return clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	c.ring.Append(strings.TrimRight(buf.String(), "\n"))
	buf.Free()
	return nil
}

func (c *Core) Sync() error { return nil }
