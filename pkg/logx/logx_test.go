package logx

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromFlags(t *testing.T) {
	tests := []struct {
		vv, v, q bool
		want     slog.Level
	}{
		{true, false, false, slog.LevelDebug},
		{false, true, true, slog.LevelInfo},
		{false, false, true, slog.LevelError},
		{false, false, false, slog.LevelWarn},
		{true, false, true, slog.LevelDebug},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFromFlags(tt.vv, tt.v, tt.q), "vv=%v v=%v q=%v", tt.vv, tt.v, tt.q)
	}
}

func TestHandlerFiltersByUserLevel(t *testing.T) {
	saved := UserLevel
	defer func() { UserLevel = saved }()

	var buf bytes.Buffer
	UserLevel = slog.LevelInfo
	logger := slog.New(NewHandler(&buf))
	logger.Debug("hidden")
	logger.Info("shown", "file", "main.ql")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, `msg=shown file=main.ql`)
	assert.NotContains(t, out, "time=")
}

func TestSetDefault(t *testing.T) {
	saved, savedLogger := UserLevel, slog.Default()
	defer func() {
		UserLevel = saved
		slog.SetDefault(savedLogger)
	}()

	var buf bytes.Buffer
	UserLevel = slog.LevelError
	SetDefault(&buf)
	slog.Warn("quiet")
	slog.Error("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}
