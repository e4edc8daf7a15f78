// Package logging builds the zap logger used for diagnostics on stderr.
// Standard output is reserved for the generated variables.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a debug-level console logger writing to w when debug is set,
// and a no-op logger otherwise.
func New(debug bool, w io.Writer) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}
