package logger

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapAdapter adapts a *zap.Logger to Logger through its sugared form, so
// key-value pairs are passed through unchanged.
type ZapAdapter struct {
	sugar *zap.SugaredLogger
}

// NewZapAdapter wraps logger, which must not be nil.
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	return &ZapAdapter{sugar: logger.Sugar()}
}

// Debug logs at zap.DebugLevel.
func (a *ZapAdapter) Debug(msg string, args ...any) {
	a.sugar.Debugw(msg, args...)
}

// Info logs at zap.InfoLevel.
func (a *ZapAdapter) Info(msg string, args ...any) {
	a.sugar.Infow(msg, args...)
}

// Warn logs at zap.WarnLevel.
func (a *ZapAdapter) Warn(msg string, args ...any) {
	a.sugar.Warnw(msg, args...)
}

// Error logs at zap.ErrorLevel.
func (a *ZapAdapter) Error(msg string, args ...any) {
	a.sugar.Errorw(msg, args...)
}

// Sync flushes buffered entries.
func (a *ZapAdapter) Sync() error {
	return a.sugar.Sync()
}

// ParseLevel parses a zap level name (debug, info, warn, error).
func ParseLevel(level string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// NewZap builds a console zap logger writing to w at the named level.
func NewZap(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl)), nil
}
