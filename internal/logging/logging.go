package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the diagnostic logger. Output is a console encoding without
// timestamps; verbose enables debug events, otherwise only warnings and
// errors are written. Errors carry the caller.
func New(w io.Writer, verbose bool) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder

	noCaller := enc
	noCaller.CallerKey = ""

	threshold := zapcore.WarnLevel
	if verbose {
		threshold = zapcore.DebugLevel
	}

	ws := zapcore.Lock(zapcore.AddSync(w))

	// Below ERROR: no caller
	plain := zapcore.NewCore(
		zapcore.NewConsoleEncoder(noCaller), ws,
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool { return lvl >= threshold && lvl < zapcore.ErrorLevel }),
	)
	// ERROR and above: with caller
	withCaller := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc), ws,
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool { return lvl >= zapcore.ErrorLevel }),
	)

	return zap.New(zapcore.NewTee(plain, withCaller), zap.AddCaller())
}
