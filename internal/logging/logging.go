// SPDX-License-Identifier: MIT
// Package logging builds the zap loggers used by syncer.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a supported log level name.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format is a supported log encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

var levels = map[Level]zapcore.Level{
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
}

var encodings = map[Format]string{
	FormatConsole: "console",
	FormatJSON:    "json",
}

// LevelFor maps -v/-q flag counts to a level. Quiet wins over verbose.
func LevelFor(verbose int, quiet bool) Level {
	switch {
	case quiet:
		return LevelError
	case verbose >= 2:
		return LevelDebug
	case verbose == 1:
		return LevelInfo
	default:
		return LevelWarn
	}
}

// New builds a logger writing to w, or to stderr when w is nil. Console
// output uses capitalized levels and ISO timestamps; JSON output uses the
// production encoder.
func New(level Level, format Format, w io.Writer) (*zap.Logger, error) {
	zapLevel, encoding, err := resolve(level, format)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	var enc zapcore.Encoder
	if encoding == encodings[FormatConsole] {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(zapLevel))
	return zap.New(core), nil
}

func resolve(level Level, format Format) (zapcore.Level, string, error) {
	zapLevel, ok := levels[Level(strings.ToLower(string(level)))]
	if !ok {
		return 0, "", fmt.Errorf("unsupported log level: %s", level)
	}
	encoding, ok := encodings[Format(strings.ToLower(string(format)))]
	if !ok {
		return 0, "", fmt.Errorf("unsupported log format: %s", format)
	}
	return zapLevel, encoding, nil
}
