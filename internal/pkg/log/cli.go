package log

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewCliLogger new production zapLogger for CLI usage:
// info messages to stdout, warnings and errors to stderr.
func NewCliLogger(stdout io.Writer, stderr io.Writer, verbose bool) Logger {
	cores := []zapcore.Core{
		stdoutCore(stdout, verbose),
		stderrCore(stderr),
	}
	return loggerFromZap(zap.New(zapcore.NewTee(cores...)))
}

// NewNopLogger no operation logger, it drops all messages.
func NewNopLogger() Logger {
	return loggerFromZap(zap.NewNop())
}

func stdoutCore(stdout io.Writer, verbose bool) zapcore.Core {
	minLevel := InfoLevel
	if verbose {
		minLevel = DebugLevel
	}
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoder(verbose)),
		zapcore.AddSync(stdout),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= minLevel && l < WarnLevel
		}),
	)
}

func stderrCore(stderr io.Writer) zapcore.Core {
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoder(true)),
		zapcore.AddSync(stderr),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= WarnLevel
		}),
	)
}

func consoleEncoder(withLevel bool) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: "  ",
	}
	if withLevel {
		cfg.LevelKey = "level"
	}
	return cfg
}
