package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel is the textual severity accepted through the LOG_LEVEL environment variable.
type LogLevel string

const (
	// LogDebug enables rearrangement and reallocation traces.
	LogDebug LogLevel = "debug"

	// LogInfo is the default level.
	LogInfo LogLevel = "info"

	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// EnvLogLevel is the environment variable read by New.
const EnvLogLevel = "LOG_LEVEL"

func (l LogLevel) zapLevel() (zapcore.Level, error) {
	switch LogLevel(strings.ToLower(string(l))) {
	case LogDebug:
		return zap.DebugLevel, nil
	case LogInfo, "":
		return zap.InfoLevel, nil
	case LogWarn:
		return zap.WarnLevel, nil
	case LogError:
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf("unknown log level %q", string(l))
	}
}

// New builds a production zap logger whose level is taken from LOG_LEVEL.
func New() (*zap.Logger, error) {
	level, err := LogLevel(os.Getenv(EnvLogLevel)).zapLevel()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", EnvLogLevel, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// NewConsole builds a human-readable debug logger writing to w.
func NewConsole(w io.Writer) *zap.Logger {
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.DebugLevel,
	)
	return zap.New(consoleCore)
}

// NewTest is the console logger used by tests.
func NewTest() *zap.Logger {
	return NewConsole(os.Stdout)
}
