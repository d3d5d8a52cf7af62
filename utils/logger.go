package utils

import (
	"context"
	"os"
	"runtime"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKey struct{}

// WithLogger attaches logger to ctx. Stages pick it up through GetLogger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger returns the logger carried by ctx, or a no-op logger.
func GetLogger(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && logger != nil {
			return logger
		}
	}
	return zap.NewNop()
}

// Verbosity levels accepted by NewLogger, matching the -v / -vv flags.
const (
	VerbosityInfo  = 0
	VerbosityDebug = 1
	VerbosityTrace = 2
)

// NewLogger builds the console logger used by the command line. When
// logFile is non-empty the same entries are also appended to that file.
func NewLogger(verbosity int, logFile string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbosity >= VerbosityDebug {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	if verbosity < VerbosityTrace {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if logFile != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
	}
	return cfg.Build()
}

func GetPanicInfo() string {
	buf := make([]byte, 16384)
	l := runtime.Stack(buf, false)
	return string(buf[:l])
}

// SyncLogger flushes buffered entries, ignoring the EINVAL that stderr
// returns on some platforms.
func SyncLogger(logger *zap.Logger) {
	if err := logger.Sync(); err != nil && !isStdStreamSyncError(err) {
		_, _ = os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
	}
}
