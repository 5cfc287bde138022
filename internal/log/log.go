package log

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	logger     *zap.SugaredLogger
	loggerOnce sync.Once
	atomicLvl  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// initLogger builds the process-wide console logger writing to stderr.
func initLogger() {
	loggerOnce.Do(func() {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stderr),
			atomicLvl,
		)
		logger = zap.New(core).Sugar()
	})
}

// ParseLevel maps a config string ("debug", "info", "error") to a Level.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(LevelDebug):
		return LevelDebug
	case string(LevelError):
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	initLogger()
	switch l {
	case LevelDebug:
		atomicLvl.SetLevel(zapcore.DebugLevel)
	case LevelError:
		atomicLvl.SetLevel(zapcore.ErrorLevel)
	default:
		atomicLvl.SetLevel(zapcore.InfoLevel)
	}
}

func Debug(msg string, kv ...any) {
	initLogger()
	logger.Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	initLogger()
	logger.Infow(msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	logger.Errorw(msg, extended...)
}

// Sync flushes buffered entries; call before exit.
func Sync() {
	initLogger()
	_ = logger.Sync()
}

// setCore swaps the backing core. Tests use it to observe entries.
func setCore(core zapcore.Core) func() {
	initLogger()
	prev := logger
	logger = zap.New(core).Sugar()
	return func() { logger = prev }
}
