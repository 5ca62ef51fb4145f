package utilities

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger  *zap.SugaredLogger
	logOnce sync.Once
)

// InitLogger wires a zap sugared logger writing to stdout and a rotating
// file under logDir. Safe to call more than once; only the first call wins.
func InitLogger(logDir string) {
	logOnce.Do(func() {
		if logDir == "" {
			logDir = "logs"
		}
		if err := os.MkdirAll(logDir, 0755); err != nil {
			panic("failed to create log directory: " + err.Error())
		}

		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(logDir, "gcsepal.log"),
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})

		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

		core := zapcore.NewTee(
			zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
			zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), fileSink, zapcore.DebugLevel),
		)

		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	})
}

func ensureLogger() *zap.SugaredLogger {
	if logger == nil {
		InitLogger("")
	}
	return logger
}

// SyncLogger flushes buffered log entries. Call on shutdown.
func SyncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}

func Debug(format string, v ...interface{}) {
	ensureLogger().Debugf(format, v...)
}

func Info(format string, v ...interface{}) {
	ensureLogger().Infof(format, v...)
}

func Warn(format string, v ...interface{}) {
	ensureLogger().Warnf(format, v...)
}

func Error(format string, v ...interface{}) {
	ensureLogger().Errorf(format, v...)
}
