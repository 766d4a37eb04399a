// Package logger wraps zap for structured logging.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger
	once sync.Once

	logFile = "zonegen.log" // Default log file
	level   = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// InitLogger initializes the Zap logger, writing JSON to the log file
// and human-readable output to the console.
func InitLogger() {
	once.Do(func() {
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		file, _ := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		fileCore := zapcore.NewCore(fileEncoder, zapcore.AddSync(file), level)

		consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level)

		core := zapcore.NewTee(consoleCore, fileCore)
		log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	})
}

// SetVerbose lowers the log level to debug. Must be called before the
// first GetLogger to affect all output.
func SetVerbose() {
	level.SetLevel(zap.DebugLevel)
}

// SetLogPath overrides the log file destination. Must be called before
// the logger is initialized.
func SetLogPath(path string) {
	logFile = path
}

// ResetLogger clears the initialized logger so it can be reinitialized
// with a different destination. Used by tests.
func ResetLogger() {
	log = nil
	once = sync.Once{}
}

// GetLogger provides access to the initialized logger.
func GetLogger() *zap.Logger {
	if log == nil {
		InitLogger()
	}
	return log
}

// Sync ensures buffered logs are written before the application exits.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
