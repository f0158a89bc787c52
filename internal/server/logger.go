// Package server wires zap-based structured logging with file rotation for
// the gridchat service.
package server

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide SugaredLogger. It is safe to use from any
// goroutine. Before InitLogger runs it writes to stderr only, so tests and
// early startup never see a nil logger.
var Log *zap.SugaredLogger

func init() {
	Log = zap.New(consoleCore()).Sugar()
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
}

func consoleCore() zapcore.Core {
	encoder := zapcore.NewConsoleEncoder(encoderConfig())
	return zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), zapcore.InfoLevel)
}

// InitLogger replaces the default stderr logger with a tee of stderr and a
// rotating log file at filePath.
func InitLogger(filePath string) error {
	lj := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   false,
	}

	fileCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(lj),
		zapcore.DebugLevel,
	)
	core := zapcore.NewTee(consoleCore(), fileCore)
	Log = zap.New(core, zap.AddCaller()).Sugar()
	return nil
}

// SyncLogger flushes any buffered log entries. Call it on shutdown.
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}
