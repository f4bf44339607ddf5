package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures a ZapLogger.
type Options struct {
	Level string // debug|info|warn|error
	Env   string // dev|prod
	File  string // rotated log file; stderr when empty
}

// ZapLogger implements Logger on top of a sugared zap logger.
type ZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// NewZapLogger builds a zap logger. Unknown levels fall back to info.
func NewZapLogger(opts Options) *ZapLogger {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	var encCfg zapcore.EncoderConfig
	var enc zapcore.Encoder
	if strings.ToLower(opts.Env) == "prod" {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "ts"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.TimeKey = "ts"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	var sink zapcore.WriteSyncer
	if opts.File != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	} else {
		sink = zapcore.Lock(os.Stderr)
	}

	base := zap.New(zapcore.NewCore(enc, sink, lvl), zap.AddStacktrace(zap.DPanicLevel))
	return &ZapLogger{
		base:  base,
		sugar: base.Sugar(),
		level: lvl,
	}
}

func (l *ZapLogger) Info(msg string, args ...any) {
	l.sugar.Infof(msg, args...)
}

func (l *ZapLogger) Warn(msg string, args ...any) {
	l.sugar.Warnf(msg, args...)
}

func (l *ZapLogger) Error(msg string, args ...any) {
	l.sugar.Errorf(msg, args...)
}

func (l *ZapLogger) Debug(msg string, args ...any) {
	l.sugar.Debugf(msg, args...)
}

// Enabled reports whether messages at the given level are written.
func (l *ZapLogger) Enabled(level zapcore.Level) bool {
	return l.level.Enabled(level)
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func (l *ZapLogger) Sync() {
	_ = l.base.Sync()
}
