// Package observability is the ambient logging/tracing stack of spec component J: a zap-based structured logger
// with an optional lumberjack rotating file sink, and an opentracing span provider with an optional Zipkin bridge.
// The logger is adapted from _examples/KurtSkinny-telegram-userbot/internal/infra/logger/logger.go (zap.AtomicLevel
// for live level changes, a thin Debug/Info/Warn/Error surface), with a JSON encoder in place of that file's console
// encoder, and generalized from a process-global singleton into a per-agent instance, since this module runs many
// agents per process rather than one bot per process.
package observability

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig configures a Logger's level and rotation.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error" (case-insensitive); defaults to "info".
	Level string

	// RotateFile, if non-empty, directs output through a lumberjack.Logger at this path instead of stdout.
	RotateFile string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Logger wraps a *zap.Logger with a dynamically adjustable level, one per agent (each carrying its own agent_id
// field so log lines from concurrent agents are distinguishable without log-scraping heuristics).
type Logger struct {
	core    *zap.Logger
	level   zap.AtomicLevel
	rotator *lumberjack.Logger
}

// New constructs a Logger for agentID per cfg.
func New(agentID string, cfg LogConfig) *Logger {
	l := &Logger{level: zap.NewAtomicLevelAt(parseLevel(cfg.Level))}

	var writer zapcore.WriteSyncer
	if cfg.RotateFile != "" {
		l.rotator = &lumberjack.Logger{
			Filename:   cfg.RotateFile,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		writer = zapcore.AddSync(l.rotator)
	} else {
		writer = zapcore.Lock(zapcore.AddSync(os.Stdout))
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), writer, l.level)
	l.core = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).With(zap.String("agent_id", agentID))
	return l
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// SetLevel changes the logger's level live, without rebuilding its core.
func (l *Logger) SetLevel(level string) { l.level.SetLevel(parseLevel(level)) }

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.core.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.core.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.core.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.core.Error(msg, fields...) }

// Sync flushes any buffered log entries; call before process exit.
func (l *Logger) Sync() error { return l.core.Sync() }

// event field helpers for the spec's required structured events.

func FieldNode(id string) zap.Field       { return zap.String("node_id", id) }
func FieldReason(reason string) zap.Field { return zap.String("reason", reason) }
func FieldDurationMS(ms int64) zap.Field  { return zap.Int64("duration_ms", ms) }

// Debugf/Infof/Warnf/Errorf format via fmt.Sprintf; prefer the structured variants above on hot paths.
func (l *Logger) Debugf(format string, args ...any) { l.core.Debug(fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.core.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.core.Warn(fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.core.Error(fmt.Sprintf(format, args...)) }
