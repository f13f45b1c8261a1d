// Package logging builds the process logger: a console core on stderr plus an
// optional rotating file core.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"staredown/internal/config"
)

const timeFormat = "2006-01-02 15:04:05.000"

// Logger owns a zap logger and the files behind it.
type Logger struct {
	*zap.Logger
	level   zap.AtomicLevel
	closers []io.Closer
}

// New builds a logger from cfg. Console output always goes to stderr; file
// output is added when a directory is configured.
func New(cfg config.LogConfig) (*Logger, error) {
	return build(cfg, zapcore.Lock(os.Stderr))
}

func build(cfg config.LogConfig, console zapcore.WriteSyncer) (*Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level: %s", cfg.Level)
		}
	}

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(cfg.JSON, false), console, level),
	}
	var closers []io.Closer
	if cfg.Directory != "" {
		writer := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Directory, fileName(cfg)),
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(newEncoder(cfg.JSON, true), zapcore.AddSync(writer), level))
		closers = append(closers, writer)
	}

	log := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zap.PanicLevel),
		zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewSamplerWithOptions(core, time.Second, 2000, 10)
		}),
	)
	return &Logger{Logger: log, level: level, closers: closers}, nil
}

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level string) error {
	return l.level.UnmarshalText([]byte(level))
}

// Close flushes buffered entries and closes log files.
func (l *Logger) Close() error {
	_ = l.Logger.Sync()
	for _, c := range l.closers {
		_ = c.Close()
	}
	return nil
}

func fileName(cfg config.LogConfig) string {
	if cfg.Filename != "" {
		return cfg.Filename
	}
	return "staredown.log"
}

func newEncoder(json, file bool) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(timeFormat)
	ec.EncodeCaller = zapcore.ShortCallerEncoder
	ec.ConsoleSeparator = " "
	if json {
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	if file {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}
