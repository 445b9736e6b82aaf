package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pixil98/go-errors"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how much the server logs. An empty File logs
// to stderr.
type Config struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.Level != "" {
		if _, err := zapcore.ParseLevel(c.Level); err != nil {
			el.Add(fmt.Errorf("parsing level: %w", err))
		}
	}
	if c.MaxSizeMB < 0 {
		el.Add(fmt.Errorf("max_size_mb must not be negative"))
	}
	if c.MaxBackups < 0 {
		el.Add(fmt.Errorf("max_backups must not be negative"))
	}
	if c.MaxAgeDays < 0 {
		el.Add(fmt.Errorf("max_age_days must not be negative"))
	}

	return el.Err()
}

func (c *Config) level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func (c *Config) writer() zapcore.WriteSyncer {
	if c.File == "" {
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   c.File,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAgeDays,
		Compress:   true,
	})
}

// NewLogger builds a slog logger backed by zap. sync flushes buffered
// entries and should be called before exit.
func (c *Config) NewLogger() (logger *slog.Logger, sync func() error) {
	return newLogger(c.writer(), c.level())
}

// Install makes the configured logger the slog default. Entries are written
// unbuffered so there is nothing to flush at exit.
func (c *Config) Install() {
	logger, _ := c.NewLogger()
	slog.SetDefault(logger)
}

// NewWriterLogger logs JSON lines to w. It is meant for tests and tools.
func NewWriterLogger(w io.Writer, level string) *slog.Logger {
	c := Config{Level: level}
	logger, _ := newLogger(zapcore.AddSync(w), c.level())
	return logger
}

func newLogger(ws zapcore.WriteSyncer, level zapcore.Level) (*slog.Logger, func() error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, zap.NewAtomicLevelAt(level))
	return slog.New(zapslog.NewHandler(core)), core.Sync
}
