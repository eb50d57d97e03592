// Package logging настройка slog для приложения: уровень, формат и
// файл с ротацией через lumberjack.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/arzzra/call_ui/pkg/config"
	"github.com/arzzra/call_ui/pkg/result"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger журнал приложения и его файл
type Logger struct {
	*slog.Logger
	file *lumberjack.Logger
}

// ParseLevel переводит имя уровня в slog.Level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, result.Wrap(err, result.InvalidParam, "logging.ParseLevel")
	}
	return level, nil
}

// New создает журнал. При заданном файле записи идут и в stderr, и в файл.
func New(cfg config.Logging) (*Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.Logging, console io.Writer) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	l := &Logger{}
	out := console
	if cfg.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out = io.MultiWriter(console, l.file)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	case "", "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		return nil, result.Newf(result.InvalidParam, "logging.New", "unknown format %q", cfg.Format)
	}
	l.Logger = slog.New(handler)
	return l, nil
}

// Rotate начинает новый файл журнала
func (l *Logger) Rotate() error {
	if l.file == nil {
		return nil
	}
	return l.file.Rotate()
}

// Close закрывает файл журнала
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
