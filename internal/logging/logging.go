// Package logging настраивает slog: JSON или цветной консольный вывод и
// необязательную запись в файл с ротацией.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/employee-api/internal/config"
	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	MaxSize    = 100
	MaxBackups = 3
	MaxAge     = 28
)

// ParseLevel разбирает уровень логирования; пустая строка - info
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// New создаёт логгер по настройкам; io.Closer закрывает файл журнала
func New(cfg config.LogConfig, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var console slog.Handler
	switch cfg.Format {
	case "", "json":
		console = slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: level})
	case "text", "console":
		console = NewConsoleHandler(stdout, level)
	default:
		return nil, nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	if cfg.File == "" {
		return slog.New(console), nopCloser{}, nil
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    MaxSize,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAge,
		Compress:   true,
	}
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("timestamp", a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	})

	return slog.New(fanout{console, fileHandler}), file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanout передаёт запись каждому вложенному обработчику
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// ConsoleHandler печатает записи в одну строку с подсветкой уровня
type ConsoleHandler struct {
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewConsoleHandler создаёт обработчик для интерактивного терминала
func NewConsoleHandler(w io.Writer, level slog.Leveler) *ConsoleHandler {
	return &ConsoleHandler{w: w, level: level}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var colorFn func(format string, a ...any) string
	switch {
	case r.Level >= slog.LevelError:
		colorFn = color.New(color.FgRed).Sprintf
	case r.Level >= slog.LevelWarn:
		colorFn = color.New(color.FgYellow).Sprintf
	case r.Level >= slog.LevelInfo:
		colorFn = color.New(color.FgGreen).Sprintf
	default:
		colorFn = color.New(color.FgCyan).Sprintf
	}

	parts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		parts = append(parts, format("", a))
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, format(h.prefix, a))
		return true
	})

	message := r.Message
	if len(parts) > 0 {
		message += " " + strings.Join(parts, " ")
	}

	_, err := fmt.Fprintf(h.w, "%s %s %s\n",
		color.New(color.FgBlue).Sprint(r.Time.Format("2006-01-02 15:04:05.000")),
		colorFn("%-5s", r.Level.String()),
		message,
	)
	return err
}

func format(prefix string, a slog.Attr) string {
	return fmt.Sprintf("%s%s=%v", prefix, a.Key, a.Value.Resolve())
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &clone
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}
