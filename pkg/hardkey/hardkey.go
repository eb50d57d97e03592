// Package hardkey чтение аппаратных кнопок Power и Home из evdev.
// События передаются обработчику из горутин чтения, обработчик сам
// переносит их в цикл событий.
package hardkey

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/app"
)

// DevicePattern устройства ввода по умолчанию
const DevicePattern = "/dev/input/event*"

// Handler получает нажатие (pressed) и отпускание кнопки
type Handler func(key app.Key, pressed bool)

// Config конфигурация читателя
type Config struct {
	// Devices пути к устройствам; пусто - все устройства по DevicePattern
	Devices []string
	Handler Handler
	Logger  *slog.Logger
}

// Reader читатель аппаратных кнопок
type Reader struct {
	cfg    Config
	logger *slog.Logger
}

// New создает читатель
func New(cfg Config) *Reader {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Handler == nil {
		cfg.Handler = func(app.Key, bool) {}
	}
	return &Reader{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "hardkey")),
	}
}
