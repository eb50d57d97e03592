// Package mainloop однопоточный цикл событий. Колбэки платформы, аппаратные
// кнопки, таймеры и действия удаленных клиентов ставятся в очередь через Post
// и выполняются по одному в горутине Run. Компоненты ядра не используют
// блокировок, поэтому все их методы вызываются только внутри цикла.
package mainloop

import (
	"context"
	"log/slog"
	"time"

	"github.com/arzzra/call_ui/pkg/result"
)

// DefaultQueueSize размер очереди по умолчанию
const DefaultQueueSize = 256

// Loop цикл событий
type Loop struct {
	queue  chan func()
	done   chan struct{}
	logger *slog.Logger
}

// New создает цикл с очередью заданного размера
func New(queueSize int, logger *slog.Logger) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		queue:  make(chan func(), queueSize),
		done:   make(chan struct{}),
		logger: logger.With(slog.String("component", "mainloop")),
	}
}

// Post ставит fn в очередь. Безопасен из любой горутины.
// После остановки цикла задачи отбрасываются.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	select {
	case <-l.done:
	case l.queue <- fn:
	}
}

// Run выполняет задачи до отмены ctx
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	l.logger.Info("event loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("event loop stopped")
			return nil
		case fn := <-l.queue:
			l.run(fn)
		}
	}
}

// Call выполняет fn в цикле и ждет завершения
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	l.Post(func() { errCh <- fn() })
	select {
	case err := <-errCh:
		return err
	case <-l.done:
		return result.New(result.Fail, "mainloop.Call", "loop stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panicked", slog.Any("panic", r))
		}
	}()
	fn()
}

// AfterFunc вызывает fn в цикле через d
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	return l.newTimer(d, fn, false)
}

// Every вызывает fn в цикле каждые d, пока таймер не остановлен
func (l *Loop) Every(d time.Duration, fn func()) *Timer {
	return l.newTimer(d, fn, true)
}
