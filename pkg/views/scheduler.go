package views

import (
	"time"

	"github.com/arzzra/call_ui/pkg/mainloop"
)

// Timer таймер экрана
type Timer interface {
	Stop()
}

// Scheduler планировщик колбэков в цикле событий
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
}

// LoopScheduler планировщик поверх mainloop
func LoopScheduler(l *mainloop.Loop) Scheduler {
	return loopScheduler{l}
}

type loopScheduler struct {
	loop *mainloop.Loop
}

func (s loopScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return s.loop.AfterFunc(d, fn)
}

func (s loopScheduler) Every(d time.Duration, fn func()) Timer {
	return s.loop.Every(d, fn)
}
