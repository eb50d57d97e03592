package mainloop

import "time"

// Timer таймер цикла событий. Stop вызывается из цикла; после Stop колбэк
// гарантированно не выполнится, даже если срабатывание уже в очереди.
type Timer struct {
	loop     *Loop
	t        *time.Timer
	fn       func()
	interval time.Duration
	repeat   bool
	stopped  bool
}

func (l *Loop) newTimer(d time.Duration, fn func(), repeat bool) *Timer {
	tm := &Timer{loop: l, fn: fn, interval: d, repeat: repeat}
	tm.t = time.AfterFunc(d, tm.expired)
	return tm
}

// expired выполняется в горутине time и передает срабатывание в цикл
func (tm *Timer) expired() {
	tm.loop.Post(tm.fire)
}

func (tm *Timer) fire() {
	if tm.stopped {
		return
	}
	if !tm.repeat {
		tm.stopped = true
	}
	tm.fn()
	if tm.repeat && !tm.stopped {
		tm.t.Reset(tm.interval)
	}
}

// Stop отменяет таймер. Повторный вызов безопасен.
func (tm *Timer) Stop() {
	if tm == nil || tm.stopped {
		return
	}
	tm.stopped = true
	tm.t.Stop()
}

// Stopped таймер остановлен или уже сработал
func (tm *Timer) Stopped() bool {
	return tm == nil || tm.stopped
}
