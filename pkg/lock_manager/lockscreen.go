package lock_manager

import (
	"log/slog"

	"github.com/pkg/errors"
)

type lockscreen struct {
	screen ScreenLock
	logger *slog.Logger

	started  bool
	onUnlock func()
}

func newLockscreen(screen ScreenLock, logger *slog.Logger) *lockscreen {
	return &lockscreen{
		screen: screen,
		logger: logger.With(slog.String("component", "lockscreen_lock")),
	}
}

func (l *lockscreen) Start() error {
	if l.started {
		return nil
	}
	if err := l.screen.SetCallLock(true); err != nil {
		return errors.Wrap(err, "enable call lock")
	}
	l.screen.WatchUnlock(l.unlocked)
	l.started = true
	return nil
}

func (l *lockscreen) Stop() error {
	if !l.started {
		return nil
	}
	l.started = false
	l.screen.WatchUnlock(nil)
	if err := l.screen.SetCallLock(false); err != nil {
		return errors.Wrap(err, "disable call lock")
	}
	return nil
}

func (l *lockscreen) IsStarted() bool { return l.started }

// IsLCDOff экран блокировки не гасит подсветку
func (l *lockscreen) IsLCDOff() bool { return false }

func (l *lockscreen) SetUnlockCallback(cb func()) { l.onUnlock = cb }

func (l *lockscreen) Destroy() {
	if err := l.Stop(); err != nil {
		l.logger.Warn("stop on destroy", slog.String("error", err.Error()))
	}
	l.onUnlock = nil
}

func (l *lockscreen) unlocked() {
	if !l.started {
		return
	}
	l.started = false
	l.screen.WatchUnlock(nil)
	l.logger.Debug("unlocked by user")
	if l.onUnlock != nil {
		l.onUnlock()
	}
}
