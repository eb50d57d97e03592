// Package lock_manager блокирует экран во время разговора: по датчику
// приближения, если он есть, иначе через экран блокировки.
package lock_manager

import (
	"log/slog"
)

// LockManager блокировка экрана на время вызова
type LockManager interface {
	Start() error
	Stop() error
	IsStarted() bool
	// IsLCDOff экран погашен блокировкой
	IsLCDOff() bool
	// SetUnlockCallback колбэк, вызываемый когда блокировка снята
	// устройством (отвели телефон от уха, разблокировали экран)
	SetUnlockCallback(cb func())
	Destroy()
}

// ProximitySensor датчик приближения
type ProximitySensor interface {
	ProximitySupported() bool
	// WatchProximity подписывает на изменения; nil отписывает
	WatchProximity(cb func(near bool)) error
}

// Display управление подсветкой экрана
type Display interface {
	SetDisplay(on bool) error
}

// ScreenLock экран блокировки устройства на время вызова
type ScreenLock interface {
	SetCallLock(on bool) error
	// WatchUnlock подписывает на разблокировку; nil отписывает
	WatchUnlock(cb func())
}

// Platform все, что нужно реализациям
type Platform interface {
	ProximitySensor
	Display
	ScreenLock
}

// New выбирает реализацию по возможностям устройства
func New(p Platform, logger *slog.Logger) LockManager {
	if logger == nil {
		logger = slog.Default()
	}
	if p.ProximitySupported() {
		logger.Info("lock manager: proximity")
		return newProximity(p, p, logger)
	}
	logger.Info("lock manager: lockscreen")
	return newLockscreen(p, logger)
}
