// Package device состояние устройства, важное для экрана вызова: блокировка,
// подсветка, датчик приближения и пользовательские настройки вызова.
//
// Memory хранит все в памяти и используется исполняемым файлом и тестами.
// Методы вызываются только из цикла событий.
package device

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/result"
)

// Settings настройки вызова
type Settings struct {
	// PowerKeyEndsCall кнопка питания завершает вызов
	PowerKeyEndsCall bool
	// AnsweringMode кнопка Home принимает входящий вызов
	AnsweringMode bool
	// PasswordEnforced политика смены пароля запрещает снимать блокировку
	PasswordEnforced bool
	// ProximitySupported на устройстве есть датчик приближения
	ProximitySupported bool
}

// Memory устройство в памяти
type Memory struct {
	settings Settings
	logger   *slog.Logger

	locked    bool
	displayOn bool
	callLock  bool
	near      bool

	proximity func(near bool)
	unlock    func()
}

// NewMemory создает разблокированное устройство с включенным экраном
func NewMemory(settings Settings, logger *slog.Logger) *Memory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		settings:  settings,
		logger:    logger.With(slog.String("component", "device")),
		displayOn: true,
	}
}

func (d *Memory) IsLocked() bool         { return d.locked || d.callLock }
func (d *Memory) IsDisplayOn() bool      { return d.displayOn }
func (d *Memory) PasswordEnforced() bool { return d.settings.PasswordEnforced }
func (d *Memory) PowerKeyEndsCall() bool { return d.settings.PowerKeyEndsCall }
func (d *Memory) AnsweringMode() bool    { return d.settings.AnsweringMode }
func (d *Memory) IsCallLocked() bool     { return d.callLock }

// Settings текущие настройки
func (d *Memory) Settings() Settings { return d.settings }

// UpdateSettings заменяет настройки
func (d *Memory) UpdateSettings(s Settings) { d.settings = s }

// Unlock снимает блокировку экрана, если политика паролей это позволяет
func (d *Memory) Unlock() error {
	if d.settings.PasswordEnforced {
		return result.New(result.PermissionDenied, "device.Unlock", "password change enforced")
	}
	d.UserUnlock()
	return nil
}

// UserUnlock имитирует разблокировку экрана пользователем
func (d *Memory) UserUnlock() {
	wasLocked := d.IsLocked()
	d.locked = false
	d.callLock = false
	if wasLocked {
		d.logger.Info("screen unlocked")
		if d.unlock != nil {
			d.unlock()
		}
	}
}

// SetLocked имитирует блокировку экрана
func (d *Memory) SetLocked(locked bool) {
	d.locked = locked
}

// SetNear имитирует датчик приближения
func (d *Memory) SetNear(near bool) {
	if d.near == near {
		return
	}
	d.near = near
	if d.proximity != nil {
		d.proximity(near)
	}
}

// ProximitySupported реализует lock_manager.ProximitySensor
func (d *Memory) ProximitySupported() bool {
	return d.settings.ProximitySupported
}

// WatchProximity реализует lock_manager.ProximitySensor
func (d *Memory) WatchProximity(cb func(near bool)) error {
	if cb != nil && !d.settings.ProximitySupported {
		return result.New(result.NotSupported, "device.WatchProximity", "no proximity sensor")
	}
	d.proximity = cb
	return nil
}

// SetDisplay реализует lock_manager.Display
func (d *Memory) SetDisplay(on bool) error {
	d.displayOn = on
	d.logger.Debug("display", slog.Bool("on", on))
	return nil
}

// SetCallLock реализует lock_manager.ScreenLock
func (d *Memory) SetCallLock(on bool) error {
	d.callLock = on
	return nil
}

// WatchUnlock реализует lock_manager.ScreenLock
func (d *Memory) WatchUnlock(cb func()) {
	d.unlock = cb
}
