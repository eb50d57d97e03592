package app

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/view_manager"
)

// Key аппаратная кнопка
type Key int

const (
	KeyPower Key = iota
	KeyHome
)

func (k Key) String() string {
	switch k {
	case KeyPower:
		return "power"
	case KeyHome:
		return "home"
	}
	return "unknown"
}

// HandleKey обрабатывает событие аппаратной кнопки. Реагируем только на
// отпускание.
func (a *App) HandleKey(key Key, pressed bool) {
	if !a.created || pressed {
		return
	}
	a.logger.Debug("key released", slog.String("key", key.String()))
	switch key {
	case KeyPower:
		a.onPowerKey()
	case KeyHome:
		a.onHomeKey()
	}
}

func (a *App) onPowerKey() {
	dev := a.deps.Device
	if !dev.IsDisplayOn() {
		return
	}

	current := a.views.Current()
	if !dev.PowerKeyEndsCall() {
		idle := current == view_manager.Undefined || a.paused
		if idle && a.state.CallData(call_manager.CategoryIncoming) != nil {
			a.showIncoming()
		}
		return
	}

	var err error
	switch current {
	case view_manager.Dialing:
		active := a.state.CallData(call_manager.CategoryActive)
		if active == nil {
			return
		}
		err = a.calls.End(active.CallID, telephony.ReleaseByCallHandle)
	case view_manager.SingleCall, view_manager.MulticallConference:
		err = a.calls.End(0, telephony.ReleaseAll)
	case view_manager.MulticallSplit, view_manager.MulticallList:
		err = a.calls.End(0, telephony.ReleaseAllActive)
	case view_manager.IncomingNotification:
		err = a.views.ChangeView(view_manager.IncomingLock)
	default:
		return
	}
	if err != nil {
		a.logger.Warn("power key action failed",
			slog.String("view", current.String()),
			slog.String("error", err.Error()))
	}
}

func (a *App) onHomeKey() {
	dev := a.deps.Device
	current := a.views.Current()

	if current.IsIncoming() {
		if !dev.AnsweringMode() {
			if err := a.deps.Window.GrabHomeKey(); err != nil {
				a.logger.Warn("grab home key", slog.String("error", err.Error()))
			}
			return
		}
		active := a.state.CallData(call_manager.CategoryActive)
		if active != nil && active.MemberCount > 0 {
			a.deps.Window.ShowAnswerOptions(a.AnswerOptions())
			return
		}
		if err := a.calls.Answer(telephony.AnswerNormal); err != nil {
			a.logger.Warn("answer by home key", slog.String("error", err.Error()))
		}
		return
	}

	if dev.IsLocked() && !dev.PasswordEnforced() {
		if err := dev.Unlock(); err != nil {
			a.logger.Warn("unlock before minimize", slog.String("error", err.Error()))
		}
	}
	if err := a.deps.Window.Minimize(); err != nil {
		a.logger.Warn("minimize", slog.String("error", err.Error()))
	}
}
