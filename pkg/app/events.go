package app

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/state_provider"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/view_manager"
)

func (a *App) onStateEvent(ev state_provider.StateEvent, _ any) {
	if a.deps.Observer != nil {
		a.deps.Observer.ObserveCallEvent(ev.Type)
		a.deps.Observer.SetLiveCalls(a.state.CallCount())
	}
	a.logger.Debug("call state event",
		slog.String("event", ev.Type.String()),
		slog.Int("call_id", int(ev.CallID)),
		slog.String("view", a.views.Current().String()))

	a.updateLock()

	switch {
	case ev.Type == telephony.EventIncoming || ev.Type == telephony.EventWaiting:
		a.showIncoming()
	case !a.state.IsAnyCallAvailable():
		a.onNoCalls()
	default:
		a.refreshView()
	}
}

// incomingTarget экран для входящего вызова: уведомление, если устройство
// разблокировано, других вызовов нет и политика паролей не действует
func (a *App) incomingTarget() view_manager.ViewID {
	dev := a.deps.Device
	if !dev.IsLocked() && !dev.PasswordEnforced() &&
		a.state.CallData(call_manager.CategoryActive) == nil &&
		a.state.CallData(call_manager.CategoryHeld) == nil {
		return view_manager.IncomingNotification
	}
	return view_manager.IncomingLock
}

func (a *App) showIncoming() {
	if a.state.CallData(call_manager.CategoryIncoming) == nil {
		a.refreshView()
		return
	}
	target := a.incomingTarget()
	if err := a.views.ChangeView(target); err != nil {
		a.logger.Error("show incoming", slog.String("view", target.String()), slog.String("error", err.Error()))
		if target == view_manager.IncomingNotification {
			if err := a.views.ChangeView(view_manager.IncomingLock); err != nil {
				a.logger.Error("show incoming lock", slog.String("error", err.Error()))
			}
		}
	}
}

// refreshView выводит экран из текущего снимка. Экран входящего вызова,
// пока вызов не принят, только обновляется.
func (a *App) refreshView() {
	current := a.views.Current()
	if current.IsIncoming() && a.state.CallData(call_manager.CategoryIncoming) != nil {
		if err := a.views.ChangeView(current); err != nil {
			a.logger.Warn("update incoming view", slog.String("error", err.Error()))
		}
		return
	}
	if err := a.views.AutoChangeView(); err != nil {
		a.logger.Error("auto change view", slog.String("error", err.Error()))
		if !a.state.IsAnyCallAvailable() {
			a.Exit()
		}
	}
}

// onNoCalls показывает экран завершения, если есть что показать, иначе выходит
func (a *App) onNoCalls() {
	if a.state.LastEndedCallData() == nil {
		a.Exit()
		return
	}
	if err := a.views.ChangeView(view_manager.EndCall); err != nil {
		a.logger.Error("show end call view", slog.String("error", err.Error()))
		a.Exit()
	}
}

// FinishEndCall вызывается экраном завершения по истечении задержки
func (a *App) FinishEndCall() {
	if a.state.IsAnyCallAvailable() {
		a.refreshView()
		return
	}
	a.Exit()
}

func (a *App) onDialStatus(status telephony.DialStatus, _ any) {
	if a.deps.Observer != nil {
		a.deps.Observer.ObserveDialStatus(status)
	}
	if status == telephony.DialSuccess {
		return
	}
	a.logger.Warn("dial failed", slog.String("status", status.String()))
	if status != telephony.DialCancel {
		a.deps.Window.ShowDialFailure(status)
	}
	if !a.state.IsAnyCallAvailable() {
		a.Exit()
	}
}

func (a *App) onEndCalled(callID uint32, release telephony.ReleaseType, _ any) {
	a.logger.Info("end requested",
		slog.Int("call_id", int(callID)),
		slog.String("release", release.String()))
}

func (a *App) onRoute(route telephony.AudioRoute, _ any) {
	a.updateLock()
}

func (a *App) onLockReleased() {
	a.logger.Debug("call lock released by device")
}

// updateLock блокировка работает, пока есть разговор через динамик у уха
func (a *App) updateLock() {
	if a.lock == nil || a.paused {
		return
	}
	want := (a.state.CallData(call_manager.CategoryActive) != nil ||
		a.state.CallData(call_manager.CategoryHeld) != nil) &&
		a.sound.Route() == telephony.AudioRouteReceiver

	switch {
	case want && !a.lock.IsStarted():
		if err := a.lock.Start(); err != nil {
			a.logger.Warn("start lock", slog.String("error", err.Error()))
		}
	case !want && a.lock.IsStarted():
		if err := a.lock.Stop(); err != nil {
			a.logger.Warn("stop lock", slog.String("error", err.Error()))
		}
	}
}
