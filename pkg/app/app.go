// Package app координатор экрана вызова. Создает компоненты в порядке
// зависимостей, связывает их слушателями и владеет семантикой аппаратных
// кнопок и внешних запросов (app-control).
//
// Глобального состояния нет: все зависимости передаются через Deps, а App
// передается компонентам явно. Все методы вызываются из цикла событий.
package app

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/lock_manager"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/sound_manager"
	"github.com/arzzra/call_ui/pkg/state_provider"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/uptime"
	"github.com/arzzra/call_ui/pkg/view_manager"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Device состояние устройства и настройки вызова
type Device interface {
	IsLocked() bool
	IsDisplayOn() bool
	PasswordEnforced() bool
	PowerKeyEndsCall() bool
	AnsweringMode() bool
	Unlock() error
}

// Window окно приложения
type Window interface {
	Minimize() error
	// Raise поднимает окно; aboveLock - поверх экрана блокировки
	Raise(aboveLock bool) error
	// GrabHomeKey перехватывает Home, чтобы она не сворачивала экран входящего
	GrabHomeKey() error
	ShowDialFailure(status telephony.DialStatus)
	ShowAnswerOptions(options []telephony.AnswerType)
	Exit()
}

// Observer метрики координатора
type Observer interface {
	call_manager.ActionObserver
	view_manager.TransitionObserver
	ObserveCallEvent(event telephony.EventType)
	ObserveDialStatus(status telephony.DialStatus)
	SetLiveCalls(n int)
}

// ViewsFactory строит фабрику экранов для созданного приложения
type ViewsFactory func(a *App) view_manager.Factory

// Deps зависимости приложения
type Deps struct {
	Client   telephony.Client
	Audio    telephony.AudioClient
	Contacts state_provider.ContactResolver
	Uptime   uptime.Source
	Device   Device
	// Lock платформа блокировки экрана; nil - без блокировки
	Lock     lock_manager.Platform
	Window   Window
	Views    ViewsFactory
	Observer Observer
	Logger   *slog.Logger
}

// App координатор
type App struct {
	deps    Deps
	logger  *slog.Logger
	session string

	calls *call_manager.Manager
	state *state_provider.Provider
	sound *sound_manager.Manager
	views *view_manager.Manager
	lock  lock_manager.LockManager

	created     bool
	paused      bool
	restartLock bool
	exited      bool
}

// New проверяет зависимости. Компоненты создаются в Create.
func New(deps Deps) (*App, error) {
	switch {
	case deps.Client == nil, deps.Audio == nil:
		return nil, result.New(result.InvalidParam, "app.New", "telephony clients are required")
	case deps.Device == nil, deps.Window == nil, deps.Views == nil:
		return nil, result.New(result.InvalidParam, "app.New", "device, window and views are required")
	}
	if deps.Uptime == nil {
		deps.Uptime = uptime.System()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	session := uuid.NewString()
	return &App{
		deps:    deps,
		session: session,
		logger:  logger.With(slog.String("component", "app"), slog.String("session", session)),
	}, nil
}

// Create создает компоненты в порядке зависимостей и подписывает их друг на друга.
// При ошибке уже созданные компоненты освобождаются.
func (a *App) Create() (err error) {
	if a.created {
		return result.New(result.Fail, "app.Create", "already created")
	}
	defer func() {
		if err != nil {
			a.teardown()
		}
	}()

	var actionObs call_manager.ActionObserver
	var viewObs view_manager.TransitionObserver
	if a.deps.Observer != nil {
		actionObs, viewObs = a.deps.Observer, a.deps.Observer
	}

	if a.calls, err = call_manager.New(call_manager.Config{
		Client: a.deps.Client, Logger: a.deps.Logger, Observer: actionObs,
	}); err != nil {
		return errors.Wrap(err, "create call manager")
	}
	if a.state, err = state_provider.New(state_provider.Config{
		Source: a.calls, Contacts: a.deps.Contacts, Uptime: a.deps.Uptime, Logger: a.deps.Logger,
	}); err != nil {
		return errors.Wrap(err, "create state provider")
	}
	if a.sound, err = sound_manager.New(sound_manager.Config{
		Client: a.deps.Audio, Logger: a.deps.Logger, Observer: actionObs,
	}); err != nil {
		return errors.Wrap(err, "create sound manager")
	}
	if a.views, err = view_manager.New(view_manager.Config{
		Calls: a.state, Factory: a.deps.Views(a), Logger: a.deps.Logger, Observer: viewObs,
	}); err != nil {
		return errors.Wrap(err, "create view manager")
	}
	if a.deps.Lock != nil {
		a.lock = lock_manager.New(a.deps.Lock, a.deps.Logger)
		a.lock.SetUnlockCallback(a.onLockReleased)
	}

	if err = a.state.AddCallStateEventHandler(a.onStateEvent, a); err != nil {
		return errors.Wrap(err, "subscribe to call state")
	}
	if err = a.calls.AddDialStatusHandler(a.onDialStatus, a); err != nil {
		return errors.Wrap(err, "subscribe to dial status")
	}
	if err = a.calls.AddEndCallHandler(a.onEndCalled, a); err != nil {
		return errors.Wrap(err, "subscribe to end call")
	}
	if err = a.sound.AddRouteHandler(a.onRoute, a); err != nil {
		return errors.Wrap(err, "subscribe to audio route")
	}

	a.created = true
	a.logger.Info("app created")

	// приложение запущено посреди вызова
	if a.state.IsAnyCallAvailable() {
		a.refreshView()
		a.updateLock()
	}
	return nil
}

// Pause окно скрыто: блокировка останавливается и перезапустится в Resume
func (a *App) Pause() {
	if !a.created || a.paused {
		return
	}
	a.paused = true
	if a.lock != nil && a.lock.IsStarted() {
		if err := a.lock.Stop(); err != nil {
			a.logger.Warn("stop lock on pause", slog.String("error", err.Error()))
		}
		a.restartLock = true
	}
	a.views.Pause()
	a.logger.Info("app paused")
}

// Resume окно снова видно
func (a *App) Resume() {
	if !a.created || !a.paused {
		return
	}
	a.paused = false
	if a.restartLock {
		a.restartLock = false
		if err := a.lock.Start(); err != nil {
			a.logger.Warn("restart lock on resume", slog.String("error", err.Error()))
		}
	}
	a.views.Resume()
	a.updateLock()
	a.logger.Info("app resumed")
}

// Terminate освобождает компоненты в обратном порядке
func (a *App) Terminate() {
	if !a.created {
		return
	}
	a.teardown()
	a.created = false
	a.logger.Info("app terminated")
}

func (a *App) teardown() {
	if a.lock != nil {
		a.lock.Destroy()
		a.lock = nil
	}
	if a.views != nil {
		if err := a.views.Close(); err != nil {
			a.logger.Warn("close views", slog.String("error", err.Error()))
		}
		a.views = nil
	}
	if a.sound != nil {
		a.sound.Close()
		a.sound = nil
	}
	if a.state != nil {
		a.state.Close()
		a.state = nil
	}
	if a.calls != nil {
		a.calls.Close()
		a.calls = nil
	}
}

// Exit закрывает приложение. Единственный фатальный путь: нет ни вызова,
// ни экрана, который можно показать.
func (a *App) Exit() {
	if a.exited {
		return
	}
	a.exited = true
	a.logger.Info("exit requested")
	if a.views != nil {
		if err := a.views.Reset(); err != nil {
			a.logger.Warn("reset views on exit", slog.String("error", err.Error()))
		}
	}
	a.deps.Window.Exit()
}

// Session идентификатор запуска приложения
func (a *App) Session() string { return a.session }

// Calls фасад менеджера вызовов
func (a *App) Calls() *call_manager.Manager { return a.calls }

// State провайдер состояния вызовов
func (a *App) State() *state_provider.Provider { return a.state }

// Sound менеджер звука
func (a *App) Sound() *sound_manager.Manager { return a.sound }

// Views менеджер экранов
func (a *App) Views() *view_manager.Manager { return a.views }

// Lock менеджер блокировки или nil
func (a *App) Lock() lock_manager.LockManager { return a.lock }

// IsPaused окно скрыто
func (a *App) IsPaused() bool { return a.paused }

// Exited приложение запросило выход
func (a *App) Exited() bool { return a.exited }
