// Package view_manager машина состояний основного экрана вызова.
//
// Состояния машины - идентификаторы экранов и Undefined. В каждый момент жив
// не более чем один экземпляр экрана: при смене состояния текущий экран
// уничтожается до создания следующего. Переходы выполняет looplab/fsm,
// создание и уничтожение экземпляров происходит в колбэках входа и выхода.
package view_manager

import (
	"context"
	"log/slog"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/listeners"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/state_provider"
	"github.com/looplab/fsm"
	"github.com/pkg/errors"
)

const eventReset = "reset"

// CallSnapshot источник текущих записей вызовов
type CallSnapshot interface {
	CallData(category call_manager.Category) *state_provider.Record
}

// TransitionObserver получает итог каждого перехода, используется для метрик
type TransitionObserver interface {
	ObserveTransition(from, to ViewID, code result.Code)
}

// ViewChangedHandler обработчик смены текущего экрана
type ViewChangedHandler func(from, to ViewID, userData any)

// Config конфигурация менеджера экранов
type Config struct {
	Calls    CallSnapshot
	Factory  Factory
	Logger   *slog.Logger
	Observer TransitionObserver
}

// Manager менеджер экранов
type Manager struct {
	machine  *fsm.FSM
	calls    CallSnapshot
	factory  Factory
	logger   *slog.Logger
	observer TransitionObserver

	current        View
	transitioning  bool
	listEndClicked bool
	paused         bool

	// ошибка Destroy предыдущего экрана в текущем переходе
	destroyErr error

	viewChanged *listeners.Collection[ViewChangedHandler]
}

// New создает менеджер в состоянии Undefined
func New(cfg Config) (*Manager, error) {
	if cfg.Calls == nil || cfg.Factory == nil {
		return nil, result.New(result.InvalidParam, "view_manager.New", "calls and factory are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		calls:       cfg.Calls,
		factory:     cfg.Factory,
		logger:      logger.With(slog.String("component", "view_manager")),
		observer:    cfg.Observer,
		viewChanged: listeners.New[ViewChangedHandler](),
	}
	m.machine = fsm.NewFSM(string(Undefined), transitions(), fsm.Callbacks{
		"leave_state": m.leaveState,
		"enter_state": m.enterState,
	})
	return m, nil
}

// transitions из любого состояния в любое другое ведет событие show_<id>,
// в Undefined ведет reset
func transitions() fsm.Events {
	all := append([]ViewID{Undefined}, Views...)
	events := make(fsm.Events, 0, len(Views)+1)
	for _, dst := range Views {
		src := make([]string, 0, len(all)-1)
		for _, s := range all {
			if s != dst {
				src = append(src, string(s))
			}
		}
		events = append(events, fsm.EventDesc{Name: eventName(dst), Src: src, Dst: string(dst)})
	}
	src := make([]string, 0, len(Views))
	for _, s := range Views {
		src = append(src, string(s))
	}
	events = append(events, fsm.EventDesc{Name: eventReset, Src: src, Dst: string(Undefined)})
	return events
}

// Current текущий экран
func (m *Manager) Current() ViewID {
	return ViewID(m.machine.Current())
}

// CurrentView экземпляр текущего экрана или nil
func (m *Manager) CurrentView() View {
	return m.current
}

// IsPaused окно приложения скрыто
func (m *Manager) IsPaused() bool {
	return m.paused
}

// AddViewChangedHandler регистрирует обработчик смены экрана
func (m *Manager) AddViewChangedHandler(h ViewChangedHandler, userData any) error {
	return m.viewChanged.Add(h, userData)
}

// RemoveViewChangedHandler удаляет обработчик смены экрана
func (m *Manager) RemoveViewChangedHandler(h ViewChangedHandler, userData any) error {
	return m.viewChanged.Remove(h, userData)
}

// ChangeView делает target текущим экраном. Если target уже текущий,
// экран обновляется. Иначе текущий экран уничтожается и создается новый;
// при ошибке создания менеджер остается в Undefined и возвращает ошибку.
func (m *Manager) ChangeView(target ViewID) error {
	if target == Undefined || !target.Valid() {
		return result.Newf(result.InvalidParam, "view_manager.ChangeView", "unknown view %q", target)
	}
	if m.transitioning {
		return result.New(result.Fail, "view_manager.ChangeView", "view change in progress")
	}

	from := m.Current()
	if from == target {
		err := m.update()
		m.observe(from, target, err)
		return err
	}

	m.transitioning = true
	m.destroyErr = nil
	err := m.machine.Event(context.Background(), eventName(target))
	m.transitioning = false

	if err != nil {
		if m.current == nil && m.Current() == target {
			m.machine.SetState(string(Undefined))
		}
		m.logger.Error("view change failed",
			slog.String("from", from.String()),
			slog.String("to", target.String()),
			slog.String("error", err.Error()))
		m.observe(from, target, err)
		m.notify(from, m.Current())
		return err
	}

	if m.destroyErr != nil {
		m.logger.Warn("previous view destroy failed",
			slog.String("view", from.String()),
			slog.String("error", m.destroyErr.Error()))
	}
	m.logger.Info("view changed", slog.String("from", from.String()), slog.String("to", target.String()))
	m.observe(from, target, nil)
	m.notify(from, target)
	return nil
}

// Reset уничтожает текущий экран и возвращает менеджер в Undefined
func (m *Manager) Reset() error {
	from := m.Current()
	if from == Undefined {
		return nil
	}
	if m.transitioning {
		return result.New(result.Fail, "view_manager.Reset", "view change in progress")
	}

	m.transitioning = true
	m.destroyErr = nil
	err := m.machine.Event(context.Background(), eventReset)
	m.transitioning = false
	if err != nil {
		return errors.Wrap(err, "reset view")
	}
	m.observe(from, Undefined, m.destroyErr)
	m.notify(from, Undefined)
	return m.destroyErr
}

// SetListEndClicked запоминает нажатие на конец списка участников.
// Следующий AutoChangeView при конференции покажет список.
func (m *Manager) SetListEndClicked() {
	m.listEndClicked = true
}

// AutoChangeView выбирает экран по текущему снимку вызовов и переключается на него
func (m *Manager) AutoChangeView() error {
	target, latched := m.derive()
	if target == Undefined {
		return ErrNoCall
	}
	if latched {
		m.listEndClicked = false
	}
	return m.ChangeView(target)
}

// Derive возвращает экран, который AutoChangeView выбрал бы сейчас,
// или Undefined, если вызовов нет
func (m *Manager) Derive() ViewID {
	target, _ := m.derive()
	return target
}

func (m *Manager) derive() (ViewID, bool) {
	incoming := m.calls.CallData(call_manager.CategoryIncoming)
	active := m.calls.CallData(call_manager.CategoryActive)
	held := m.calls.CallData(call_manager.CategoryHeld)

	switch {
	case m.listEndClicked && active.IsConference():
		return MulticallList, true
	case incoming != nil:
		return IncomingLock, false
	case active != nil && active.Dialing:
		return Dialing, false
	case active != nil && held != nil:
		return MulticallSplit, false
	case active.IsConference():
		return MulticallConference, false
	case active != nil:
		return SingleCall, false
	case held.IsConference():
		return MulticallConference, false
	case held != nil:
		return SingleCall, false
	}
	return Undefined, false
}

// Pause сообщает текущему экрану, что окно скрыто
func (m *Manager) Pause() {
	if m.paused {
		return
	}
	m.paused = true
	if v, ok := m.current.(Visibility); ok {
		v.OnHide()
	}
}

// Resume сообщает текущему экрану, что окно снова видно
func (m *Manager) Resume() {
	if !m.paused {
		return
	}
	m.paused = false
	if v, ok := m.current.(Visibility); ok {
		v.OnShow()
	}
}

// Close уничтожает текущий экран и освобождает слушателей
func (m *Manager) Close() error {
	err := m.Reset()
	_ = m.viewChanged.Deinit()
	return err
}

func (m *Manager) update() error {
	u, ok := m.current.(Updater)
	if !ok {
		return nil
	}
	if err := u.Update(); err != nil {
		return errors.Wrapf(err, "update %s", m.Current())
	}
	return nil
}

// leaveState уничтожает текущий экземпляр. Ошибка Destroy не отменяет переход.
func (m *Manager) leaveState(_ context.Context, e *fsm.Event) {
	if m.current == nil {
		return
	}
	view := m.current
	m.current = nil
	if err := view.Destroy(); err != nil {
		m.destroyErr = errors.Wrapf(err, "destroy %s", e.Src)
	}
}

// enterState создает экземпляр нового экрана. Ошибка попадает в e.Err
// и возвращается из Event.
func (m *Manager) enterState(_ context.Context, e *fsm.Event) {
	id := ViewID(e.Dst)
	if id == Undefined {
		return
	}

	view, err := m.factory(id)
	if err != nil {
		e.Err = result.Wrap(err, result.AllocationFail, "view_manager.create")
		return
	}
	if view == nil {
		e.Err = result.Newf(result.NotSupported, "view_manager.create", "no view for %s", id)
		return
	}
	if err := view.Create(); err != nil {
		if derr := view.Destroy(); derr != nil {
			m.logger.Warn("destroy after failed create",
				slog.String("view", id.String()),
				slog.String("error", derr.Error()))
		}
		e.Err = errors.Wrapf(err, "create %s", id)
		return
	}
	m.current = view
	if v, ok := view.(Visibility); ok && !m.paused {
		v.OnShow()
	}
}

func (m *Manager) observe(from, to ViewID, err error) {
	if m.observer != nil {
		m.observer.ObserveTransition(from, to, result.CodeOf(err))
	}
}

func (m *Manager) notify(from, to ViewID) {
	if from == to {
		return
	}
	if err := m.viewChanged.Dispatch(func(h ViewChangedHandler, userData any) {
		h(from, to, userData)
	}); err != nil {
		m.logger.Warn("view changed dispatch failed", slog.String("error", err.Error()))
	}
}
