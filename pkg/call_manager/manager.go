// Package call_manager единственный владелец соединения с платформенным
// клиентом телефонии. Оборачивает команды управления вызовами и публикует
// события жизненного цикла, статуса набора и завершения вызова через
// коллекции слушателей.
package call_manager

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/listeners"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
)

// CallEventHandler обработчик событий жизненного цикла вызова
type CallEventHandler func(event telephony.EventType, data *telephony.EventData, userData any)

// DialStatusHandler обработчик статуса набора номера
type DialStatusHandler func(status telephony.DialStatus, userData any)

// EndCallHandler обработчик успешной команды завершения вызова
type EndCallHandler func(callID uint32, release telephony.ReleaseType, userData any)

// ActionObserver получает результат каждой команды, используется для метрик
type ActionObserver interface {
	ObserveAction(action string, code result.Code)
}

// Config конфигурация менеджера вызовов
type Config struct {
	Client   telephony.Client
	Logger   *slog.Logger
	Observer ActionObserver
}

// Manager фасад над платформенным клиентом телефонии
type Manager struct {
	client   telephony.Client
	logger   *slog.Logger
	observer ActionObserver

	callEvents *listeners.Collection[CallEventHandler]
	dialStatus *listeners.Collection[DialStatusHandler]
	endCalled  *listeners.Collection[EndCallHandler]
}

// New создает менеджер и подписывается на колбэки клиента
func New(cfg Config) (*Manager, error) {
	if cfg.Client == nil {
		return nil, result.New(result.InvalidParam, "call_manager.New", "client is nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		client:     cfg.Client,
		logger:     logger.With(slog.String("component", "call_manager")),
		observer:   cfg.Observer,
		callEvents: listeners.New[CallEventHandler](),
		dialStatus: listeners.New[DialStatusHandler](),
		endCalled:  listeners.New[EndCallHandler](),
	}

	m.client.SetCallEventHandler(m.onCallEvent)
	m.client.SetDialStatusHandler(m.onDialStatus)
	return m, nil
}

// Close отписывается от клиента и освобождает коллекции слушателей
func (m *Manager) Close() {
	m.client.SetCallEventHandler(nil)
	m.client.SetDialStatusHandler(nil)
	_ = m.callEvents.Deinit()
	_ = m.dialStatus.Deinit()
	_ = m.endCalled.Deinit()
}

func (m *Manager) onCallEvent(event telephony.EventType, data *telephony.EventData) {
	if data == nil {
		data = &telephony.EventData{}
	}
	m.logger.Debug("call event",
		slog.String("event", event.String()),
		slog.Int("call_id", int(data.CallID)),
		slog.Int("sim_slot", int(data.SimSlot)))

	if err := m.callEvents.Dispatch(func(h CallEventHandler, userData any) {
		h(event, data, userData)
	}); err != nil {
		m.logger.Warn("call event dispatch failed", slog.String("error", err.Error()))
	}
}

func (m *Manager) onDialStatus(status telephony.DialStatus) {
	m.logger.Info("dial status", slog.String("status", status.String()))
	if err := m.dialStatus.Dispatch(func(h DialStatusHandler, userData any) {
		h(status, userData)
	}); err != nil {
		m.logger.Warn("dial status dispatch failed", slog.String("error", err.Error()))
	}
}

// AddCallEventHandler регистрирует обработчик событий вызова
func (m *Manager) AddCallEventHandler(h CallEventHandler, userData any) error {
	return m.callEvents.Add(h, userData)
}

// RemoveCallEventHandler удаляет обработчик событий вызова
func (m *Manager) RemoveCallEventHandler(h CallEventHandler, userData any) error {
	return m.callEvents.Remove(h, userData)
}

// AddDialStatusHandler регистрирует обработчик статуса набора
func (m *Manager) AddDialStatusHandler(h DialStatusHandler, userData any) error {
	return m.dialStatus.Add(h, userData)
}

// RemoveDialStatusHandler удаляет обработчик статуса набора
func (m *Manager) RemoveDialStatusHandler(h DialStatusHandler, userData any) error {
	return m.dialStatus.Remove(h, userData)
}

// AddEndCallHandler регистрирует обработчик успешного End
func (m *Manager) AddEndCallHandler(h EndCallHandler, userData any) error {
	return m.endCalled.Add(h, userData)
}

// RemoveEndCallHandler удаляет обработчик успешного End
func (m *Manager) RemoveEndCallHandler(h EndCallHandler, userData any) error {
	return m.endCalled.Remove(h, userData)
}

func (m *Manager) finish(action string, err error) error {
	err = result.FromPlatform(err, "call_manager."+action)
	code := result.CodeOf(err)
	if m.observer != nil {
		m.observer.ObserveAction(action, code)
	}
	if err != nil {
		m.logger.Warn("call action failed",
			slog.String("action", action),
			slog.String("code", code.String()),
			slog.String("error", err.Error()))
	}
	return err
}
