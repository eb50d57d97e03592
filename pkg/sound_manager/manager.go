// Package sound_manager отслеживает аудио маршрут и состояние микрофона
// текущего вызова. Состояние меняется только по подтверждению платформы;
// запросы SetSpeaker/SetMute/SetBluetooth лишь передают намерение.
package sound_manager

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/listeners"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
)

// RouteHandler обработчик смены аудио маршрута
type RouteHandler func(route telephony.AudioRoute, userData any)

// MuteHandler обработчик смены состояния микрофона
type MuteHandler func(muted bool, userData any)

// Config конфигурация
type Config struct {
	Client   telephony.AudioClient
	Logger   *slog.Logger
	Observer call_manager.ActionObserver
}

// Manager менеджер звука вызова
type Manager struct {
	client   telephony.AudioClient
	logger   *slog.Logger
	observer call_manager.ActionObserver

	route telephony.AudioRoute
	muted bool

	routeEvents *listeners.Collection[RouteHandler]
	muteEvents  *listeners.Collection[MuteHandler]
}

// New создает менеджер, читает начальное состояние и подписывается
// на подтверждения платформы
func New(cfg Config) (*Manager, error) {
	if cfg.Client == nil {
		return nil, result.New(result.InvalidParam, "sound_manager.New", "client is nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		client:      cfg.Client,
		logger:      logger.With(slog.String("component", "sound_manager")),
		observer:    cfg.Observer,
		routeEvents: listeners.New[RouteHandler](),
		muteEvents:  listeners.New[MuteHandler](),
	}

	route, err := m.client.AudioRoute()
	if err != nil {
		return nil, result.FromPlatform(err, "sound_manager.AudioRoute")
	}
	muted, err := m.client.IsMuted()
	if err != nil {
		return nil, result.FromPlatform(err, "sound_manager.IsMuted")
	}
	m.route, m.muted = route, muted

	m.client.SetAudioRouteHandler(m.onRoute)
	m.client.SetMuteHandler(m.onMute)
	return m, nil
}

// Close отписывается от платформы
func (m *Manager) Close() {
	m.client.SetAudioRouteHandler(nil)
	m.client.SetMuteHandler(nil)
	_ = m.routeEvents.Deinit()
	_ = m.muteEvents.Deinit()
}

// Route последний подтвержденный маршрут
func (m *Manager) Route() telephony.AudioRoute {
	return m.route
}

// IsMuted последнее подтвержденное состояние микрофона
func (m *Manager) IsMuted() bool {
	return m.muted
}

// IsSpeakerOn сообщает, выведен ли звук на громкоговоритель
func (m *Manager) IsSpeakerOn() bool {
	return m.route == telephony.AudioRouteSpeaker
}

// SetSpeaker запрашивает громкоговоритель
func (m *Manager) SetSpeaker(on bool) error {
	return m.finish("speaker", m.client.SetSpeaker(on))
}

// SetBluetooth запрашивает bluetooth гарнитуру
func (m *Manager) SetBluetooth(on bool) error {
	return m.finish("bluetooth", m.client.SetBluetooth(on))
}

// SetMute запрашивает выключение микрофона
func (m *Manager) SetMute(on bool) error {
	return m.finish("mute", m.client.SetMute(on))
}

// AddRouteHandler регистрирует обработчик смены маршрута
func (m *Manager) AddRouteHandler(h RouteHandler, userData any) error {
	return m.routeEvents.Add(h, userData)
}

// RemoveRouteHandler удаляет обработчик смены маршрута
func (m *Manager) RemoveRouteHandler(h RouteHandler, userData any) error {
	return m.routeEvents.Remove(h, userData)
}

// AddMuteHandler регистрирует обработчик смены состояния микрофона
func (m *Manager) AddMuteHandler(h MuteHandler, userData any) error {
	return m.muteEvents.Add(h, userData)
}

// RemoveMuteHandler удаляет обработчик смены состояния микрофона
func (m *Manager) RemoveMuteHandler(h MuteHandler, userData any) error {
	return m.muteEvents.Remove(h, userData)
}

func (m *Manager) onRoute(route telephony.AudioRoute) {
	if route == m.route {
		return
	}
	m.logger.Info("audio route changed",
		slog.String("from", m.route.String()),
		slog.String("to", route.String()))
	m.route = route
	if err := m.routeEvents.Dispatch(func(h RouteHandler, userData any) {
		h(route, userData)
	}); err != nil {
		m.logger.Warn("route dispatch failed", slog.String("error", err.Error()))
	}
}

func (m *Manager) onMute(muted bool) {
	if muted == m.muted {
		return
	}
	m.muted = muted
	m.logger.Info("mute changed", slog.Bool("muted", muted))
	if err := m.muteEvents.Dispatch(func(h MuteHandler, userData any) {
		h(muted, userData)
	}); err != nil {
		m.logger.Warn("mute dispatch failed", slog.String("error", err.Error()))
	}
}

func (m *Manager) finish(action string, err error) error {
	err = result.FromPlatform(err, "sound_manager."+action)
	if m.observer != nil {
		m.observer.ObserveAction(action, result.CodeOf(err))
	}
	if err != nil {
		m.logger.Warn("sound request failed",
			slog.String("action", action),
			slog.String("error", err.Error()))
	}
	return err
}
