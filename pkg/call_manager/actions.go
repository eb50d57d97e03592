package call_manager

import (
	"log/slog"
	"strings"

	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/pkg/errors"
)

// Dial начинает исходящий вызов. Итог придет через обработчик статуса набора.
func (m *Manager) Dial(number string, slot telephony.SimSlot) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return result.New(result.InvalidParam, "call_manager.Dial", "empty number")
	}
	if slot < telephony.SimSlotDefault || slot > telephony.SimSlot2 {
		return result.Newf(result.InvalidParam, "call_manager.Dial", "unknown sim slot %d", slot)
	}
	m.logger.Info("dial", slog.Int("sim_slot", int(slot)))
	return m.finish("dial", m.client.Dial(number, slot))
}

// End завершает вызовы согласно release. При успехе слушатели завершения
// вызываются синхронно до возврата из End.
func (m *Manager) End(callID uint32, release telephony.ReleaseType) error {
	if !release.Valid() {
		return result.Newf(result.InvalidParam, "call_manager.End", "unknown release type %d", release)
	}
	if release == telephony.ReleaseByCallHandle && callID == 0 {
		return result.New(result.InvalidParam, "call_manager.End", "call handle required")
	}

	if err := m.finish("end", m.client.End(callID, release)); err != nil {
		return err
	}

	if err := m.endCalled.Dispatch(func(h EndCallHandler, userData any) {
		h(callID, release, userData)
	}); err != nil {
		m.logger.Warn("end call dispatch failed", slog.String("error", err.Error()))
	}
	return nil
}

// Hold ставит активный вызов на удержание
func (m *Manager) Hold() error {
	return m.finish("hold", m.client.Hold())
}

// Unhold снимает вызов с удержания
func (m *Manager) Unhold() error {
	return m.finish("unhold", m.client.Unhold())
}

// Swap меняет местами активный и удержанный вызовы
func (m *Manager) Swap() error {
	return m.finish("swap", m.client.Swap())
}

// Join объединяет активный и удержанный вызовы в конференцию
func (m *Manager) Join() error {
	return m.finish("join", m.client.Join())
}

// Split выделяет участника конференции в отдельный вызов
func (m *Manager) Split(callID uint32) error {
	if callID == 0 {
		return result.New(result.InvalidParam, "call_manager.Split", "call handle required")
	}
	return m.finish("split", m.client.Split(callID))
}

// Reject отклоняет входящий вызов
func (m *Manager) Reject() error {
	return m.finish("reject", m.client.Reject())
}

// StopAlert выключает сигнал входящего вызова
func (m *Manager) StopAlert() error {
	return m.finish("stop_alert", m.client.StopAlert())
}

// Answer принимает входящий вызов
func (m *Manager) Answer(answer telephony.AnswerType) error {
	if !answer.Valid() {
		return result.Newf(result.InvalidParam, "call_manager.Answer", "unknown answer type %d", answer)
	}
	return m.finish("answer", m.client.Answer(answer))
}

// AllCallData возвращает снимки входящего, активного и удержанного вызовов
func (m *Manager) AllCallData() (incoming, active, held *telephony.CallData, err error) {
	incoming, active, held, err = m.client.AllCallData()
	if err != nil {
		return nil, nil, nil, errors.Wrap(result.FromPlatform(err, "call_manager.AllCallData"), "fetch call data")
	}
	return incoming, active, held, nil
}

// CallData возвращает снимок вызова одной категории или nil
func (m *Manager) CallData(category Category) (*telephony.CallData, error) {
	if !category.Valid() {
		return nil, result.Newf(result.InvalidParam, "call_manager.CallData", "unknown category %d", category)
	}
	incoming, active, held, err := m.AllCallData()
	if err != nil {
		return nil, err
	}
	switch category {
	case CategoryIncoming:
		return incoming, nil
	case CategoryActive:
		return active, nil
	default:
		return held, nil
	}
}

// ConferenceMembers запрашивает у платформы список участников конференции
func (m *Manager) ConferenceMembers() ([]telephony.ConferenceMember, error) {
	members, err := m.client.ConferenceMembers()
	if err != nil {
		return nil, errors.Wrap(result.FromPlatform(err, "call_manager.ConferenceMembers"), "fetch conference")
	}
	return members, nil
}
