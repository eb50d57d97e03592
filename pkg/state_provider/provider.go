// Package state_provider превращает платформенные события вызовов в
// нормализованную модель: не более одного входящего, одного активного и одного
// удержанного вызова, плюс последний завершенный вызов для экрана завершения.
//
// После каждого успешного обновления снимка провайдер рассылает событие
// {тип, id вызова, слот SIM}; подписчики затем читают данные через запросы.
package state_provider

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/listeners"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/uptime"
	"github.com/pkg/errors"
)

// CallSource источник платформенных данных, реализуется call_manager.Manager
type CallSource interface {
	AllCallData() (incoming, active, held *telephony.CallData, err error)
	ConferenceMembers() ([]telephony.ConferenceMember, error)
	AddCallEventHandler(h call_manager.CallEventHandler, userData any) error
	RemoveCallEventHandler(h call_manager.CallEventHandler, userData any) error
}

// ContactResolver поиск контакта в адресной книге.
// Отсутствие контакта - не ошибка, а пустой ContactSnippet.
type ContactResolver interface {
	ResolveContact(personID int, number string) (ContactSnippet, error)
}

// StateEvent нормализованное событие изменения состояния вызовов
type StateEvent struct {
	Type    telephony.EventType
	CallID  uint32
	SimSlot telephony.SimSlot
}

// StateEventHandler обработчик изменения состояния вызовов
type StateEventHandler func(event StateEvent, userData any)

// Config конфигурация провайдера
type Config struct {
	Source   CallSource
	Contacts ContactResolver
	Uptime   uptime.Source
	Logger   *slog.Logger
}

// Provider владелец снимка состояния вызовов
type Provider struct {
	source   CallSource
	contacts ContactResolver
	uptime   uptime.Source
	logger   *slog.Logger

	slots     [3]*Record
	lastEnded *Record

	stateEvents *listeners.Collection[StateEventHandler]
}

// New создает провайдер и подписывается на события источника
func New(cfg Config) (*Provider, error) {
	if cfg.Source == nil {
		return nil, result.New(result.InvalidParam, "state_provider.New", "source is nil")
	}
	if cfg.Uptime == nil {
		cfg.Uptime = uptime.System()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Provider{
		source:      cfg.Source,
		contacts:    cfg.Contacts,
		uptime:      cfg.Uptime,
		logger:      logger.With(slog.String("component", "state_provider")),
		stateEvents: listeners.New[StateEventHandler](),
	}

	if err := p.source.AddCallEventHandler(p.onCallEvent, p); err != nil {
		return nil, errors.Wrap(err, "subscribe to call events")
	}

	// Начальный снимок: приложение может быть запущено посреди вызова
	if err := p.refresh(); err != nil {
		p.logger.Warn("initial snapshot failed", slog.String("error", err.Error()))
	}
	return p, nil
}

// Close отписывается от источника и освобождает слушателей
func (p *Provider) Close() {
	_ = p.source.RemoveCallEventHandler(p.onCallEvent, p)
	_ = p.stateEvents.Deinit()
	p.slots = [3]*Record{}
	p.lastEnded = nil
}

// AddCallStateEventHandler регистрирует обработчик изменения состояния
func (p *Provider) AddCallStateEventHandler(h StateEventHandler, userData any) error {
	return p.stateEvents.Add(h, userData)
}

// RemoveCallStateEventHandler удаляет обработчик изменения состояния
func (p *Provider) RemoveCallStateEventHandler(h StateEventHandler, userData any) error {
	return p.stateEvents.Remove(h, userData)
}

func (p *Provider) onCallEvent(event telephony.EventType, data *telephony.EventData, _ any) {
	if !event.Valid() {
		p.logger.Warn("unknown call event", slog.Int("event", int(event)))
		return
	}
	if data == nil {
		data = &telephony.EventData{}
	}

	if event == telephony.EventEnd && !data.HasCalls() {
		last := p.slots[call_manager.CategoryActive]
		if last == nil {
			last = p.slots[call_manager.CategoryHeld]
		}
		p.slots = [3]*Record{}
		p.lastEnded = last
		p.publish(event, data)
		return
	}

	if err := p.refresh(); err != nil {
		p.logger.Error("snapshot update discarded",
			slog.String("event", event.String()),
			slog.Int("call_id", int(data.CallID)),
			slog.String("error", err.Error()))
		return
	}
	p.publish(event, data)
}

// refresh заново читает все три вызова и заменяет ячейки целиком.
// При любой ошибке старый снимок остается нетронутым.
func (p *Provider) refresh() error {
	incoming, active, held, err := p.source.AllCallData()
	if err != nil {
		return err
	}

	var next [3]*Record
	for cat, data := range map[call_manager.Category]*telephony.CallData{
		call_manager.CategoryIncoming: incoming,
		call_manager.CategoryActive:   active,
		call_manager.CategoryHeld:     held,
	} {
		if data == nil {
			continue
		}
		rec, err := p.buildRecord(cat, data)
		if err != nil {
			return errors.Wrapf(err, "build %s record", cat)
		}
		next[cat] = rec
	}

	p.slots = next
	p.lastEnded = nil
	return nil
}

func (p *Provider) buildRecord(cat call_manager.Category, data *telephony.CallData) (*Record, error) {
	if data.CallID == 0 {
		return nil, result.New(result.InvalidParam, "state_provider.buildRecord", "call handle is zero")
	}
	contact, err := p.resolve(data.PersonID, data.Number, data.CallingName)
	if err != nil {
		return nil, err
	}
	members := data.MemberCount
	if members < 1 {
		members = 1
	}
	return &Record{
		CallID:        data.CallID,
		Category:      cat,
		Number:        data.Number,
		DisplayNumber: formatNumber(data.Number),
		StartTime:     data.StartTime,
		Emergency:     data.Emergency,
		Dialing:       isDialingState(data.State),
		MemberCount:   members,
		Contact:       contact,
	}, nil
}

func (p *Provider) resolve(personID int, number, callingName string) (ContactSnippet, error) {
	snippet := ContactSnippet{PersonID: personID}
	if p.contacts != nil {
		found, err := p.contacts.ResolveContact(personID, number)
		if err != nil {
			return ContactSnippet{}, errors.Wrap(err, "resolve contact")
		}
		snippet = found
		if snippet.PersonID == 0 {
			snippet.PersonID = personID
		}
	}
	if snippet.Name == "" {
		snippet.Name = callingName
	}
	return snippet, nil
}

func (p *Provider) publish(event telephony.EventType, data *telephony.EventData) {
	ev := StateEvent{Type: event, CallID: data.CallID, SimSlot: data.SimSlot}
	p.logger.Debug("call state changed",
		slog.String("event", event.String()),
		slog.Int("call_id", int(data.CallID)),
		slog.Bool("incoming", p.slots[call_manager.CategoryIncoming] != nil),
		slog.Bool("active", p.slots[call_manager.CategoryActive] != nil),
		slog.Bool("held", p.slots[call_manager.CategoryHeld] != nil))
	if err := p.stateEvents.Dispatch(func(h StateEventHandler, userData any) {
		h(ev, userData)
	}); err != nil {
		p.logger.Warn("state event dispatch failed", slog.String("error", err.Error()))
	}
}
