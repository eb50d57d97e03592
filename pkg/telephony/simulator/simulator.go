// Package simulator реализует платформенный клиент телефонии в памяти.
//
// Симулятор нужен исполняемому файлу для работы без модема и тестам для
// воспроизводимых сценариев. Результаты действий доставляются асинхронно
// через функцию Post, как это делает настоящая платформа.
package simulator

import (
	"log/slog"
	"time"

	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/uptime"
)

var (
	_ telephony.Client      = (*Simulator)(nil)
	_ telephony.AudioClient = (*Simulator)(nil)
)

// Options настройки симулятора
type Options struct {
	// Post ставит доставку события в цикл событий. nil - доставка синхронная.
	Post func(func())
	// Uptime источник времени начала вызовов
	Uptime uptime.Source
	// FlightMode все исходящие вызовы завершаются статусом flight mode
	FlightMode bool
	// Logger логгер, по умолчанию slog.Default()
	Logger *slog.Logger
}

type call struct {
	id        uint32
	state     telephony.CallState
	number    string
	name      string
	personID  int
	start     time.Duration
	emergency bool
	members   []telephony.ConferenceMember
}

// Simulator платформа телефонии в памяти.
// Методы вызываются только из цикла событий.
type Simulator struct {
	opts   Options
	logger *slog.Logger
	nextID uint32

	incoming *call
	active   *call
	held     *call

	route telephony.AudioRoute
	muted bool

	failures map[string]error

	eventHandler telephony.CallEventHandler
	dialHandler  telephony.DialStatusHandler
	routeHandler func(telephony.AudioRoute)
	muteHandler  func(bool)
}

// New создает симулятор
func New(opts Options) *Simulator {
	if opts.Uptime == nil {
		opts.Uptime = uptime.System()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		opts:     opts,
		logger:   logger.With(slog.String("component", "simulator")),
		nextID:   1,
		route:    telephony.AudioRouteReceiver,
		failures: make(map[string]error),
	}
}

// FailNext заставляет следующий вызов операции op вернуть err.
// op - имя метода клиента, например "Dial" или "End".
func (s *Simulator) FailNext(op string, err error) {
	s.failures[op] = err
}

// SetFlightMode включает или выключает режим полета
func (s *Simulator) SetFlightMode(on bool) {
	s.opts.FlightMode = on
}

func (s *Simulator) injected(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

func (s *Simulator) post(fn func()) {
	if s.opts.Post == nil {
		fn()
		return
	}
	s.opts.Post(fn)
}

func (s *Simulator) newCall(number string, state telephony.CallState) *call {
	c := &call{
		id:     s.nextID,
		state:  state,
		number: number,
		start:  s.opts.Uptime.Uptime(),
	}
	s.nextID++
	return c
}

func (c *call) memberCount() int {
	if len(c.members) > 1 {
		return len(c.members)
	}
	return 1
}

func (c *call) snapshot() *telephony.CallData {
	if c == nil {
		return nil
	}
	return &telephony.CallData{
		CallID:      c.id,
		State:       c.state,
		Number:      c.number,
		CallingName: c.name,
		PersonID:    c.personID,
		StartTime:   c.start,
		Emergency:   c.emergency,
		MemberCount: c.memberCount(),
	}
}

func (c *call) asMembers() []telephony.ConferenceMember {
	if len(c.members) > 0 {
		out := make([]telephony.ConferenceMember, len(c.members))
		copy(out, c.members)
		return out
	}
	return []telephony.ConferenceMember{{CallID: c.id, Number: c.number, PersonID: c.personID}}
}

func (s *Simulator) emit(event telephony.EventType, callID uint32) {
	data := &telephony.EventData{
		CallID:   callID,
		SimSlot:  telephony.SimSlot1,
		Incoming: s.incoming.snapshot(),
		Active:   s.active.snapshot(),
		Held:     s.held.snapshot(),
	}
	s.logger.Debug("emit call event",
		slog.String("event", event.String()),
		slog.Int("call_id", int(callID)))
	s.post(func() {
		if s.eventHandler != nil {
			s.eventHandler(event, data)
		}
	})
}

func (s *Simulator) emitDialStatus(status telephony.DialStatus) {
	s.post(func() {
		if s.dialHandler != nil {
			s.dialHandler(status)
		}
	})
}

// SetCallEventHandler реализует telephony.Client
func (s *Simulator) SetCallEventHandler(handler telephony.CallEventHandler) {
	s.eventHandler = handler
}

// SetDialStatusHandler реализует telephony.Client
func (s *Simulator) SetDialStatusHandler(handler telephony.DialStatusHandler) {
	s.dialHandler = handler
}

// AllCallData реализует telephony.Client
func (s *Simulator) AllCallData() (incoming, active, held *telephony.CallData, err error) {
	if err := s.injected("AllCallData"); err != nil {
		return nil, nil, nil, err
	}
	return s.incoming.snapshot(), s.active.snapshot(), s.held.snapshot(), nil
}

// ConferenceMembers реализует telephony.Client
func (s *Simulator) ConferenceMembers() ([]telephony.ConferenceMember, error) {
	if err := s.injected("ConferenceMembers"); err != nil {
		return nil, err
	}
	switch {
	case s.active != nil && len(s.active.members) > 1:
		return s.active.asMembers(), nil
	case s.held != nil && len(s.held.members) > 1:
		return s.held.asMembers(), nil
	}
	return nil, nil
}
