package simulator

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/telephony"
)

// Dial реализует telephony.Client
func (s *Simulator) Dial(number string, slot telephony.SimSlot) error {
	if err := s.injected("Dial"); err != nil {
		return err
	}
	if number == "" {
		return telephony.ErrInvalidParameter
	}
	if s.opts.FlightMode {
		s.emitDialStatus(telephony.DialFailFlightMode)
		return nil
	}
	if s.active != nil && s.held != nil {
		return telephony.ErrInvalidState
	}
	if s.active != nil {
		s.active.state = telephony.CallStateHeld
		s.held = s.active
		s.active = nil
	}
	c := s.newCall(number, telephony.CallStateDialing)
	c.emergency = isEmergencyNumber(number)
	s.active = c

	s.logger.Info("outgoing call", slog.Int("call_id", int(c.id)), slog.Int("sim_slot", int(slot)))
	s.emitDialStatus(telephony.DialSuccess)
	s.emit(telephony.EventDialing, c.id)
	return nil
}

// End реализует telephony.Client
func (s *Simulator) End(callID uint32, release telephony.ReleaseType) error {
	if err := s.injected("End"); err != nil {
		return err
	}
	if !release.Valid() {
		return telephony.ErrInvalidParameter
	}

	var ended uint32
	switch release {
	case telephony.ReleaseByCallHandle:
		if !s.releaseByID(callID) {
			return telephony.ErrInvalidParameter
		}
		ended = callID
	case telephony.ReleaseAll:
		if s.active == nil && s.held == nil {
			return telephony.ErrInvalidState
		}
		ended = firstID(s.active, s.held)
		s.active, s.held = nil, nil
	case telephony.ReleaseAllHeld:
		if s.held == nil {
			return telephony.ErrInvalidState
		}
		ended = s.held.id
		s.held = nil
	case telephony.ReleaseAllActive:
		if s.active == nil {
			return telephony.ErrInvalidState
		}
		ended = s.active.id
		s.active = nil
	}
	s.emit(telephony.EventEnd, ended)
	return nil
}

// Hold реализует telephony.Client
func (s *Simulator) Hold() error {
	if err := s.injected("Hold"); err != nil {
		return err
	}
	if s.active == nil || s.held != nil {
		return telephony.ErrInvalidState
	}
	s.active.state = telephony.CallStateHeld
	s.held, s.active = s.active, nil
	s.emit(telephony.EventHeld, s.held.id)
	return nil
}

// Unhold реализует telephony.Client
func (s *Simulator) Unhold() error {
	if err := s.injected("Unhold"); err != nil {
		return err
	}
	if s.held == nil || s.active != nil {
		return telephony.ErrInvalidState
	}
	s.held.state = telephony.CallStateActive
	s.active, s.held = s.held, nil
	s.emit(telephony.EventRetrieved, s.active.id)
	return nil
}

// Swap реализует telephony.Client
func (s *Simulator) Swap() error {
	if err := s.injected("Swap"); err != nil {
		return err
	}
	if s.active == nil || s.held == nil {
		return telephony.ErrInvalidState
	}
	s.active, s.held = s.held, s.active
	s.active.state = telephony.CallStateActive
	s.held.state = telephony.CallStateHeld
	s.emit(telephony.EventSwapped, s.active.id)
	return nil
}

// Join реализует telephony.Client
func (s *Simulator) Join() error {
	if err := s.injected("Join"); err != nil {
		return err
	}
	if s.active == nil || s.held == nil {
		return telephony.ErrInvalidState
	}
	members := append(s.active.asMembers(), s.held.asMembers()...)
	s.active.members = members
	s.held = nil
	s.emit(telephony.EventJoin, s.active.id)
	return nil
}

// Split реализует telephony.Client
func (s *Simulator) Split(callID uint32) error {
	if err := s.injected("Split"); err != nil {
		return err
	}
	if s.active == nil || len(s.active.members) < 2 || s.held != nil {
		return telephony.ErrInvalidState
	}

	idx := -1
	for i, m := range s.active.members {
		if m.CallID == callID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return telephony.ErrInvalidParameter
	}

	picked := s.active.members[idx]
	rest := append([]telephony.ConferenceMember(nil), s.active.members[:idx]...)
	rest = append(rest, s.active.members[idx+1:]...)

	conf := s.active
	conf.state = telephony.CallStateHeld
	if len(rest) == 1 {
		conf.id = rest[0].CallID
		conf.number = rest[0].Number
		conf.personID = rest[0].PersonID
		conf.members = nil
	} else {
		if conf.id == picked.CallID {
			conf.id = rest[0].CallID
		}
		conf.members = rest
	}
	s.held = conf

	s.active = &call{
		id:       picked.CallID,
		state:    telephony.CallStateActive,
		number:   picked.Number,
		personID: picked.PersonID,
		start:    conf.start,
	}
	s.emit(telephony.EventSplit, picked.CallID)
	return nil
}

// Reject реализует telephony.Client
func (s *Simulator) Reject() error {
	if err := s.injected("Reject"); err != nil {
		return err
	}
	if s.incoming == nil {
		return telephony.ErrInvalidState
	}
	id := s.incoming.id
	s.incoming = nil
	s.emit(telephony.EventEnd, id)
	return nil
}

// StopAlert реализует telephony.Client
func (s *Simulator) StopAlert() error {
	if err := s.injected("StopAlert"); err != nil {
		return err
	}
	if s.incoming == nil {
		return telephony.ErrInvalidState
	}
	return nil
}

// Answer реализует telephony.Client
func (s *Simulator) Answer(answer telephony.AnswerType) error {
	if err := s.injected("Answer"); err != nil {
		return err
	}
	if !answer.Valid() {
		return telephony.ErrInvalidParameter
	}
	if s.incoming == nil {
		return telephony.ErrInvalidState
	}

	switch answer {
	case telephony.AnswerNormal:
		if s.active != nil {
			return telephony.ErrInvalidState
		}
	case telephony.AnswerHoldActiveAndAccept:
		if s.active == nil || s.held != nil {
			return telephony.ErrInvalidState
		}
		s.active.state = telephony.CallStateHeld
		s.held, s.active = s.active, nil
	case telephony.AnswerReleaseActiveAndAccept:
		if s.active == nil {
			return telephony.ErrInvalidState
		}
		s.active = nil
	case telephony.AnswerReleaseHeldAndAccept:
		if s.held == nil {
			return telephony.ErrInvalidState
		}
		s.held = nil
		if s.active != nil {
			s.active.state = telephony.CallStateHeld
			s.held, s.active = s.active, nil
		}
	case telephony.AnswerReleaseAllAndAccept:
		s.active, s.held = nil, nil
	}

	c := s.incoming
	s.incoming = nil
	c.state = telephony.CallStateActive
	c.start = s.opts.Uptime.Uptime()
	s.active = c
	s.emit(telephony.EventActive, c.id)
	return nil
}

func (s *Simulator) releaseByID(callID uint32) bool {
	for _, slot := range []**call{&s.incoming, &s.active, &s.held} {
		c := *slot
		if c == nil {
			continue
		}
		if c.id == callID && len(c.members) == 0 {
			*slot = nil
			return true
		}
		for i, m := range c.members {
			if m.CallID != callID {
				continue
			}
			c.members = append(c.members[:i], c.members[i+1:]...)
			if c.id == callID {
				c.id = c.members[0].CallID
			}
			if len(c.members) == 1 {
				c.number = c.members[0].Number
				c.personID = c.members[0].PersonID
				c.members = nil
			}
			return true
		}
		if c.id == callID {
			*slot = nil
			return true
		}
	}
	return false
}

func firstID(calls ...*call) uint32 {
	for _, c := range calls {
		if c != nil {
			return c.id
		}
	}
	return 0
}

func isEmergencyNumber(number string) bool {
	switch number {
	case "112", "911", "999", "000":
		return true
	}
	return false
}
