package simulator

import (
	"github.com/arzzra/call_ui/pkg/telephony"
)

// IncomingCall имитирует входящий вызов от сети. Если уже есть активный или
// удержанный вызов, приходит WAITING, иначе INCOMING.
func (s *Simulator) IncomingCall(number, name string, personID int) (uint32, error) {
	if s.incoming != nil {
		return 0, telephony.ErrInvalidState
	}
	c := s.newCall(number, telephony.CallStateIncoming)
	c.name = name
	c.personID = personID
	c.emergency = isEmergencyNumber(number)

	event := telephony.EventIncoming
	if s.active != nil || s.held != nil {
		c.state = telephony.CallStateWaiting
		event = telephony.EventWaiting
	}
	s.incoming = c
	s.emit(event, c.id)
	return c.id, nil
}

// RemoteAlert удаленная сторона начала звонить (dialing -> alert)
func (s *Simulator) RemoteAlert() error {
	if s.active == nil || s.active.state != telephony.CallStateDialing {
		return telephony.ErrInvalidState
	}
	s.active.state = telephony.CallStateAlert
	s.emit(telephony.EventAlert, s.active.id)
	return nil
}

// RemoteAnswer удаленная сторона ответила на исходящий вызов
func (s *Simulator) RemoteAnswer() error {
	if s.active == nil {
		return telephony.ErrInvalidState
	}
	if s.active.state != telephony.CallStateDialing && s.active.state != telephony.CallStateAlert {
		return telephony.ErrInvalidState
	}
	s.active.state = telephony.CallStateActive
	s.active.start = s.opts.Uptime.Uptime()
	s.emit(telephony.EventActive, s.active.id)
	return nil
}

// RemoteEnd удаленная сторона завершила вызов или участник покинул конференцию
func (s *Simulator) RemoteEnd(callID uint32) error {
	if !s.releaseByID(callID) {
		return telephony.ErrInvalidParameter
	}
	s.emit(telephony.EventEnd, callID)
	return nil
}
