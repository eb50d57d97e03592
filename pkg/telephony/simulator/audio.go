package simulator

import (
	"github.com/arzzra/call_ui/pkg/telephony"
)

// AudioRoute реализует telephony.AudioClient
func (s *Simulator) AudioRoute() (telephony.AudioRoute, error) {
	if err := s.injected("AudioRoute"); err != nil {
		return telephony.AudioRouteNone, err
	}
	return s.route, nil
}

// IsMuted реализует telephony.AudioClient
func (s *Simulator) IsMuted() (bool, error) {
	if err := s.injected("IsMuted"); err != nil {
		return false, err
	}
	return s.muted, nil
}

// SetSpeaker реализует telephony.AudioClient. Новый маршрут подтверждается
// асинхронно через обработчик маршрута.
func (s *Simulator) SetSpeaker(on bool) error {
	if err := s.injected("SetSpeaker"); err != nil {
		return err
	}
	route := telephony.AudioRouteReceiver
	if on {
		route = telephony.AudioRouteSpeaker
	}
	s.changeRoute(route)
	return nil
}

// SetBluetooth реализует telephony.AudioClient
func (s *Simulator) SetBluetooth(on bool) error {
	if err := s.injected("SetBluetooth"); err != nil {
		return err
	}
	route := telephony.AudioRouteReceiver
	if on {
		route = telephony.AudioRouteBluetooth
	}
	s.changeRoute(route)
	return nil
}

// SetMute реализует telephony.AudioClient
func (s *Simulator) SetMute(on bool) error {
	if err := s.injected("SetMute"); err != nil {
		return err
	}
	if s.muted == on {
		return nil
	}
	s.muted = on
	s.post(func() {
		if s.muteHandler != nil {
			s.muteHandler(on)
		}
	})
	return nil
}

// PlugEarjack имитирует подключение или отключение гарнитуры
func (s *Simulator) PlugEarjack(plugged bool) {
	route := telephony.AudioRouteReceiver
	if plugged {
		route = telephony.AudioRouteEarjack
	}
	s.changeRoute(route)
}

// SetAudioRouteHandler реализует telephony.AudioClient
func (s *Simulator) SetAudioRouteHandler(handler func(route telephony.AudioRoute)) {
	s.routeHandler = handler
}

// SetMuteHandler реализует telephony.AudioClient
func (s *Simulator) SetMuteHandler(handler func(muted bool)) {
	s.muteHandler = handler
}

func (s *Simulator) changeRoute(route telephony.AudioRoute) {
	if s.route == route {
		return
	}
	s.route = route
	s.post(func() {
		if s.routeHandler != nil {
			s.routeHandler(route)
		}
	})
}
