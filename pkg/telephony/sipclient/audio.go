package sipclient

import (
	"github.com/arzzra/call_ui/pkg/telephony"
)

// AudioRoute реализует telephony.AudioClient. Маршрут хранится локально,
// медиа движок читает его сам.
func (c *Client) AudioRoute() (telephony.AudioRoute, error) {
	return c.route, nil
}

// IsMuted реализует telephony.AudioClient
func (c *Client) IsMuted() (bool, error) {
	return c.muted, nil
}

// SetSpeaker реализует telephony.AudioClient
func (c *Client) SetSpeaker(on bool) error {
	route := telephony.AudioRouteReceiver
	if on {
		route = telephony.AudioRouteSpeaker
	}
	c.changeRoute(route)
	return nil
}

// SetBluetooth реализует telephony.AudioClient. Bluetooth гарнитур у
// программного телефона нет.
func (c *Client) SetBluetooth(on bool) error {
	if on {
		return telephony.ErrNotSupported
	}
	c.changeRoute(telephony.AudioRouteReceiver)
	return nil
}

// SetMute реализует telephony.AudioClient
func (c *Client) SetMute(on bool) error {
	if c.muted == on {
		return nil
	}
	c.muted = on
	c.post(func() {
		if c.muteHandler != nil {
			c.muteHandler(on)
		}
	})
	return nil
}

func (c *Client) changeRoute(route telephony.AudioRoute) {
	if c.route == route {
		return
	}
	c.route = route
	c.post(func() {
		if c.routeHandler != nil {
			c.routeHandler(route)
		}
	})
}

// SetAudioRouteHandler реализует telephony.AudioClient
func (c *Client) SetAudioRouteHandler(handler func(route telephony.AudioRoute)) {
	c.routeHandler = handler
}

// SetMuteHandler реализует telephony.AudioClient
func (c *Client) SetMuteHandler(handler func(muted bool)) {
	c.muteHandler = handler
}
