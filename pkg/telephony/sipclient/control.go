package sipclient

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/emiago/sipgo/sip"
	"github.com/pkg/errors"
)

// Dial реализует telephony.Client. Активный вызов уходит на удержание.
func (c *Client) Dial(number string, slot telephony.SimSlot) error {
	if number == "" {
		return telephony.ErrInvalidParameter
	}
	if c.active != nil && c.held != nil {
		return telephony.ErrInvalidState
	}
	if c.active != nil && !c.active.confirmed() {
		return telephony.ErrInvalidState
	}
	target, ok := targetURI(number, c.opts.Domain)
	if !ok {
		c.logger.Warn("cannot build target uri", slog.String("number", number))
		return telephony.ErrInvalidParameter
	}

	d := newClientDialog(c.local, c.opts.DisplayName, target, c.contact, c.opts.Proxy)
	body, err := sessionDescription(d, c.opts.MediaAddr, c.opts.MediaPort, dirSendRecv)
	if err != nil {
		return errors.Wrap(telephony.ErrOperationFailed, err.Error())
	}
	req := d.inviteWithSDP(body)

	callID := d.callID
	err = c.wire.Send(req,
		func(res *sip.Response) { c.post(func() { c.onInviteResponse(callID, req, res) }) },
		func(err error) { c.post(func() { c.onInviteError(callID, err) }) },
	)
	if err != nil {
		c.logger.Error("invite failed", slog.String("number", number), slog.String("error", err.Error()))
		c.emitDialStatus(telephony.DialFail)
		return nil
	}

	if c.active != nil {
		c.reinvite(c.active, dirSendOnly)
		c.active.state = telephony.CallStateHeld
		c.held, c.active = c.active, nil
	}
	cl := c.newCall(number, telephony.CallStateDialing, d)
	c.active = cl

	c.logger.Info("outgoing call",
		slog.Int("call_id", int(cl.id)),
		slog.Int("sim_slot", int(slot)),
		slog.String("target", target.String()))
	c.emitDialStatus(telephony.DialSuccess)
	c.emit(telephony.EventDialing, cl.id)
	return nil
}

// End реализует telephony.Client
func (c *Client) End(callID uint32, release telephony.ReleaseType) error {
	if !release.Valid() {
		return telephony.ErrInvalidParameter
	}

	var targets []*call
	switch release {
	case telephony.ReleaseByCallHandle:
		for _, cl := range []*call{c.incoming, c.active, c.held} {
			if cl != nil && cl.id == callID {
				targets = append(targets, cl)
			}
		}
		if len(targets) == 0 {
			return telephony.ErrInvalidParameter
		}
	case telephony.ReleaseAll:
		if c.active == nil && c.held == nil {
			return telephony.ErrInvalidState
		}
		for _, cl := range []*call{c.active, c.held} {
			if cl != nil {
				targets = append(targets, cl)
			}
		}
	case telephony.ReleaseAllHeld:
		if c.held == nil {
			return telephony.ErrInvalidState
		}
		targets = append(targets, c.held)
	case telephony.ReleaseAllActive:
		if c.active == nil {
			return telephony.ErrInvalidState
		}
		targets = append(targets, c.active)
	}

	for _, cl := range targets {
		c.terminate(cl)
	}
	c.emit(telephony.EventEnd, targets[0].id)
	return nil
}

// terminate завершает вызов в сети способом, который подходит его состоянию,
// и убирает его из ячеек
func (c *Client) terminate(cl *call) {
	switch cl.state {
	case telephony.CallStateIncoming, telephony.CallStateWaiting:
		c.respondInvite(cl, statusBusyHere, "Busy Here", nil)
	case telephony.CallStateDialing, telephony.CallStateAlert:
		if err := c.wire.Write(cl.dlg.cancel(), true); err != nil {
			c.logger.Warn("cancel failed", slog.Int("call_id", int(cl.id)), slog.String("error", err.Error()))
		}
	default:
		c.bye(cl.dlg)
	}
	c.drop(cl)
}

func (c *Client) bye(d *dialog) {
	req := d.request(sip.BYE)
	err := c.wire.Send(req,
		func(res *sip.Response) {
			if res.StatusCode >= 300 {
				c.logger.Warn("bye rejected", slog.String("sip_call_id", d.callID), slog.Int("status", int(res.StatusCode)))
			}
		},
		func(err error) {
			c.logger.Warn("bye failed", slog.String("sip_call_id", d.callID), slog.String("error", err.Error()))
		},
	)
	if err != nil {
		c.logger.Warn("bye failed", slog.String("sip_call_id", d.callID), slog.String("error", err.Error()))
	}
}

// reinvite меняет направление медиа в установленном диалоге. Ошибка сети
// только журналируется, локальное состояние вызова уже изменено.
func (c *Client) reinvite(cl *call, dir string) {
	d := cl.dlg
	body, err := sessionDescription(d, c.opts.MediaAddr, c.opts.MediaPort, dir)
	if err != nil {
		c.logger.Error("build re-invite sdp", slog.Int("call_id", int(cl.id)), slog.String("error", err.Error()))
		return
	}
	req := d.inviteWithSDP(body)
	err = c.wire.Send(req,
		func(res *sip.Response) { c.post(func() { c.onReinviteResponse(d, req, res) }) },
		func(err error) {
			c.logger.Warn("re-invite failed", slog.String("sip_call_id", d.callID), slog.String("error", err.Error()))
		},
	)
	if err != nil {
		c.logger.Warn("re-invite failed", slog.String("sip_call_id", d.callID), slog.String("error", err.Error()))
	}
}

// Hold реализует telephony.Client
func (c *Client) Hold() error {
	if c.active == nil || c.held != nil || !c.active.confirmed() {
		return telephony.ErrInvalidState
	}
	c.reinvite(c.active, dirSendOnly)
	c.active.state = telephony.CallStateHeld
	c.held, c.active = c.active, nil
	c.emit(telephony.EventHeld, c.held.id)
	return nil
}

// Unhold реализует telephony.Client
func (c *Client) Unhold() error {
	if c.held == nil || c.active != nil {
		return telephony.ErrInvalidState
	}
	c.reinvite(c.held, dirSendRecv)
	c.held.state = telephony.CallStateActive
	c.active, c.held = c.held, nil
	c.emit(telephony.EventRetrieved, c.active.id)
	return nil
}

// Swap реализует telephony.Client
func (c *Client) Swap() error {
	if c.active == nil || c.held == nil || !c.active.confirmed() {
		return telephony.ErrInvalidState
	}
	c.reinvite(c.active, dirSendOnly)
	c.reinvite(c.held, dirSendRecv)
	c.active, c.held = c.held, c.active
	c.active.state = telephony.CallStateActive
	c.held.state = telephony.CallStateHeld
	c.emit(telephony.EventSwapped, c.active.id)
	return nil
}

// Join реализует telephony.Client. Локального микшера нет.
func (c *Client) Join() error {
	return telephony.ErrNotSupported
}

// Split реализует telephony.Client
func (c *Client) Split(callID uint32) error {
	return telephony.ErrNotSupported
}

// Reject реализует telephony.Client: 486 Busy Here на входящий INVITE
func (c *Client) Reject() error {
	if c.incoming == nil {
		return telephony.ErrInvalidState
	}
	cl := c.incoming
	c.terminate(cl)
	c.emit(telephony.EventEnd, cl.id)
	return nil
}

// StopAlert реализует telephony.Client. Вызывной сигнал играет клиент
// отрисовки, сеть об этом не знает.
func (c *Client) StopAlert() error {
	if c.incoming == nil {
		return telephony.ErrInvalidState
	}
	return nil
}

// Answer реализует telephony.Client
func (c *Client) Answer(answer telephony.AnswerType) error {
	if !answer.Valid() {
		return telephony.ErrInvalidParameter
	}
	if c.incoming == nil {
		return telephony.ErrInvalidState
	}
	switch answer {
	case telephony.AnswerNormal:
		if c.active != nil {
			return telephony.ErrInvalidState
		}
	case telephony.AnswerHoldActiveAndAccept:
		if c.active == nil || c.held != nil || !c.active.confirmed() {
			return telephony.ErrInvalidState
		}
	case telephony.AnswerReleaseActiveAndAccept:
		if c.active == nil {
			return telephony.ErrInvalidState
		}
	case telephony.AnswerReleaseHeldAndAccept:
		if c.held == nil {
			return telephony.ErrInvalidState
		}
		if c.active != nil && !c.active.confirmed() {
			return telephony.ErrInvalidState
		}
	}

	cl := c.incoming
	dir := dirSendRecv
	if offer := cl.dlg.invite.Body(); len(offer) > 0 {
		if d, err := mediaDirection(offer); err == nil {
			dir = answerDirection(d)
		}
	}
	body, err := sessionDescription(cl.dlg, c.opts.MediaAddr, c.opts.MediaPort, dir)
	if err != nil {
		return errors.Wrap(telephony.ErrOperationFailed, err.Error())
	}
	if err := c.respondInvite(cl, int(sip.StatusOK), "OK", body); err != nil {
		c.drop(cl)
		c.emit(telephony.EventEnd, cl.id)
		return errors.Wrap(telephony.ErrOperationFailed, err.Error())
	}

	switch answer {
	case telephony.AnswerHoldActiveAndAccept:
		c.reinvite(c.active, dirSendOnly)
		c.active.state = telephony.CallStateHeld
		c.held, c.active = c.active, nil
	case telephony.AnswerReleaseActiveAndAccept:
		c.terminate(c.active)
	case telephony.AnswerReleaseHeldAndAccept:
		c.terminate(c.held)
		if c.active != nil {
			c.reinvite(c.active, dirSendOnly)
			c.active.state = telephony.CallStateHeld
			c.held, c.active = c.active, nil
		}
	case telephony.AnswerReleaseAllAndAccept:
		for _, other := range []*call{c.active, c.held} {
			if other != nil {
				c.terminate(other)
			}
		}
	}

	c.incoming = nil
	cl.state = telephony.CallStateActive
	cl.start = c.opts.Uptime.Uptime()
	c.active = cl
	c.emit(telephony.EventActive, cl.id)
	return nil
}

// respondInvite финальный или предварительный ответ на входящий INVITE
func (c *Client) respondInvite(cl *call, code int, reason string, body []byte) error {
	d := cl.dlg
	if d.tx == nil {
		return errors.New("invite transaction is gone")
	}
	err := d.tx.Respond(d.response(d.invite, code, reason, body))
	if err != nil {
		c.logger.Warn("respond to invite",
			slog.Int("call_id", int(cl.id)),
			slog.Int("status", code),
			slog.String("error", err.Error()))
	}
	if code >= 200 {
		d.tx = nil
	}
	return err
}
