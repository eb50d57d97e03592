package sipclient

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/emiago/sipgo/sip"
)

// handleInvite обработчик sipgo. Для нового вызова горутина ждет конца
// транзакции: если к этому времени ответа не было, вызов отменен сетью.
func (c *Client) handleInvite(req *sip.Request, tx sip.ServerTransaction) {
	c.post(func() { c.onInvite(req, tx) })
	callID := callIDOf(req)
	if callID == "" || toTag(req) != "" {
		return
	}
	<-tx.Done()
	c.post(func() { c.onInviteDone(callID, tx) })
}

func (c *Client) handleAck(req *sip.Request, _ sip.ServerTransaction) {
	c.logger.Debug("ack received", slog.String("sip_call_id", callIDOf(req)))
}

func (c *Client) handleBye(req *sip.Request, tx sip.ServerTransaction) {
	c.post(func() { c.onBye(req, tx) })
}

func (c *Client) handleCancel(req *sip.Request, tx sip.ServerTransaction) {
	c.post(func() { c.onCancel(req, tx) })
}

func (c *Client) handleOptions(req *sip.Request, tx sip.ServerTransaction) {
	if err := tx.Respond(sip.NewResponseFromRequest(req, sip.StatusOK, "OK", nil)); err != nil {
		c.logger.Warn("respond to options", slog.String("error", err.Error()))
	}
}

func (c *Client) reply(tx responder, req *sip.Request, code int, reason string) {
	if err := tx.Respond(sip.NewResponseFromRequest(req, sip.StatusCode(code), reason, nil)); err != nil {
		c.logger.Warn("respond failed",
			slog.String("method", string(req.Method)),
			slog.Int("status", code),
			slog.String("error", err.Error()))
	}
}

// onInvite новый входящий вызов или re-INVITE в существующем диалоге
func (c *Client) onInvite(req *sip.Request, tx responder) {
	callID := callIDOf(req)
	if callID == "" || req.From() == nil || req.To() == nil {
		c.reply(tx, req, int(sip.StatusBadRequest), "Missing dialog headers")
		return
	}
	if toTag(req) != "" {
		c.onReinvite(req, tx)
		return
	}
	if c.lookup(callID) != nil {
		c.reply(tx, req, int(sip.StatusLoopDetected), "Loop Detected")
		return
	}
	if c.incoming != nil || (c.active != nil && c.held != nil) {
		c.reply(tx, req, statusBusyHere, "Busy Here")
		return
	}

	d := newServerDialog(req, c.contact, c.opts.Proxy)
	d.tx = tx
	from := req.From()
	cl := c.newCall(from.Address.User, telephony.CallStateIncoming, d)
	cl.name = from.DisplayName

	event := telephony.EventIncoming
	if c.active != nil || c.held != nil {
		cl.state = telephony.CallStateWaiting
		event = telephony.EventWaiting
	}
	c.incoming = cl
	_ = c.respondInvite(cl, statusRinging, "Ringing", nil)

	c.logger.Info("incoming call",
		slog.Int("call_id", int(cl.id)),
		slog.String("number", cl.number),
		slog.String("sip_call_id", callID))
	c.emit(event, cl.id)
}

// onInviteDone транзакция входящего INVITE закончилась. Если вызов все еще
// ждет ответа, удаленная сторона его отменила.
func (c *Client) onInviteDone(callID string, tx responder) {
	cl := c.lookup(callID)
	if cl == nil || cl != c.incoming || cl.dlg.tx != tx {
		return
	}
	cl.dlg.tx = nil
	c.drop(cl)
	c.logger.Info("incoming call cancelled", slog.Int("call_id", int(cl.id)))
	c.emit(telephony.EventEnd, cl.id)
}

func (c *Client) onReinvite(req *sip.Request, tx responder) {
	cl := c.lookup(callIDOf(req))
	if cl == nil || !cl.confirmed() {
		c.reply(tx, req, int(sip.StatusCallTransactionDoesNotExists), "Call/Transaction Does Not Exist")
		return
	}
	dir := dirSendRecv
	if body := req.Body(); len(body) > 0 {
		offer, err := mediaDirection(body)
		if err != nil {
			c.reply(tx, req, int(sip.StatusBadRequest), "Bad SDP")
			return
		}
		dir = answerDirection(offer)
	}
	// удержанный у нас вызов не начинает передачу
	if cl.state == telephony.CallStateHeld && dir == dirSendRecv {
		dir = dirSendOnly
	}
	answer, err := sessionDescription(cl.dlg, c.opts.MediaAddr, c.opts.MediaPort, dir)
	if err != nil {
		c.reply(tx, req, statusServerError, "Internal Server Error")
		return
	}
	if err := tx.Respond(cl.dlg.response(req, int(sip.StatusOK), "OK", answer)); err != nil {
		c.logger.Warn("respond to re-invite", slog.Int("call_id", int(cl.id)), slog.String("error", err.Error()))
	}
	c.logger.Debug("re-invite answered", slog.Int("call_id", int(cl.id)), slog.String("direction", dir))
}

func (c *Client) onBye(req *sip.Request, tx responder) {
	cl := c.lookup(callIDOf(req))
	if cl == nil {
		c.reply(tx, req, int(sip.StatusCallTransactionDoesNotExists), "Call/Transaction Does Not Exist")
		return
	}
	c.reply(tx, req, int(sip.StatusOK), "OK")
	c.drop(cl)
	c.logger.Info("remote hangup", slog.Int("call_id", int(cl.id)))
	c.emit(telephony.EventEnd, cl.id)
}

func (c *Client) onCancel(req *sip.Request, tx responder) {
	cl := c.lookup(callIDOf(req))
	if cl == nil || cl != c.incoming {
		c.reply(tx, req, int(sip.StatusCallTransactionDoesNotExists), "Call/Transaction Does Not Exist")
		return
	}
	c.reply(tx, req, int(sip.StatusOK), "OK")
	_ = c.respondInvite(cl, int(sip.StatusRequestTerminated), "Request Terminated", nil)
	c.drop(cl)
	c.logger.Info("incoming call cancelled", slog.Int("call_id", int(cl.id)))
	c.emit(telephony.EventEnd, cl.id)
}

// onInviteResponse ответ на первый INVITE исходящего вызова
func (c *Client) onInviteResponse(callID string, req *sip.Request, res *sip.Response) {
	cl := c.lookup(callID)
	if cl == nil || cl.dlg.invite != req {
		// вызов уже завершен локально; поздний 2xx подтверждаем и сразу кладем трубку
		if res.StatusCode >= 200 && res.StatusCode < 300 {
			d := newClientDialog(c.local, c.opts.DisplayName, req.Recipient, c.contact, c.opts.Proxy)
			d.callID = callID
			if from := req.From(); from != nil {
				d.localTag, _ = from.Params.Get("tag")
			}
			if h := req.CSeq(); h != nil {
				d.cseq = h.SeqNo
			}
			d.confirm(res)
			c.ackAndBye(d, req)
		}
		return
	}

	switch {
	case res.StatusCode < 200:
		if (res.StatusCode == statusRinging || res.StatusCode == statusProgress) &&
			cl.state == telephony.CallStateDialing {
			cl.state = telephony.CallStateAlert
			c.emit(telephony.EventAlert, cl.id)
		}
	case res.StatusCode < 300:
		cl.dlg.confirm(res)
		if err := c.wire.Write(cl.dlg.ack(req), false); err != nil {
			c.logger.Warn("ack failed", slog.Int("call_id", int(cl.id)), slog.String("error", err.Error()))
		}
		cl.state = telephony.CallStateActive
		cl.start = c.opts.Uptime.Uptime()
		c.logger.Info("call answered", slog.Int("call_id", int(cl.id)))
		c.emit(telephony.EventActive, cl.id)
	default:
		c.drop(cl)
		c.logger.Info("call failed",
			slog.Int("call_id", int(cl.id)),
			slog.Int("status", int(res.StatusCode)),
			slog.String("reason", res.Reason))
		c.emit(telephony.EventEnd, cl.id)
	}
}

func (c *Client) ackAndBye(d *dialog, invite *sip.Request) {
	if err := c.wire.Write(d.ack(invite), false); err != nil {
		c.logger.Warn("ack failed", slog.String("sip_call_id", d.callID), slog.String("error", err.Error()))
	}
	c.bye(d)
}

func (c *Client) onInviteError(callID string, err error) {
	cl := c.lookup(callID)
	if cl == nil || cl.confirmed() {
		return
	}
	c.drop(cl)
	c.logger.Warn("invite transaction failed", slog.Int("call_id", int(cl.id)), slog.String("error", err.Error()))
	c.emit(telephony.EventEnd, cl.id)
}

// onReinviteResponse 2xx на re-INVITE подтверждается ACK, отказ только
// журналируется: удержание на нашей стороне уже действует
func (c *Client) onReinviteResponse(d *dialog, req *sip.Request, res *sip.Response) {
	switch {
	case res.StatusCode < 200:
	case res.StatusCode < 300:
		if err := c.wire.Write(d.ack(req), false); err != nil {
			c.logger.Warn("ack failed", slog.String("sip_call_id", d.callID), slog.String("error", err.Error()))
		}
	default:
		c.logger.Warn("re-invite rejected",
			slog.String("sip_call_id", d.callID),
			slog.Int("status", int(res.StatusCode)))
	}
}
