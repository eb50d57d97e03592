package bridge

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/app"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
)

var keyNames = map[string]app.Key{
	app.KeyPower.String(): app.KeyPower,
	app.KeyHome.String():  app.KeyHome,
}

// handle выполняет запрос клиента в цикле событий и возвращает ответ
func (h *Hub) handle(c *client, msg Message) *Message {
	logger := h.logger.With(slog.String("client_id", c.id), slog.String("type", msg.Type))
	d := h.cfg.Dispatcher

	var fn func() error
	switch msg.Type {
	case TypeAction:
		fn = func() error { return d.Perform(app.Action(msg.Action), msg.CallID) }
	case TypeDial:
		fn = func() error { return d.Dial(msg.Number, telephony.SimSlot(msg.SimSlot)) }
	case TypeAppControl:
		fn = func() error {
			return d.HandleAppControl(app.Request{Operation: msg.Operation, URI: msg.URI, Extra: msg.Extra})
		}
	case TypeKey:
		key, ok := keyNames[msg.Key]
		if !ok {
			fn = func() error {
				return result.Newf(result.InvalidParam, "bridge.key", "unknown key %q", msg.Key)
			}
			break
		}
		fn = func() error {
			d.HandleKey(key, msg.Pressed)
			return nil
		}
	case TypeRemote:
		fn = func() error { return h.remote(&msg) }
	default:
		fn = func() error {
			return result.Newf(result.InvalidParam, "bridge.handle", "unknown message type %q", msg.Type)
		}
	}

	err := h.cfg.Exec(fn)
	if err != nil {
		logger.Warn("request failed", slog.String("error", err.Error()))
	}
	reply := &Message{Type: TypeResult, ID: msg.ID, CallID: msg.CallID, Code: result.CodeOf(err).String()}
	if err != nil {
		reply.Error = err.Error()
	}
	return reply
}

// remote действие удаленной стороны; для incoming в msg.CallID пишется id вызова
func (h *Hub) remote(msg *Message) error {
	r := h.cfg.Remote
	if r == nil {
		return result.New(result.NotSupported, "bridge.remote", "remote control is disabled")
	}
	switch msg.Operation {
	case "incoming":
		id, err := r.IncomingCall(msg.Number, msg.Name, 0)
		msg.CallID = id
		return result.FromPlatform(err, "bridge.remote")
	case "alert":
		return result.FromPlatform(r.RemoteAlert(), "bridge.remote")
	case "answer":
		return result.FromPlatform(r.RemoteAnswer(), "bridge.remote")
	case "end":
		return result.FromPlatform(r.RemoteEnd(msg.CallID), "bridge.remote")
	}
	return result.Newf(result.InvalidParam, "bridge.remote", "unknown operation %q", msg.Operation)
}
