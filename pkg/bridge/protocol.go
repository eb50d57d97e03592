package bridge

import (
	"github.com/arzzra/call_ui/pkg/views"
)

// Типы сообщений
const (
	TypeHello      = "hello"
	TypeScreen     = "screen"
	TypeResult     = "result"
	TypeAction     = "action"
	TypeDial       = "dial"
	TypeAppControl = "app_control"
	TypeKey        = "key"
	TypeRemote     = "remote"
)

// Message сообщение моста в обе стороны
type Message struct {
	Type string `json:"type"`
	// ID идентификатор запроса клиента, повторяется в ответе
	ID string `json:"id,omitempty"`

	// hello
	ClientID string `json:"client_id,omitempty"`
	Session  string `json:"session,omitempty"`

	// screen
	Screen *views.Screen `json:"screen,omitempty"`

	// action
	Action string `json:"action,omitempty"`
	CallID uint32 `json:"call_id,omitempty"`

	// dial, remote
	Number  string `json:"number,omitempty"`
	Name    string `json:"name,omitempty"`
	SimSlot int    `json:"sim_slot,omitempty"`

	// app_control, remote
	Operation string            `json:"operation,omitempty"`
	URI       string            `json:"uri,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`

	// key
	Key     string `json:"key,omitempty"`
	Pressed bool   `json:"pressed,omitempty"`

	// result
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}
