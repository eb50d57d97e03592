// Package bridge websocket мост между ядром и клиентами отрисовки.
// Клиенты получают описания экранов и присылают действия пользователя.
package bridge

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/arzzra/call_ui/pkg/app"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/views"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 32
)

// Dispatcher получатель действий клиентов
type Dispatcher interface {
	Perform(action app.Action, callID uint32) error
	Dial(number string, slot telephony.SimSlot) error
	HandleAppControl(req app.Request) error
	HandleKey(key app.Key, pressed bool)
	Session() string
}

// Remote управление удаленной стороной вызова. Есть только у симулятора.
type Remote interface {
	IncomingCall(number, name string, personID int) (uint32, error)
	RemoteAlert() error
	RemoteAnswer() error
	RemoteEnd(callID uint32) error
}

// Config конфигурация моста
type Config struct {
	Dispatcher Dispatcher
	// Remote nil - сообщения remote отклоняются с NOT_SUPPORTED
	Remote Remote
	// Exec выполняет fn в цикле событий и ждет результат
	Exec   func(fn func() error) error
	Logger *slog.Logger
}

// Hub мост. Реализует views.Publisher и http.Handler.
type Hub struct {
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
	last    *views.Screen
	closed  bool
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan Message
	once sync.Once
}

// New создает мост
func New(cfg Config) (*Hub, error) {
	if cfg.Dispatcher == nil {
		return nil, result.New(result.InvalidParam, "bridge.New", "dispatcher is required")
	}
	if cfg.Exec == nil {
		cfg.Exec = func(fn func() error) error { return fn() }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "bridge")),
		upgrader: websocket.Upgrader{},
		clients:  make(map[string]*client),
	}, nil
}

// Publish рассылает экран всем клиентам. Последний видимый экран
// отправляется новым клиентам при подключении.
func (h *Hub) Publish(screen views.Screen) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if screen.Closed {
		if h.last != nil && h.last.View == screen.View {
			h.last = nil
		}
	} else {
		s := screen
		h.last = &s
	}
	msg := Message{Type: TypeScreen, Screen: &screen}
	for _, c := range h.clients {
		h.enqueue(c, msg)
	}
}

// enqueue вызывается под h.mu. Медленный клиент отключается.
func (h *Hub) enqueue(c *client, msg Message) {
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("client is too slow, dropping", slog.String("client_id", c.id))
		delete(h.clients, c.id)
		c.close()
	}
}

// Clients число подключенных клиентов
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close отключает всех клиентов
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		c.close()
	}
}

// ServeHTTP принимает websocket подключение
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", slog.String("error", err.Error()))
		return
	}
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan Message, sendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c.id] = c
	c.send <- Message{Type: TypeHello, ClientID: c.id, Session: h.cfg.Dispatcher.Session()}
	if h.last != nil {
		c.send <- Message{Type: TypeScreen, Screen: h.last}
	}
	h.mu.Unlock()

	h.logger.Info("client connected", slog.String("client_id", c.id), slog.String("remote", r.RemoteAddr))
	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.logger.Debug("write failed", slog.String("client_id", c.id), slog.String("error", err.Error()))
			h.drop(c)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) readLoop(c *client) {
	defer h.drop(c)
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("read failed", slog.String("client_id", c.id), slog.String("error", err.Error()))
			}
			return
		}
		reply := h.handle(c, msg)
		if reply == nil {
			continue
		}
		h.mu.Lock()
		if _, ok := h.clients[c.id]; ok {
			h.enqueue(c, *reply)
		}
		h.mu.Unlock()
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		c.close()
	}
	h.mu.Unlock()
	h.logger.Info("client disconnected", slog.String("client_id", c.id))
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}
