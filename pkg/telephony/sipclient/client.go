// Package sipclient реализует платформенный клиент телефонии поверх SIP.
//
// Каждый вызов - отдельный INVITE диалог. Удержание выполняется re-INVITE с
// направлением медиа sendonly, снятие с удержания - sendrecv. Конференции на
// стороне клиента нет, Join и Split возвращают ErrNotSupported.
//
// Запросы и ответы сети приходят в горутинах sipgo и переносятся в цикл
// событий через Options.Post, поэтому состояние клиента меняется только там.
package sipclient

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/uptime"
	"github.com/emiago/sipgo"
	"github.com/emiago/sipgo/sip"
	"github.com/pkg/errors"
)

var (
	_ telephony.Client      = (*Client)(nil)
	_ telephony.AudioClient = (*Client)(nil)
)

const (
	defaultUserAgent = "call_ui/1.0"
	defaultTransport = "udp"
	defaultMediaPort = 40000
)

// Options настройки SIP клиента
type Options struct {
	// Post ставит функцию в цикл событий. Обязательна.
	Post func(func())
	// Uptime источник времени начала вызовов
	Uptime uptime.Source
	// Logger логгер, по умолчанию slog.Default()
	Logger *slog.Logger

	// ListenAddr локальный адрес host:port, он же попадает в Contact
	ListenAddr string
	// Transport udp или tcp
	Transport   string
	User        string
	DisplayName string
	// Domain домен для номеров без хоста: 222 превращается в sip:222@Domain
	Domain string
	// Proxy исходящий прокси host:port. Пусто - запрос идет по Request-URI.
	Proxy     string
	UserAgent string
	// MediaAddr адрес в SDP, по умолчанию хост ListenAddr
	MediaAddr string
	MediaPort int
}

type call struct {
	id     uint32
	state  telephony.CallState
	number string
	name   string
	start  time.Duration
	dlg    *dialog
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
		StartTime:   c.start,
		MemberCount: 1,
	}
}

// confirmed диалог установлен, внутри него можно слать re-INVITE и BYE
func (c *call) confirmed() bool {
	return c.state == telephony.CallStateActive || c.state == telephony.CallStateHeld
}

// Client SIP клиент телефонии.
// Методы telephony.Client вызываются только из цикла событий.
type Client struct {
	opts    Options
	logger  *slog.Logger
	wire    wire
	ua      *sipgo.UserAgent
	server  *sipgo.Server
	cancel  context.CancelFunc
	local   sip.Uri
	contact sip.ContactHeader

	nextID   uint32
	incoming *call
	active   *call
	held     *call
	// byCallID вызовы по SIP Call-ID
	byCallID map[string]*call

	route telephony.AudioRoute
	muted bool

	eventHandler telephony.CallEventHandler
	dialHandler  telephony.DialStatusHandler
	routeHandler func(telephony.AudioRoute)
	muteHandler  func(bool)
}

// New создает клиент и SIP стек sipgo. Прием запросов начинается в Run.
func New(opts Options) (*Client, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	host, _, err := net.SplitHostPort(opts.ListenAddr)
	if err != nil {
		return nil, result.Wrap(err, result.InvalidParam, "sipclient.New")
	}

	ua, err := sipgo.NewUA(
		sipgo.WithUserAgent(opts.UserAgent),
		sipgo.WithUserAgentHostname(host),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create user agent")
	}
	client, err := sipgo.NewClient(ua, sipgo.WithClientHostname(host))
	if err != nil {
		_ = ua.Close()
		return nil, errors.Wrap(err, "create sip client")
	}
	server, err := sipgo.NewServer(ua)
	if err != nil {
		_ = ua.Close()
		return nil, errors.Wrap(err, "create sip server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c, err := newClient(opts, &sipgoWire{client: client, ctx: ctx})
	if err != nil {
		cancel()
		_ = ua.Close()
		return nil, err
	}
	c.ua = ua
	c.server = server
	c.cancel = cancel

	server.OnInvite(c.handleInvite)
	server.OnAck(c.handleAck)
	server.OnBye(c.handleBye)
	server.OnCancel(c.handleCancel)
	server.OnOptions(c.handleOptions)
	return c, nil
}

func newClient(opts Options, w wire) (*Client, error) {
	if opts.Post == nil {
		return nil, result.New(result.InvalidParam, "sipclient.New", "post function is required")
	}
	if opts.Transport == "" {
		opts.Transport = defaultTransport
	}
	if opts.MediaPort == 0 {
		opts.MediaPort = defaultMediaPort
	}
	if opts.Uptime == nil {
		opts.Uptime = uptime.System()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	host, portStr, err := net.SplitHostPort(opts.ListenAddr)
	if err != nil {
		return nil, result.Wrap(err, result.InvalidParam, "sipclient.New")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, result.Wrap(err, result.InvalidParam, "sipclient.New")
	}
	if opts.MediaAddr == "" {
		opts.MediaAddr = host
	}

	local := sip.Uri{Scheme: "sip", User: opts.User, Host: host, Port: port}
	return &Client{
		opts:     opts,
		logger:   logger.With(slog.String("component", "sipclient")),
		wire:     w,
		local:    local,
		contact:  sip.ContactHeader{Address: local},
		nextID:   1,
		byCallID: make(map[string]*call),
		route:    telephony.AudioRouteReceiver,
	}, nil
}

// Run принимает SIP запросы до отмены ctx
func (c *Client) Run(ctx context.Context) error {
	if c.server == nil {
		return result.New(result.NotSupported, "sipclient.Run", "no sip server")
	}
	c.logger.Info("sip listening",
		slog.String("transport", c.opts.Transport),
		slog.String("addr", c.opts.ListenAddr))
	err := c.server.ListenAndServe(ctx, c.opts.Transport, c.opts.ListenAddr)
	if err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "sip listen")
	}
	return nil
}

// Close останавливает транзакции и закрывает транспорты
func (c *Client) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	if c.ua == nil {
		return nil
	}
	return c.ua.Close()
}

func (c *Client) post(fn func()) {
	c.opts.Post(fn)
}

func (c *Client) newCall(number string, state telephony.CallState, d *dialog) *call {
	cl := &call{
		id:     c.nextID,
		state:  state,
		number: number,
		start:  c.opts.Uptime.Uptime(),
		dlg:    d,
	}
	c.nextID++
	c.byCallID[d.callID] = cl
	return cl
}

// lookup возвращает вызов, если он еще жив
func (c *Client) lookup(callID string) *call {
	return c.byCallID[callID]
}

// drop убирает вызов из ячеек и из индекса
func (c *Client) drop(cl *call) {
	for _, slot := range []**call{&c.incoming, &c.active, &c.held} {
		if *slot == cl {
			*slot = nil
		}
	}
	delete(c.byCallID, cl.dlg.callID)
}

func (c *Client) emit(event telephony.EventType, callID uint32) {
	data := &telephony.EventData{
		CallID:   callID,
		SimSlot:  telephony.SimSlotDefault,
		Incoming: c.incoming.snapshot(),
		Active:   c.active.snapshot(),
		Held:     c.held.snapshot(),
	}
	c.logger.Debug("emit call event",
		slog.String("event", event.String()),
		slog.Int("call_id", int(callID)))
	c.post(func() {
		if c.eventHandler != nil {
			c.eventHandler(event, data)
		}
	})
}

func (c *Client) emitDialStatus(status telephony.DialStatus) {
	c.post(func() {
		if c.dialHandler != nil {
			c.dialHandler(status)
		}
	})
}

// SetCallEventHandler реализует telephony.Client
func (c *Client) SetCallEventHandler(handler telephony.CallEventHandler) {
	c.eventHandler = handler
}

// SetDialStatusHandler реализует telephony.Client
func (c *Client) SetDialStatusHandler(handler telephony.DialStatusHandler) {
	c.dialHandler = handler
}

// AllCallData реализует telephony.Client
func (c *Client) AllCallData() (incoming, active, held *telephony.CallData, err error) {
	return c.incoming.snapshot(), c.active.snapshot(), c.held.snapshot(), nil
}

// ConferenceMembers реализует telephony.Client. Конференций нет.
func (c *Client) ConferenceMembers() ([]telephony.ConferenceMember, error) {
	return nil, nil
}
