package views

import (
	"log/slog"
	"time"

	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/sound_manager"
	"github.com/arzzra/call_ui/pkg/state_provider"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/uptime"
	"github.com/arzzra/call_ui/pkg/view_manager"
)

const (
	DefaultTickInterval = time.Second
	DefaultEndCallDelay = 2 * time.Second
)

// Host приложение, которому принадлежат экраны
type Host interface {
	State() *state_provider.Provider
	Sound() *sound_manager.Manager
	AnswerOptions() []telephony.AnswerType
	// IsPaused окно скрыто; созданный в это время экран ждет OnShow
	IsPaused() bool
	// FinishEndCall экран завершения отработал
	FinishEndCall()
}

// Options параметры экранов
type Options struct {
	Publisher    Publisher
	Scheduler    Scheduler
	Uptime       uptime.Source
	TickInterval time.Duration
	EndCallDelay time.Duration
	Logger       *slog.Logger
}

// NewFactory возвращает фабрику экранов для менеджера экранов
func NewFactory(host Host, opts Options) view_manager.Factory {
	if opts.Uptime == nil {
		opts.Uptime = uptime.System()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.EndCallDelay <= 0 {
		opts.EndCallDelay = DefaultEndCallDelay
	}
	if opts.Publisher == nil {
		opts.Publisher = PublisherFunc(func(Screen) {})
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return func(id view_manager.ViewID) (view_manager.View, error) {
		if host == nil || opts.Scheduler == nil {
			return nil, result.New(result.InvalidParam, "views.Factory", "host and scheduler are required")
		}
		b := base{
			id:     id,
			host:   host,
			opts:   opts,
			logger: opts.Logger.With(slog.String("component", "view"), slog.String("view", id.String())),
		}
		switch id {
		case view_manager.Dialing, view_manager.SingleCall, view_manager.MulticallSplit,
			view_manager.MulticallConference, view_manager.Quickpanel:
			return &callView{base: b}, nil
		case view_manager.MulticallList:
			return &callView{base: b, withMembers: true}, nil
		case view_manager.IncomingLock, view_manager.IncomingNotification:
			return &incomingView{base: b}, nil
		case view_manager.EndCall:
			return &endCallView{base: b}, nil
		}
		return nil, nil
	}
}

// base общая часть экранов: публикация и подписка на звук
type base struct {
	id     view_manager.ViewID
	host   Host
	opts   Options
	logger *slog.Logger

	// render собирает экран конкретного вида
	render  func() Screen
	visible bool
}

func (b *base) screen() Screen {
	s := Screen{View: b.id, Visible: b.visible}
	if sound := b.host.Sound(); sound != nil {
		s.Muted = sound.IsMuted()
		s.Route = sound.Route().String()
	}
	return s
}

func (b *base) publish() {
	if b.render == nil {
		return
	}
	b.opts.Publisher.Publish(b.render())
}

func (b *base) subscribe() error {
	sound := b.host.Sound()
	if sound == nil {
		return nil
	}
	if err := sound.AddRouteHandler(b.onRoute, b); err != nil {
		return err
	}
	return sound.AddMuteHandler(b.onMute, b)
}

// unsubscribe безопасен после частичного subscribe
func (b *base) unsubscribe() {
	sound := b.host.Sound()
	if sound == nil {
		return
	}
	_ = sound.RemoveRouteHandler(b.onRoute, b)
	_ = sound.RemoveMuteHandler(b.onMute, b)
}

func (b *base) onRoute(telephony.AudioRoute, any) { b.publish() }
func (b *base) onMute(bool, any)                  { b.publish() }

func (b *base) closed() {
	b.render = nil
	b.opts.Publisher.Publish(Screen{View: b.id, Closed: true})
}
