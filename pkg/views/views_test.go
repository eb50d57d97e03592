package views_test

import (
	"testing"
	"time"

	"github.com/arzzra/call_ui/pkg/app"
	"github.com/arzzra/call_ui/pkg/device"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/telephony/simulator"
	"github.com/arzzra/call_ui/pkg/uptime"
	"github.com/arzzra/call_ui/pkg/view_manager"
	"github.com/arzzra/call_ui/pkg/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualTimer struct {
	fn      func()
	repeat  bool
	stopped bool
}

func (t *manualTimer) Stop() { t.stopped = true }

type manualScheduler struct {
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(_ time.Duration, fn func()) views.Timer {
	t := &manualTimer{fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) Every(_ time.Duration, fn func()) views.Timer {
	t := &manualTimer{fn: fn, repeat: true}
	s.timers = append(s.timers, t)
	return t
}

// fire запускает все живые таймеры указанного вида
func (s *manualScheduler) fire(repeat bool) {
	for _, t := range append([]*manualTimer(nil), s.timers...) {
		if t.stopped || t.repeat != repeat {
			continue
		}
		if !t.repeat {
			t.stopped = true
		}
		t.fn()
	}
}

func (s *manualScheduler) live() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type window struct{ exits int }

func (w *window) Minimize() error                          { return nil }
func (w *window) Raise(bool) error                         { return nil }
func (w *window) GrabHomeKey() error                       { return nil }
func (w *window) ShowDialFailure(telephony.DialStatus)     {}
func (w *window) ShowAnswerOptions([]telephony.AnswerType) {}
func (w *window) Exit()                                    { w.exits++ }

type fixture struct {
	sim     *simulator.Simulator
	clock   *uptime.Manual
	sched   *manualScheduler
	win     *window
	app     *app.App
	screens []views.Screen
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock: uptime.NewManual(time.Hour),
		sched: &manualScheduler{},
		win:   &window{},
	}
	f.sim = simulator.New(simulator.Options{Uptime: f.clock})
	a, err := app.New(app.Deps{
		Client: f.sim,
		Audio:  f.sim,
		Uptime: f.clock,
		Device: device.NewMemory(device.Settings{}, nil),
		Window: f.win,
		Views: func(a *app.App) view_manager.Factory {
			return views.NewFactory(a, views.Options{
				Publisher: views.PublisherFunc(func(s views.Screen) { f.screens = append(f.screens, s) }),
				Scheduler: f.sched,
				Uptime:    f.clock,
			})
		},
	})
	require.NoError(t, err)
	require.NoError(t, a.Create())
	t.Cleanup(a.Terminate)
	f.app = a
	return f
}

func (f *fixture) last() views.Screen {
	return f.screens[len(f.screens)-1]
}

func TestCallScreenTicksDuration(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.app.Dial("+7 (495) 123-45-67", telephony.SimSlotDefault))
	s := f.last()
	assert.Equal(t, view_manager.Dialing, s.View)
	require.Len(t, s.Calls, 1)
	assert.True(t, s.Calls[0].Dialing)
	assert.Empty(t, s.Calls[0].Duration)
	assert.Equal(t, "+74951234567", s.Calls[0].Number)

	require.NoError(t, f.sim.RemoteAnswer())
	assert.Equal(t, view_manager.SingleCall, f.last().View)
	assert.Equal(t, "00:00", f.last().Calls[0].Duration)

	f.clock.Advance(65 * time.Second)
	f.sched.fire(true)
	assert.Equal(t, "01:05", f.last().Calls[0].Duration)
	assert.Equal(t, "receiver", f.last().Route)
}

func TestCallScreenFollowsMute(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.app.Dial("111", telephony.SimSlotDefault))
	require.NoError(t, f.sim.RemoteAnswer())

	require.NoError(t, f.app.Perform(app.ActionMute, 0))
	assert.True(t, f.last().Muted)
}

func TestDestroyStopsTimers(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.app.Dial("111", telephony.SimSlotDefault))
	assert.Equal(t, 1, f.sched.live())

	require.NoError(t, f.sim.RemoteAnswer())
	// экран набора уничтожен вместе с таймером, у нового свой таймер
	assert.Equal(t, 1, f.sched.live())

	f.app.Pause()
	assert.Equal(t, 0, f.sched.live())
	assert.False(t, f.last().Visible)
	f.app.Resume()
	assert.Equal(t, 1, f.sched.live())
}

func TestViewCreatedWhilePausedWaitsForShow(t *testing.T) {
	f := newFixture(t)
	f.app.Pause()

	require.NoError(t, f.app.Dial("111", telephony.SimSlotDefault))
	s := f.last()
	assert.Equal(t, view_manager.Dialing, s.View)
	assert.False(t, s.Visible)
	assert.Equal(t, 0, f.sched.live())

	f.app.Resume()
	assert.True(t, f.last().Visible)
	assert.Equal(t, 1, f.sched.live())
}

func TestEndCallScreenFinishes(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.app.Dial("111", telephony.SimSlotDefault))
	require.NoError(t, f.sim.RemoteAnswer())
	f.clock.Advance(3*time.Minute + 7*time.Second)

	require.NoError(t, f.app.Perform(app.ActionEnd, 0))
	s := f.last()
	assert.Equal(t, view_manager.EndCall, s.View)
	require.Len(t, s.Calls, 1)
	assert.Equal(t, "03:07", s.Calls[0].Duration)
	assert.Equal(t, "active", s.Calls[0].Category)
	assert.Zero(t, f.win.exits)

	f.sched.fire(false)
	assert.Equal(t, 1, f.win.exits)
	assert.True(t, f.last().Closed)
	assert.Equal(t, 0, f.sched.live())
}

func TestIncomingScreenShowsOptions(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.app.Dial("111", telephony.SimSlotDefault))
	require.NoError(t, f.sim.RemoteAnswer())
	_, err := f.sim.IncomingCall("222", "Bob", 0)
	require.NoError(t, err)

	s := f.last()
	assert.Equal(t, view_manager.IncomingLock, s.View)
	require.Len(t, s.Calls, 2)
	assert.Equal(t, "Bob", s.Calls[0].Name)
	assert.Equal(t, []string{"hold_active_and_accept", "release_active_and_accept"}, s.Options)
}

func TestListScreenHasMembers(t *testing.T) {
	f := newFixture(t)
	for _, n := range []string{"111", "222"} {
		require.NoError(t, f.app.Dial(n, telephony.SimSlotDefault))
		require.NoError(t, f.sim.RemoteAnswer())
	}
	require.NoError(t, f.app.Perform(app.ActionJoin, 0))
	require.NoError(t, f.app.Perform(app.ActionListEnd, 0))

	s := f.last()
	assert.Equal(t, view_manager.MulticallList, s.View)
	assert.Len(t, s.Members, 2)
}

func TestFactoryRequiresHost(t *testing.T) {
	factory := views.NewFactory(nil, views.Options{})
	_, err := factory(view_manager.Dialing)
	assert.Error(t, err)
}
