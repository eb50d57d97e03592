package view_manager_test

import (
	stderrors "errors"
	"testing"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/state_provider"
	"github.com/arzzra/call_ui/pkg/view_manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot map[call_manager.Category]*state_provider.Record

func (s snapshot) CallData(c call_manager.Category) *state_provider.Record {
	return s[c]
}

// fakeView считает вызовы жизненного цикла
type fakeView struct {
	id        view_manager.ViewID
	lifecycle *lifecycle
	failOn    string
	updates   int
	shown     int
	hidden    int
}

type lifecycle struct {
	log     []string
	live    int
	maxLive int
}

func (v *fakeView) Create() error {
	v.lifecycle.log = append(v.lifecycle.log, "create:"+string(v.id))
	v.lifecycle.live++
	if v.lifecycle.live > v.lifecycle.maxLive {
		v.lifecycle.maxLive = v.lifecycle.live
	}
	if v.failOn == "create" {
		return stderrors.New("create failed")
	}
	return nil
}

func (v *fakeView) Destroy() error {
	v.lifecycle.log = append(v.lifecycle.log, "destroy:"+string(v.id))
	v.lifecycle.live--
	if v.failOn == "destroy" {
		return stderrors.New("destroy failed")
	}
	return nil
}

func (v *fakeView) Update() error { v.updates++; return nil }
func (v *fakeView) OnShow()       { v.shown++ }
func (v *fakeView) OnHide()       { v.hidden++ }

// plainView без Update и Visibility
type plainView struct{}

func (plainView) Create() error  { return nil }
func (plainView) Destroy() error { return nil }

type transitionLog struct {
	codes []result.Code
}

func (t *transitionLog) ObserveTransition(_, _ view_manager.ViewID, code result.Code) {
	t.codes = append(t.codes, code)
}

type harness struct {
	m       *view_manager.Manager
	calls   snapshot
	life    *lifecycle
	views   map[view_manager.ViewID]*fakeView
	failOn  map[view_manager.ViewID]string
	changes [][2]view_manager.ViewID
	obs     *transitionLog
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		calls:  snapshot{},
		life:   &lifecycle{},
		views:  map[view_manager.ViewID]*fakeView{},
		failOn: map[view_manager.ViewID]string{},
		obs:    &transitionLog{},
	}
	factory := func(id view_manager.ViewID) (view_manager.View, error) {
		if id == view_manager.Quickpanel {
			return plainView{}, nil
		}
		v := &fakeView{id: id, lifecycle: h.life, failOn: h.failOn[id]}
		h.views[id] = v
		return v, nil
	}
	var err error
	h.m, err = view_manager.New(view_manager.Config{Calls: h.calls, Factory: factory, Observer: h.obs})
	require.NoError(t, err)
	require.NoError(t, h.m.AddViewChangedHandler(func(from, to view_manager.ViewID, _ any) {
		h.changes = append(h.changes, [2]view_manager.ViewID{from, to})
	}, nil))
	return h
}

func record(id uint32, members int) *state_provider.Record {
	return &state_provider.Record{CallID: id, MemberCount: members}
}

func TestChangeViewDestroysBeforeCreate(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.m.ChangeView(view_manager.Dialing))
	require.NoError(t, h.m.ChangeView(view_manager.SingleCall))
	require.NoError(t, h.m.ChangeView(view_manager.MulticallSplit))
	require.NoError(t, h.m.ChangeView(view_manager.EndCall))

	assert.Equal(t, []string{
		"create:dialing",
		"destroy:dialing", "create:single_call",
		"destroy:single_call", "create:multicall_split",
		"destroy:multicall_split", "create:end_call",
	}, h.life.log)
	assert.Equal(t, 1, h.life.maxLive)
	assert.Equal(t, 1, h.life.live)
	assert.Equal(t, view_manager.EndCall, h.m.Current())

	require.NoError(t, h.m.Close())
	assert.Equal(t, 0, h.life.live)
	assert.Equal(t, view_manager.Undefined, h.m.Current())
}

func TestSameViewUpdates(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.m.ChangeView(view_manager.SingleCall))
	require.NoError(t, h.m.ChangeView(view_manager.SingleCall))
	require.NoError(t, h.m.ChangeView(view_manager.SingleCall))

	assert.Equal(t, 2, h.views[view_manager.SingleCall].updates)
	assert.Equal(t, []string{"create:single_call"}, h.life.log)
	assert.Len(t, h.changes, 1)

	// экран без Update: повторный переход успешен и ничего не делает
	require.NoError(t, h.m.ChangeView(view_manager.Quickpanel))
	require.NoError(t, h.m.ChangeView(view_manager.Quickpanel))
}

func TestCreateFailureLeavesUndefined(t *testing.T) {
	h := newHarness(t)
	h.failOn[view_manager.SingleCall] = "create"

	require.NoError(t, h.m.ChangeView(view_manager.Dialing))
	err := h.m.ChangeView(view_manager.SingleCall)
	require.Error(t, err)

	assert.Equal(t, view_manager.Undefined, h.m.Current())
	assert.Nil(t, h.m.CurrentView())
	// неудачный экземпляр уничтожен, предыдущий тоже
	assert.Equal(t, 0, h.life.live)
	assert.Equal(t, result.UnknownError, h.obs.codes[len(h.obs.codes)-1])

	// после ошибки машина продолжает работать
	require.NoError(t, h.m.ChangeView(view_manager.Dialing))
	assert.Equal(t, view_manager.Dialing, h.m.Current())
}

func TestDestroyFailureDoesNotBlockTransition(t *testing.T) {
	h := newHarness(t)
	h.failOn[view_manager.Dialing] = "destroy"

	require.NoError(t, h.m.ChangeView(view_manager.Dialing))
	require.NoError(t, h.m.ChangeView(view_manager.SingleCall))
	assert.Equal(t, view_manager.SingleCall, h.m.Current())
	assert.Equal(t, 1, h.life.live)
}

func TestChangeViewValidation(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.m.ChangeView(view_manager.Undefined), result.ErrInvalidParam)
	assert.ErrorIs(t, h.m.ChangeView("settings"), result.ErrInvalidParam)
	assert.Empty(t, h.life.log)

	_, err := view_manager.New(view_manager.Config{})
	assert.ErrorIs(t, err, result.ErrInvalidParam)
}

func TestAutoChangeViewPrecedence(t *testing.T) {
	dialing := record(1, 1)
	dialing.Dialing = true

	cases := []struct {
		name     string
		incoming *state_provider.Record
		active   *state_provider.Record
		held     *state_provider.Record
		want     view_manager.ViewID
	}{
		{"incoming wins", record(3, 1), record(1, 1), record(2, 1), view_manager.IncomingLock},
		{"dialing", nil, dialing, record(2, 1), view_manager.Dialing},
		{"active and held", nil, record(1, 1), record(2, 1), view_manager.MulticallSplit},
		{"active conference and held", nil, record(1, 3), record(2, 1), view_manager.MulticallSplit},
		{"active conference", nil, record(1, 3), nil, view_manager.MulticallConference},
		{"active single", nil, record(1, 1), nil, view_manager.SingleCall},
		{"held conference", nil, nil, record(2, 3), view_manager.MulticallConference},
		{"held single", nil, nil, record(2, 1), view_manager.SingleCall},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.calls[call_manager.CategoryIncoming] = tc.incoming
			h.calls[call_manager.CategoryActive] = tc.active
			h.calls[call_manager.CategoryHeld] = tc.held

			require.NoError(t, h.m.AutoChangeView())
			assert.Equal(t, tc.want, h.m.Current())
		})
	}
}

func TestAutoChangeViewWithoutCallFails(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.m.ChangeView(view_manager.SingleCall))

	err := h.m.AutoChangeView()
	assert.ErrorIs(t, err, view_manager.ErrNoCall)
	assert.Equal(t, view_manager.SingleCall, h.m.Current(), "current view is left as is")
	assert.Equal(t, view_manager.Undefined, h.m.Derive())
}

func TestListEndLatch(t *testing.T) {
	h := newHarness(t)
	h.calls[call_manager.CategoryActive] = record(1, 3)
	h.calls[call_manager.CategoryHeld] = record(2, 1)

	h.m.SetListEndClicked()
	require.NoError(t, h.m.AutoChangeView())
	assert.Equal(t, view_manager.MulticallList, h.m.Current())

	// флаг сброшен: следующий выбор идет по обычным правилам
	require.NoError(t, h.m.AutoChangeView())
	assert.Equal(t, view_manager.MulticallSplit, h.m.Current())
}

func TestListEndLatchNeedsConference(t *testing.T) {
	h := newHarness(t)
	h.calls[call_manager.CategoryActive] = record(1, 1)

	h.m.SetListEndClicked()
	require.NoError(t, h.m.AutoChangeView())
	assert.Equal(t, view_manager.SingleCall, h.m.Current())

	h.calls[call_manager.CategoryActive] = record(1, 2)
	require.NoError(t, h.m.AutoChangeView())
	assert.Equal(t, view_manager.MulticallList, h.m.Current())
}

func TestPauseResumeVisibility(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.m.ChangeView(view_manager.SingleCall))
	v := h.views[view_manager.SingleCall]
	assert.Equal(t, 1, v.shown)

	h.m.Pause()
	h.m.Pause()
	assert.True(t, h.m.IsPaused())
	assert.Equal(t, 1, v.hidden)

	// созданный во время паузы экран не получает OnShow до Resume
	require.NoError(t, h.m.ChangeView(view_manager.Dialing))
	d := h.views[view_manager.Dialing]
	assert.Equal(t, 0, d.shown)

	h.m.Resume()
	assert.False(t, h.m.IsPaused())
	assert.Equal(t, 1, d.shown)
}

func TestViewChangedNotifications(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.m.ChangeView(view_manager.Dialing))
	require.NoError(t, h.m.ChangeView(view_manager.SingleCall))
	require.NoError(t, h.m.Reset())

	assert.Equal(t, [][2]view_manager.ViewID{
		{view_manager.Undefined, view_manager.Dialing},
		{view_manager.Dialing, view_manager.SingleCall},
		{view_manager.SingleCall, view_manager.Undefined},
	}, h.changes)
}
