package call_manager_test

import (
	"testing"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/telephony/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type actionLog struct {
	actions []string
	codes   []result.Code
}

func (a *actionLog) ObserveAction(action string, code result.Code) {
	a.actions = append(a.actions, action)
	a.codes = append(a.codes, code)
}

func newManager(t *testing.T) (*call_manager.Manager, *simulator.Simulator, *actionLog) {
	t.Helper()
	sim := simulator.New(simulator.Options{})
	obs := &actionLog{}
	m, err := call_manager.New(call_manager.Config{Client: sim, Observer: obs})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m, sim, obs
}

func TestNewRequiresClient(t *testing.T) {
	_, err := call_manager.New(call_manager.Config{})
	assert.ErrorIs(t, err, result.ErrInvalidParam)
}

// Слушатели завершения вызываются до возврата из End
func TestEndNotifiesBeforeReturn(t *testing.T) {
	m, sim, _ := newManager(t)
	require.NoError(t, sim.Dial("12345", telephony.SimSlotDefault))

	returned := false
	notified := 0
	var gotRelease telephony.ReleaseType
	onEnd := func(callID uint32, release telephony.ReleaseType, userData any) {
		assert.False(t, returned, "listener must run before End returns")
		gotRelease = release
		notified++
	}
	require.NoError(t, m.AddEndCallHandler(onEnd, nil))

	err := m.End(0, telephony.ReleaseAll)
	returned = true
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	assert.Equal(t, telephony.ReleaseAll, gotRelease)
}

func TestEndFailureDoesNotNotify(t *testing.T) {
	m, _, obs := newManager(t)
	notified := 0
	require.NoError(t, m.AddEndCallHandler(func(uint32, telephony.ReleaseType, any) { notified++ }, nil))

	err := m.End(0, telephony.ReleaseAll)
	assert.ErrorIs(t, err, result.ErrFail)
	assert.Equal(t, 0, notified)
	assert.Equal(t, []string{"end"}, obs.actions)
}

func TestParameterValidation(t *testing.T) {
	m, _, obs := newManager(t)

	assert.ErrorIs(t, m.Dial("  ", telephony.SimSlotDefault), result.ErrInvalidParam)
	assert.ErrorIs(t, m.Dial("1", telephony.SimSlot(9)), result.ErrInvalidParam)
	assert.ErrorIs(t, m.End(0, telephony.ReleaseByCallHandle), result.ErrInvalidParam)
	assert.ErrorIs(t, m.End(1, telephony.ReleaseType(-1)), result.ErrInvalidParam)
	assert.ErrorIs(t, m.Answer(telephony.AnswerType(42)), result.ErrInvalidParam)
	assert.ErrorIs(t, m.Split(0), result.ErrInvalidParam)
	_, err := m.CallData(call_manager.Category(5))
	assert.ErrorIs(t, err, result.ErrInvalidParam)

	assert.Empty(t, obs.actions, "validation failures never reach the platform")
}

func TestPlatformErrorMapping(t *testing.T) {
	m, sim, obs := newManager(t)
	sim.FailNext("Dial", telephony.ErrPermissionDenied)

	err := m.Dial("12345", telephony.SimSlotDefault)
	assert.ErrorIs(t, err, result.ErrPermissionDenied)
	assert.Equal(t, []result.Code{result.PermissionDenied}, obs.codes)

	sim.FailNext("Hold", telephony.Error(1000))
	assert.Equal(t, result.UnknownError, result.CodeOf(m.Hold()))
}

func TestCallEventsAreRepublished(t *testing.T) {
	m, sim, _ := newManager(t)

	var events []telephony.EventType
	var statuses []telephony.DialStatus
	require.NoError(t, m.AddCallEventHandler(func(ev telephony.EventType, data *telephony.EventData, _ any) {
		events = append(events, ev)
	}, nil))
	require.NoError(t, m.AddDialStatusHandler(func(st telephony.DialStatus, _ any) {
		statuses = append(statuses, st)
	}, nil))

	require.NoError(t, m.Dial("555", telephony.SimSlot1))
	require.NoError(t, sim.RemoteAnswer())
	require.NoError(t, m.Hold())

	assert.Equal(t, []telephony.EventType{telephony.EventDialing, telephony.EventActive, telephony.EventHeld}, events)
	assert.Equal(t, []telephony.DialStatus{telephony.DialSuccess}, statuses)

	held, err := m.CallData(call_manager.CategoryHeld)
	require.NoError(t, err)
	require.NotNil(t, held)
	assert.Equal(t, "555", held.Number)
}

func TestQueriesMapErrors(t *testing.T) {
	m, sim, _ := newManager(t)
	sim.FailNext("AllCallData", telephony.ErrOutOfMemory)
	_, _, _, err := m.AllCallData()
	assert.ErrorIs(t, err, result.ErrAllocationFail)

	sim.FailNext("ConferenceMembers", telephony.ErrNotSupported)
	_, err = m.ConferenceMembers()
	assert.ErrorIs(t, err, result.ErrNotSupported)
}

func TestDuplicateHandlerRegistration(t *testing.T) {
	m, _, _ := newManager(t)
	h := func(telephony.DialStatus, any) {}

	require.NoError(t, m.AddDialStatusHandler(h, "owner"))
	assert.ErrorIs(t, m.AddDialStatusHandler(h, "owner"), result.ErrAlreadyRegistered)
	require.NoError(t, m.RemoveDialStatusHandler(h, "owner"))
	assert.ErrorIs(t, m.RemoveDialStatusHandler(h, "owner"), result.ErrNotRegistered)
}
