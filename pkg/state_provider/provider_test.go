package state_provider

import (
	"testing"
	"time"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/telephony/simulator"
	"github.com/arzzra/call_ui/pkg/uptime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contactBook адресная книга с управляемым отказом
type contactBook struct {
	names map[string]string
	fail  bool
	// failNumber отказ только для одного номера
	failNumber string
}

func (b *contactBook) ResolveContact(personID int, number string) (ContactSnippet, error) {
	if b.fail || (b.failNumber != "" && number == b.failNumber) {
		return ContactSnippet{}, result.New(result.AllocationFail, "contactBook", "lookup failed")
	}
	return ContactSnippet{PersonID: personID, Name: b.names[number]}, nil
}

type fixture struct {
	sim    *simulator.Simulator
	calls  *call_manager.Manager
	p      *Provider
	clock  *uptime.Manual
	book   *contactBook
	events []StateEvent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock: uptime.NewManual(10 * time.Second),
		book:  &contactBook{names: map[string]string{"111": "Alice", "222": "Bob"}},
	}
	f.sim = simulator.New(simulator.Options{Uptime: f.clock})
	var err error
	f.calls, err = call_manager.New(call_manager.Config{Client: f.sim})
	require.NoError(t, err)
	t.Cleanup(f.calls.Close)

	f.p, err = New(Config{Source: f.calls, Contacts: f.book, Uptime: f.clock})
	require.NoError(t, err)
	t.Cleanup(f.p.Close)

	require.NoError(t, f.p.AddCallStateEventHandler(func(ev StateEvent, _ any) {
		f.events = append(f.events, ev)
	}, nil))
	return f
}

func (f *fixture) activeCall(t *testing.T, number string) {
	t.Helper()
	require.NoError(t, f.calls.Dial(number, telephony.SimSlotDefault))
	require.NoError(t, f.sim.RemoteAnswer())
}

func TestNewRequiresSource(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, result.ErrInvalidParam)
}

func TestSnapshotFollowsEvents(t *testing.T) {
	f := newFixture(t)
	f.activeCall(t, "111")

	active := f.p.CallData(call_manager.CategoryActive)
	require.NotNil(t, active)
	assert.Equal(t, "Alice", active.Contact.Name)
	assert.False(t, active.Dialing)
	assert.Nil(t, f.p.CallData(call_manager.CategoryIncoming))
	assert.True(t, f.p.IsAnyCallAvailable())

	id, err := f.sim.IncomingCall("222", "", 0)
	require.NoError(t, err)
	incoming := f.p.CallData(call_manager.CategoryIncoming)
	require.NotNil(t, incoming)
	assert.Equal(t, id, incoming.CallID)
	assert.Equal(t, "Bob", incoming.Contact.Name)

	require.Len(t, f.events, 3)
	assert.Equal(t, telephony.EventWaiting, f.events[2].Type)
	assert.Equal(t, id, f.events[2].CallID)
	assert.Equal(t, telephony.SimSlot1, f.events[2].SimSlot)
}

func TestDialingFlag(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.calls.Dial("111", telephony.SimSlotDefault))
	require.True(t, f.p.CallData(call_manager.CategoryActive).Dialing)

	require.NoError(t, f.sim.RemoteAlert())
	assert.True(t, f.p.CallData(call_manager.CategoryActive).Dialing)

	require.NoError(t, f.sim.RemoteAnswer())
	assert.False(t, f.p.CallData(call_manager.CategoryActive).Dialing)
}

// Ошибка построения любой из трех записей оставляет прежний снимок целиком
// и не публикует событие
func TestFailedBuildKeepsOldSnapshot(t *testing.T) {
	tests := []struct {
		name       string
		failNumber string
	}{
		{"incoming", "333"},
		{"active", "222"},
		{"held", "111"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.activeCall(t, "111")
			f.activeCall(t, "222")
			before := f.p.Snapshot()
			require.NotNil(t, before.Active)
			require.NotNil(t, before.Held)
			activeRec := f.p.CallData(call_manager.CategoryActive)
			heldRec := f.p.CallData(call_manager.CategoryHeld)
			published := len(f.events)

			f.book.failNumber = tt.failNumber
			_, err := f.sim.IncomingCall("333", "", 0)
			require.NoError(t, err)

			assert.Equal(t, before, f.p.Snapshot())
			assert.Same(t, activeRec, f.p.CallData(call_manager.CategoryActive))
			assert.Same(t, heldRec, f.p.CallData(call_manager.CategoryHeld))
			assert.Nil(t, f.p.CallData(call_manager.CategoryIncoming))
			assert.Nil(t, f.p.LastEndedCallData())
			assert.Len(t, f.events, published)

			// следующее успешное событие восстанавливает полный снимок
			f.book.failNumber = ""
			require.NoError(t, f.sim.RemoteEnd(heldRec.CallID))
			assert.Nil(t, f.p.CallData(call_manager.CategoryHeld))
			incoming := f.p.CallData(call_manager.CategoryIncoming)
			require.NotNil(t, incoming)
			assert.Equal(t, "333", incoming.Number)
		})
	}
}

// Сбой при завершенном вызове не трогает запись последнего завершенного
func TestFailedBuildKeepsLastEnded(t *testing.T) {
	f := newFixture(t)
	f.activeCall(t, "111")
	require.NoError(t, f.calls.End(0, telephony.ReleaseAll))
	last := f.p.LastEndedCallData()
	require.NotNil(t, last)
	published := len(f.events)

	f.book.failNumber = "333"
	_, err := f.sim.IncomingCall("333", "", 0)
	require.NoError(t, err)

	assert.Same(t, last, f.p.LastEndedCallData())
	assert.Nil(t, f.p.CallData(call_manager.CategoryIncoming))
	assert.Len(t, f.events, published)
}

func TestFailedFetchKeepsOldSnapshot(t *testing.T) {
	f := newFixture(t)
	f.activeCall(t, "111")
	published := len(f.events)

	f.sim.FailNext("AllCallData", telephony.ErrOutOfMemory)
	require.NoError(t, f.calls.Hold())

	assert.NotNil(t, f.p.CallData(call_manager.CategoryActive))
	assert.Nil(t, f.p.CallData(call_manager.CategoryHeld))
	assert.Len(t, f.events, published)
}

func TestLastEndedCall(t *testing.T) {
	f := newFixture(t)
	f.activeCall(t, "111")
	id := f.p.CallData(call_manager.CategoryActive).CallID

	require.NoError(t, f.calls.End(0, telephony.ReleaseAll))

	assert.False(t, f.p.IsAnyCallAvailable())
	last := f.p.LastEndedCallData()
	require.NotNil(t, last)
	assert.Equal(t, id, last.CallID)
	assert.Equal(t, "Alice", last.Contact.Name)
	assert.Equal(t, telephony.EventEnd, f.events[len(f.events)-1].Type)

	// следующее событие очищает последний завершенный вызов
	require.NoError(t, f.calls.Dial("222", telephony.SimSlotDefault))
	assert.Nil(t, f.p.LastEndedCallData())
}

func TestLastEndedPrefersActiveOverHeld(t *testing.T) {
	f := newFixture(t)
	f.activeCall(t, "111")
	f.activeCall(t, "222")
	require.NotNil(t, f.p.CallData(call_manager.CategoryHeld))

	require.NoError(t, f.calls.End(0, telephony.ReleaseAll))
	require.NotNil(t, f.p.LastEndedCallData())
	assert.Equal(t, "222", f.p.LastEndedCallData().Number)
}

func TestRejectedIncomingLeavesNoLastEnded(t *testing.T) {
	f := newFixture(t)
	_, err := f.sim.IncomingCall("222", "", 0)
	require.NoError(t, err)
	require.NoError(t, f.calls.Reject())

	assert.False(t, f.p.IsAnyCallAvailable())
	assert.Nil(t, f.p.LastEndedCallData())
}

func TestCallDurationUsesMonotonicClock(t *testing.T) {
	f := newFixture(t)
	_, ok := f.p.CallDuration(call_manager.CategoryActive)
	assert.False(t, ok)

	f.activeCall(t, "111")
	f.clock.Advance(75 * time.Second)

	d, ok := f.p.CallDuration(call_manager.CategoryActive)
	require.True(t, ok)
	assert.Equal(t, Duration{Minutes: 1, Seconds: 15}, d)
	assert.Equal(t, "01:15", d.String())

	// установка часов назад не уменьшает длительность
	f.clock.Set(0)
	d2, _ := f.p.CallDuration(call_manager.CategoryActive)
	assert.Equal(t, d, d2)

	f.clock.Advance(time.Hour)
	d3, _ := f.p.CallDuration(call_manager.CategoryActive)
	assert.Equal(t, "01:01:15", d3.String())
}

func TestConferenceMembers(t *testing.T) {
	f := newFixture(t)
	members, err := f.p.ConferenceMembers()
	require.NoError(t, err)
	assert.Nil(t, members)

	f.activeCall(t, "111")
	f.activeCall(t, "222")
	require.NoError(t, f.calls.Join())

	active := f.p.CallData(call_manager.CategoryActive)
	require.True(t, active.IsConference())
	assert.Equal(t, 2, active.MemberCount)

	members, err = f.p.ConferenceMembers()
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Bob", members[0].Contact.Name)
	assert.Equal(t, "Alice", members[1].Contact.Name)

	f.sim.FailNext("ConferenceMembers", telephony.ErrNotSupported)
	members, err = f.p.ConferenceMembers()
	assert.ErrorIs(t, err, result.ErrNotSupported)
	assert.Nil(t, members)
}

func TestInitialSnapshotMidCall(t *testing.T) {
	sim := simulator.New(simulator.Options{})
	calls, err := call_manager.New(call_manager.Config{Client: sim})
	require.NoError(t, err)
	defer calls.Close()
	require.NoError(t, sim.Dial("111", telephony.SimSlotDefault))

	p, err := New(Config{Source: calls})
	require.NoError(t, err)
	defer p.Close()
	require.NotNil(t, p.CallData(call_manager.CategoryActive))
	assert.NoError(t, p.Snapshot().Validate())
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	f := newFixture(t)
	f.activeCall(t, "111")
	snap := f.p.Snapshot()
	snap.Active.Number = "changed"
	assert.Equal(t, "111", f.p.CallData(call_manager.CategoryActive).Number)
}

func TestNewDuration(t *testing.T) {
	assert.Equal(t, Duration{}, NewDuration(-time.Second))
	assert.Equal(t, Duration{Hours: 2, Minutes: 0, Seconds: 5}, NewDuration(2*time.Hour+5*time.Second))
	assert.Equal(t, 2*time.Hour+5*time.Second, NewDuration(2*time.Hour+5*time.Second+300*time.Millisecond).Total())
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "+74951234567", formatNumber("tel:+7 (495) 123-45-67"))
	assert.Equal(t, "*100#", formatNumber("*100#"))
	assert.Equal(t, "alice@example.com", formatNumber("alice@example.com"))
}
