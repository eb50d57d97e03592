package listeners

import (
	"testing"

	"github.com/arzzra/call_ui/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventHandler func(value int, data any)

// recorder тестовый слушатель, считает полученные события
type recorder struct {
	name  string
	calls []int
	hook  func()
}

func (r *recorder) onEvent(value int, data any) {
	r.calls = append(r.calls, value)
	if r.hook != nil {
		r.hook()
	}
}

func dispatch(t *testing.T, c *Collection[eventHandler], value int) {
	t.Helper()
	require.NoError(t, c.Dispatch(func(h eventHandler, data any) { h(value, data) }))
}

func TestInitTwiceFails(t *testing.T) {
	var c Collection[eventHandler]
	require.NoError(t, c.Init())
	err := c.Init()
	assert.ErrorIs(t, err, result.ErrFail)

	require.NoError(t, c.Deinit())
	assert.ErrorIs(t, c.Deinit(), result.ErrFail)
}

func TestOperationsRequireInit(t *testing.T) {
	var c Collection[eventHandler]
	r := &recorder{}

	assert.ErrorIs(t, c.Add(r.onEvent, r), result.ErrFail)
	assert.ErrorIs(t, c.Remove(r.onEvent, r), result.ErrFail)
	assert.ErrorIs(t, c.Dispatch(func(eventHandler, any) {}), result.ErrFail)
}

func TestAddInvalidParams(t *testing.T) {
	c := New[eventHandler]()

	assert.ErrorIs(t, c.Add(nil, nil), result.ErrInvalidParam)
	assert.ErrorIs(t, c.Add(func(int, any) {}, []int{1}), result.ErrInvalidParam)
	assert.ErrorIs(t, c.Dispatch(nil), result.ErrInvalidParam)
}

// Повторная регистрация той же пары дает ALREADY_REGISTERED и одну доставку
func TestDuplicateRegistration(t *testing.T) {
	c := New[eventHandler]()
	r := &recorder{}

	require.NoError(t, c.Add(r.onEvent, r))
	assert.ErrorIs(t, c.Add(r.onEvent, r), result.ErrAlreadyRegistered)

	dispatch(t, c, 7)
	assert.Equal(t, []int{7}, r.calls)
}

func TestSameCallbackDifferentData(t *testing.T) {
	c := New[eventHandler]()
	r1, r2 := &recorder{name: "r1"}, &recorder{name: "r2"}

	require.NoError(t, c.Add(r1.onEvent, r1))
	require.NoError(t, c.Add(r2.onEvent, r2))
	assert.Equal(t, 2, c.Len())

	dispatch(t, c, 1)
	assert.Equal(t, []int{1}, r1.calls)
	assert.Equal(t, []int{1}, r2.calls)
}

func TestRemoveNotRegistered(t *testing.T) {
	c := New[eventHandler]()
	r := &recorder{}
	assert.ErrorIs(t, c.Remove(r.onEvent, r), result.ErrNotRegistered)

	require.NoError(t, c.Add(r.onEvent, r))
	require.NoError(t, c.Remove(r.onEvent, r))
	assert.ErrorIs(t, c.Remove(r.onEvent, r), result.ErrNotRegistered)
	assert.Equal(t, 0, c.Len())
}

func TestDispatchOrder(t *testing.T) {
	c := New[eventHandler]()
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		require.NoError(t, c.Add(func(int, any) { order = append(order, name) }, name))
	}

	dispatch(t, c, 0)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

// L1 удаляет L2 во время рассылки, вторая рассылка доходит только до L1
func TestRemoveOtherDuringDispatch(t *testing.T) {
	c := New[eventHandler]()
	l1, l2 := &recorder{name: "L1"}, &recorder{name: "L2"}
	l1.hook = func() {
		require.NoError(t, c.Remove(l2.onEvent, l2))
	}
	require.NoError(t, c.Add(l1.onEvent, l1))
	require.NoError(t, c.Add(l2.onEvent, l2))

	dispatch(t, c, 1)
	assert.False(t, c.IsLocked())
	assert.Equal(t, 1, c.Len())

	l1.hook = nil
	dispatch(t, c, 2)
	assert.Equal(t, []int{1, 2}, l1.calls)
	assert.Empty(t, l2.calls)
}

// Удаление себя и соседа не приводит к пропуску или двойному вызову остальных
func TestRemoveSelfDuringDispatch(t *testing.T) {
	c := New[eventHandler]()
	l1, l2, l3, l4 := &recorder{}, &recorder{}, &recorder{}, &recorder{}
	l2.hook = func() {
		require.NoError(t, c.Remove(l2.onEvent, l2))
		require.NoError(t, c.Remove(l1.onEvent, l1))
	}
	for _, r := range []*recorder{l1, l2, l3, l4} {
		require.NoError(t, c.Add(r.onEvent, r))
	}

	dispatch(t, c, 5)
	assert.Equal(t, []int{5}, l1.calls)
	assert.Equal(t, []int{5}, l2.calls)
	assert.Equal(t, []int{5}, l3.calls)
	assert.Equal(t, []int{5}, l4.calls)
	assert.Equal(t, 2, c.Len())

	dispatch(t, c, 6)
	assert.Equal(t, []int{5}, l1.calls)
	assert.Equal(t, []int{5}, l2.calls)
	assert.Equal(t, []int{5, 6}, l3.calls)
	assert.Equal(t, []int{5, 6}, l4.calls)
}

func TestAddDuringDispatchNotVisited(t *testing.T) {
	c := New[eventHandler]()
	late := &recorder{}
	first := &recorder{}
	first.hook = func() {
		_ = c.Add(late.onEvent, late)
	}
	require.NoError(t, c.Add(first.onEvent, first))

	dispatch(t, c, 1)
	assert.Empty(t, late.calls)

	first.hook = nil
	dispatch(t, c, 2)
	assert.Equal(t, []int{2}, late.calls)
}

func TestReAddAfterRemovalDuringDispatch(t *testing.T) {
	c := New[eventHandler]()
	r := &recorder{}
	r.hook = func() {
		require.NoError(t, c.Remove(r.onEvent, r))
		require.NoError(t, c.Add(r.onEvent, r))
	}
	require.NoError(t, c.Add(r.onEvent, r))

	dispatch(t, c, 1)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []int{1}, r.calls)
}

func TestNestedDispatchRejected(t *testing.T) {
	c := New[eventHandler]()
	var nestedErr error
	r := &recorder{}
	r.hook = func() {
		nestedErr = c.Dispatch(func(h eventHandler, data any) { h(99, data) })
	}
	require.NoError(t, c.Add(r.onEvent, r))

	dispatch(t, c, 1)
	assert.ErrorIs(t, nestedErr, result.ErrFail)
	assert.Equal(t, []int{1}, r.calls)
}

func TestDeinitDuringDispatchRejected(t *testing.T) {
	c := New[eventHandler]()
	var deinitErr error
	r := &recorder{}
	r.hook = func() { deinitErr = c.Deinit() }
	require.NoError(t, c.Add(r.onEvent, r))

	dispatch(t, c, 1)
	assert.ErrorIs(t, deinitErr, result.ErrFail)
	assert.Equal(t, 1, c.Len())
}

// Паника обработчика не оставляет коллекцию заблокированной
func TestPanicInHandlerUnlocks(t *testing.T) {
	c := New[eventHandler]()
	first := &recorder{}
	second := &recorder{}
	first.hook = func() {
		if len(first.calls) == 1 {
			require.NoError(t, c.Remove(second.onEvent, second))
			panic("render failed")
		}
	}
	require.NoError(t, c.Add(first.onEvent, first))
	require.NoError(t, c.Add(second.onEvent, second))

	assert.Panics(t, func() {
		_ = c.Dispatch(func(h eventHandler, data any) { h(1, data) })
	})
	assert.False(t, c.IsLocked())
	assert.Equal(t, 1, c.Len())

	dispatch(t, c, 2)
	assert.Equal(t, []int{1, 2}, first.calls)
	assert.Empty(t, second.calls)
}

// Замыкания одного литерала различаются только через userData
func TestClosuresShareIdentity(t *testing.T) {
	c := New[eventHandler]()
	var got []string
	mk := func(name string) eventHandler {
		return func(int, any) { got = append(got, name) }
	}

	require.NoError(t, c.Add(mk("a"), nil))
	assert.ErrorIs(t, c.Add(mk("b"), nil), result.ErrAlreadyRegistered)

	keyB := &recorder{name: "b"}
	require.NoError(t, c.Add(mk("b"), keyB))
	dispatch(t, c, 0)
	assert.Equal(t, []string{"a", "b"}, got)
}
