// Package listeners реализует типизированную коллекцию подписчиков, общую для
// всех компонентов ядра с состоянием.
//
// Коллекция рассчитана на однопоточный цикл событий: блокировок нет, флаг
// locked нужен только чтобы отложить удаление записей во время рассылки.
// Обработчик может удалить любого слушателя, в том числе самого себя, прямо
// из Dispatch; такая запись помечается и физически удаляется после обхода.
package listeners

import (
	"reflect"

	"github.com/arzzra/call_ui/pkg/result"
)

type entry[H any] struct {
	handler H
	key     uintptr
	data    any
	removed bool
}

// Collection коллекция слушателей одного типа события.
//
// Идентичность записи - пара (адрес кода обработчика, userData). Два замыкания
// из одного литерала считаются одним обработчиком, поэтому различать их нужно
// через userData. Нулевое значение не готово к работе, нужен Init или New.
type Collection[H any] struct {
	entries      []*entry[H]
	initialized  bool
	locked       bool
	needsCleanup bool
}

// New создает и инициализирует коллекцию
func New[H any]() *Collection[H] {
	c := &Collection[H]{}
	_ = c.Init()
	return c
}

// Init помечает коллекцию готовой к работе. Повторный вызов возвращает FAIL.
func (c *Collection[H]) Init() error {
	if c.initialized {
		return result.New(result.Fail, "listeners.Init", "already initialized")
	}
	c.entries = nil
	c.locked = false
	c.needsCleanup = false
	c.initialized = true
	return nil
}

// Deinit освобождает все записи и возвращает коллекцию в неинициализированное
// состояние. Во время рассылки вызывать нельзя.
func (c *Collection[H]) Deinit() error {
	if !c.initialized {
		return result.New(result.Fail, "listeners.Deinit", "not initialized")
	}
	if c.locked {
		return result.New(result.Fail, "listeners.Deinit", "dispatch in progress")
	}
	c.entries = nil
	c.needsCleanup = false
	c.initialized = false
	return nil
}

// Add добавляет слушателя в конец коллекции.
//
// Замыкания из одного литерала и method value одного метода на разных
// получателях имеют общий адрес кода. С nil userData второй такой слушатель
// получит ALREADY_REGISTERED; передавайте в userData получателя или другой
// различающий ключ.
func (c *Collection[H]) Add(handler H, userData any) error {
	const op = "listeners.Add"
	key, err := handlerKey(handler, op)
	if err != nil {
		return err
	}
	if userData != nil && !reflect.TypeOf(userData).Comparable() {
		return result.New(result.InvalidParam, op, "user data is not comparable")
	}
	if !c.initialized {
		return result.New(result.Fail, op, "not initialized")
	}
	if c.find(key, userData) >= 0 {
		return result.New(result.AlreadyRegistered, op, "")
	}
	c.entries = append(c.entries, &entry[H]{handler: handler, key: key, data: userData})
	return nil
}

// Remove удаляет слушателя. Во время рассылки запись только помечается.
func (c *Collection[H]) Remove(handler H, userData any) error {
	const op = "listeners.Remove"
	key, err := handlerKey(handler, op)
	if err != nil {
		return err
	}
	if userData != nil && !reflect.TypeOf(userData).Comparable() {
		return result.New(result.InvalidParam, op, "user data is not comparable")
	}
	if !c.initialized {
		return result.New(result.Fail, op, "not initialized")
	}
	idx := c.find(key, userData)
	if idx < 0 {
		return result.New(result.NotRegistered, op, "")
	}
	if c.locked {
		e := c.entries[idx]
		var zero H
		e.handler = zero
		e.data = nil
		e.removed = true
		c.needsCleanup = true
		return nil
	}
	c.entries = append(c.entries[:idx], c.entries[idx+1:]...)
	return nil
}

// Dispatch вызывает invoke для каждого живого слушателя в порядке регистрации.
// Слушатели, добавленные во время обхода, в этом обходе не вызываются.
func (c *Collection[H]) Dispatch(invoke func(handler H, userData any)) error {
	const op = "listeners.Dispatch"
	if invoke == nil {
		return result.New(result.InvalidParam, op, "nil invoker")
	}
	if !c.initialized {
		return result.New(result.Fail, op, "not initialized")
	}
	if c.locked {
		return result.New(result.Fail, op, "nested dispatch")
	}

	c.locked = true
	// паника обработчика не должна оставить коллекцию заблокированной
	defer func() {
		c.locked = false
		if c.needsCleanup {
			c.sweep()
		}
	}()

	n := len(c.entries)
	for i := 0; i < n; i++ {
		e := c.entries[i]
		if e.removed {
			continue
		}
		invoke(e.handler, e.data)
	}
	return nil
}

// Len возвращает количество живых слушателей
func (c *Collection[H]) Len() int {
	n := 0
	for _, e := range c.entries {
		if !e.removed {
			n++
		}
	}
	return n
}

// IsLocked сообщает, идет ли сейчас рассылка
func (c *Collection[H]) IsLocked() bool {
	return c.locked
}

func (c *Collection[H]) find(key uintptr, userData any) int {
	for i, e := range c.entries {
		if e.removed {
			continue
		}
		if e.key == key && e.data == userData {
			return i
		}
	}
	return -1
}

func (c *Collection[H]) sweep() {
	alive := c.entries[:0]
	for _, e := range c.entries {
		if !e.removed {
			alive = append(alive, e)
		}
	}
	for i := len(alive); i < len(c.entries); i++ {
		c.entries[i] = nil
	}
	c.entries = alive
	c.needsCleanup = false
}

func handlerKey[H any](handler H, op string) (uintptr, error) {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		return 0, result.New(result.InvalidParam, op, "handler is not a function")
	}
	if v.IsNil() {
		return 0, result.New(result.InvalidParam, op, "nil handler")
	}
	return v.Pointer(), nil
}
