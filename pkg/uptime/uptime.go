// Package uptime дает монотонный счетчик времени работы системы, по которому
// считается длительность вызовов. Перевод системных часов на него не влияет.
package uptime

import (
	"sync"
	"time"
)

// Source источник монотонного uptime
type Source interface {
	Uptime() time.Duration
}

// SourceFunc адаптер функции к Source
type SourceFunc func() time.Duration

// Uptime реализует Source
func (f SourceFunc) Uptime() time.Duration {
	return f()
}

// System возвращает системный источник uptime
func System() Source {
	return systemSource{}
}

// Manual источник с ручным управлением для детерминированных тестов
type Manual struct {
	mu  sync.Mutex
	now time.Duration
}

// NewManual создает источник с начальным значением
func NewManual(start time.Duration) *Manual {
	return &Manual{now: start}
}

// Uptime реализует Source
func (m *Manual) Uptime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance сдвигает время вперед. Отрицательный сдвиг игнорируется.
func (m *Manual) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Set устанавливает значение, если оно не меньше текущего
func (m *Manual) Set(v time.Duration) {
	m.mu.Lock()
	if v > m.now {
		m.now = v
	}
	m.mu.Unlock()
}
