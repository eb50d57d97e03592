package call_manager

import "fmt"

// Category категория вызова: одна из трех одновременных ячеек модели
type Category int

const (
	CategoryIncoming Category = iota
	CategoryActive
	CategoryHeld
)

var categoryNames = [...]string{"incoming", "active", "held"}

func (c Category) String() string {
	if c.Valid() {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Valid проверяет диапазон
func (c Category) Valid() bool {
	return c >= CategoryIncoming && c <= CategoryHeld
}
