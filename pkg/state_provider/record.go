package state_provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/telephony"
)

// ContactSnippet краткие данные контакта для отображения
type ContactSnippet struct {
	PersonID   int
	Name       string
	AvatarPath string
}

// Record нормализованный снимок одного вызова.
//
// Записи принадлежат провайдеру и заменяются целиком на каждом событии.
// Указатель, полученный от провайдера, нельзя изменять и нельзя хранить
// дольше обработки текущего события; для хранения используйте Clone.
type Record struct {
	CallID        uint32
	Category      call_manager.Category
	Number        string
	DisplayNumber string
	StartTime     time.Duration
	Emergency     bool
	Dialing       bool
	MemberCount   int
	Contact       ContactSnippet
}

// Clone возвращает независимую копию записи
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// IsConference сообщает, является ли вызов конференцией
func (r *Record) IsConference() bool {
	return r != nil && r.MemberCount > 1
}

// ConferenceMember участник конференции
type ConferenceMember struct {
	CallID  uint32
	Number  string
	Contact ContactSnippet
}

// Duration длительность вызова, разложенная на часы, минуты и секунды
type Duration struct {
	Hours   int
	Minutes int
	Seconds int
}

// NewDuration раскладывает длительность. Отрицательное значение дает ноль.
func NewDuration(d time.Duration) Duration {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return Duration{
		Hours:   total / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

// Total возвращает длительность в виде time.Duration
func (d Duration) Total() time.Duration {
	return time.Duration(d.Hours)*time.Hour + time.Duration(d.Minutes)*time.Minute + time.Duration(d.Seconds)*time.Second
}

// String форматирует длительность; часы выводятся только если они не нулевые
func (d Duration) String() string {
	if d.Hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", d.Hours, d.Minutes, d.Seconds)
	}
	return fmt.Sprintf("%02d:%02d", d.Minutes, d.Seconds)
}

// formatNumber приводит номер к виду для отображения: убирает схему tel:,
// пробелы и разделители, сохраняя ведущий плюс
func formatNumber(number string) string {
	number = strings.TrimPrefix(strings.TrimSpace(number), "tel:")
	var b strings.Builder
	for i, r := range number {
		switch {
		case r >= '0' && r <= '9', r == '*', r == '#', r == ',', r == ';':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ', r == '-', r == '(', r == ')', r == '.':
		default:
			return number
		}
	}
	return b.String()
}

func isDialingState(s telephony.CallState) bool {
	return s == telephony.CallStateDialing || s == telephony.CallStateAlert
}
