// Package views экраны вызова без отрисовки. Каждый экран собирает описание
// Screen из снимка состояния и публикует его; рисуют удаленные клиенты.
package views

import (
	"time"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/state_provider"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/view_manager"
)

// CallSummary данные одного вызова для отрисовки
type CallSummary struct {
	CallID    uint32 `json:"call_id"`
	Category  string `json:"category"`
	Name      string `json:"name,omitempty"`
	Number    string `json:"number"`
	Avatar    string `json:"avatar,omitempty"`
	Emergency bool   `json:"emergency,omitempty"`
	Dialing   bool   `json:"dialing,omitempty"`
	Members   int    `json:"members"`
	Duration  string `json:"duration,omitempty"`
}

// Member участник конференции
type Member struct {
	CallID uint32 `json:"call_id"`
	Name   string `json:"name,omitempty"`
	Number string `json:"number"`
}

// Screen описание текущего экрана
type Screen struct {
	View    view_manager.ViewID `json:"view"`
	Visible bool                `json:"visible"`
	Calls   []CallSummary       `json:"calls,omitempty"`
	Members []Member            `json:"members,omitempty"`
	Options []string            `json:"answer_options,omitempty"`
	Muted   bool                `json:"muted"`
	Route   string              `json:"route"`
	// Closed экран уничтожен
	Closed bool `json:"closed,omitempty"`
}

// Publisher получатель описаний экранов
type Publisher interface {
	Publish(screen Screen)
}

// PublisherFunc адаптер функции к Publisher
type PublisherFunc func(screen Screen)

// Publish реализует Publisher
func (f PublisherFunc) Publish(screen Screen) { f(screen) }

func summarize(rec *state_provider.Record, category call_manager.Category) CallSummary {
	return CallSummary{
		CallID:    rec.CallID,
		Category:  category.String(),
		Name:      rec.Contact.Name,
		Number:    rec.DisplayNumber,
		Avatar:    rec.Contact.AvatarPath,
		Emergency: rec.Emergency,
		Dialing:   rec.Dialing,
		Members:   rec.MemberCount,
	}
}

func answerOptionNames(options []telephony.AnswerType) []string {
	if len(options) == 0 {
		return nil
	}
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.String()
	}
	return out
}

func formatElapsed(d time.Duration) string {
	return state_provider.NewDuration(d).String()
}
