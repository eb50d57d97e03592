package views

import (
	"github.com/arzzra/call_ui/pkg/call_manager"
)

// incomingView полный экран входящего вызова и уведомление о нем
type incomingView struct {
	base
}

func (v *incomingView) Create() error {
	v.render = v.build
	v.visible = !v.host.IsPaused()
	v.publish()
	return nil
}

func (v *incomingView) Update() error {
	v.publish()
	return nil
}

func (v *incomingView) Destroy() error {
	v.closed()
	return nil
}

func (v *incomingView) OnShow() {
	v.visible = true
	v.publish()
}

func (v *incomingView) OnHide() {
	v.visible = false
}

func (v *incomingView) build() Screen {
	s := v.screen()
	state := v.host.State()
	if rec := state.CallData(call_manager.CategoryIncoming); rec != nil {
		s.Calls = append(s.Calls, summarize(rec, call_manager.CategoryIncoming))
	}
	for _, cat := range []call_manager.Category{call_manager.CategoryActive, call_manager.CategoryHeld} {
		if rec := state.CallData(cat); rec != nil {
			s.Calls = append(s.Calls, summarize(rec, cat))
		}
	}
	s.Options = answerOptionNames(v.host.AnswerOptions())
	return s
}
