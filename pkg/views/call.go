package views

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/call_manager"
)

// callView экраны разговора: набор, один вызов, два вызова, конференция,
// список участников и панель быстрого доступа. Пока экран виден,
// длительность обновляется таймером.
type callView struct {
	base
	withMembers bool
	ticker      Timer
}

func (v *callView) Create() error {
	v.render = v.build
	if err := v.subscribe(); err != nil {
		return err
	}
	v.visible = !v.host.IsPaused()
	if v.visible {
		v.startTicker()
	}
	v.publish()
	return nil
}

func (v *callView) Update() error {
	v.publish()
	return nil
}

func (v *callView) Destroy() error {
	v.stopTicker()
	v.unsubscribe()
	v.closed()
	return nil
}

func (v *callView) OnShow() {
	v.visible = true
	v.startTicker()
	v.publish()
}

func (v *callView) OnHide() {
	v.visible = false
	v.stopTicker()
	v.publish()
}

func (v *callView) startTicker() {
	if v.ticker != nil {
		return
	}
	v.ticker = v.opts.Scheduler.Every(v.opts.TickInterval, v.tick)
}

// stopTicker обнуляет ссылку до остановки, tick проверяет ее
func (v *callView) stopTicker() {
	t := v.ticker
	v.ticker = nil
	if t != nil {
		t.Stop()
	}
}

func (v *callView) tick() {
	if v.ticker == nil {
		return
	}
	v.publish()
}

func (v *callView) build() Screen {
	s := v.screen()
	state := v.host.State()
	for _, cat := range []call_manager.Category{call_manager.CategoryActive, call_manager.CategoryHeld} {
		rec := state.CallData(cat)
		if rec == nil {
			continue
		}
		sum := summarize(rec, cat)
		if !rec.Dialing {
			if d, ok := state.CallDuration(cat); ok {
				sum.Duration = d.String()
			}
		}
		s.Calls = append(s.Calls, sum)
	}

	if v.withMembers {
		members, err := state.ConferenceMembers()
		if err != nil {
			v.logger.Warn("conference members", slog.String("error", err.Error()))
		}
		for _, m := range members {
			s.Members = append(s.Members, Member{CallID: m.CallID, Name: m.Contact.Name, Number: m.Number})
		}
	}
	return s
}
