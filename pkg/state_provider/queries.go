package state_provider

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/result"
)

// CallData возвращает запись вызова категории или nil.
// Запись принадлежит провайдеру, см. Record.
func (p *Provider) CallData(category call_manager.Category) *Record {
	if !category.Valid() {
		return nil
	}
	return p.slots[category]
}

// LastEndedCallData возвращает последний завершенный вызов, если после него
// еще не было событий
func (p *Provider) LastEndedCallData() *Record {
	return p.lastEnded
}

// IsAnyCallAvailable сообщает, есть ли хотя бы один вызов в снимке
func (p *Provider) IsAnyCallAvailable() bool {
	for _, rec := range p.slots {
		if rec != nil {
			return true
		}
	}
	return false
}

// CallCount количество занятых ячеек
func (p *Provider) CallCount() int {
	n := 0
	for _, rec := range p.slots {
		if rec != nil {
			n++
		}
	}
	return n
}

// Snapshot независимая копия всех трех ячеек
type Snapshot struct {
	Incoming  *Record
	Active    *Record
	Held      *Record
	LastEnded *Record
}

// Snapshot возвращает копию текущего состояния, которую можно хранить
func (p *Provider) Snapshot() Snapshot {
	return Snapshot{
		Incoming:  p.slots[call_manager.CategoryIncoming].Clone(),
		Active:    p.slots[call_manager.CategoryActive].Clone(),
		Held:      p.slots[call_manager.CategoryHeld].Clone(),
		LastEnded: p.lastEnded.Clone(),
	}
}

// CallDuration возвращает длительность вызова категории по монотонным часам.
// Второе значение false, если вызова в ячейке нет.
func (p *Provider) CallDuration(category call_manager.Category) (Duration, bool) {
	rec := p.CallData(category)
	if rec == nil {
		return Duration{}, false
	}
	return NewDuration(p.uptime.Uptime() - rec.StartTime), true
}

// ConferenceMembers запрашивает участников конференции активного, а если его
// нет, удержанного вызова. Возвращает nil, если конференции нет. Срез
// принадлежит вызывающему.
func (p *Provider) ConferenceMembers() ([]ConferenceMember, error) {
	if !p.slots[call_manager.CategoryActive].IsConference() && !p.slots[call_manager.CategoryHeld].IsConference() {
		return nil, nil
	}

	members, err := p.source.ConferenceMembers()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	out := make([]ConferenceMember, 0, len(members))
	for _, m := range members {
		contact, err := p.resolve(m.PersonID, m.Number, "")
		if err != nil {
			// участник без контакта все равно показывается по номеру
			p.logger.Warn("conference member contact lookup failed",
				slog.Int("call_id", int(m.CallID)),
				slog.String("error", err.Error()))
			contact = ContactSnippet{PersonID: m.PersonID}
		}
		out = append(out, ConferenceMember{
			CallID:  m.CallID,
			Number:  formatNumber(m.Number),
			Contact: contact,
		})
	}
	return out, nil
}

// Validate проверяет, что один id не встречается в двух ячейках
func (s Snapshot) Validate() error {
	seen := map[uint32]bool{}
	for _, rec := range []*Record{s.Incoming, s.Active, s.Held} {
		if rec == nil {
			continue
		}
		if seen[rec.CallID] {
			return result.Newf(result.Fail, "state_provider.Snapshot", "call %d occupies two slots", rec.CallID)
		}
		seen[rec.CallID] = true
	}
	return nil
}
