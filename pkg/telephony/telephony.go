// Package telephony описывает контракт с платформенным клиентом телефонии:
// снимки вызовов, события жизненного цикла, статус набора номера, аудио и
// коды ошибок платформы. Ядро работает только через эти интерфейсы.
package telephony

import (
	"fmt"
	"time"
)

// SimSlot слот SIM карты
type SimSlot int

const (
	SimSlotDefault SimSlot = iota
	SimSlot1
	SimSlot2
)

// CallState состояние вызова на стороне платформы
type CallState int

const (
	CallStateIdle CallState = iota
	CallStateActive
	CallStateHeld
	CallStateDialing
	CallStateAlert
	CallStateIncoming
	CallStateWaiting
)

var callStateNames = [...]string{"idle", "active", "held", "dialing", "alert", "incoming", "waiting"}

func (s CallState) String() string {
	if int(s) >= 0 && int(s) < len(callStateNames) {
		return callStateNames[s]
	}
	return fmt.Sprintf("CallState(%d)", int(s))
}

// CallData платформенный снимок одного вызова
type CallData struct {
	CallID      uint32
	State       CallState
	Number      string
	CallingName string
	// PersonID идентификатор контакта в адресной книге, 0 если неизвестен
	PersonID    int
	// StartTime время начала вызова по монотонному счетчику uptime
	StartTime   time.Duration
	Emergency   bool
	MemberCount int
}

// ConferenceMember участник конференции
type ConferenceMember struct {
	CallID   uint32
	Number   string
	PersonID int
}

// EventType тип события жизненного цикла вызова
type EventType int

const (
	EventEnd EventType = iota
	EventDialing
	EventActive
	EventHeld
	EventAlert
	EventIncoming
	EventWaiting
	EventJoin
	EventSplit
	EventSwapped
	EventRetrieved
	EventSatCallControl
)

var eventTypeNames = [...]string{
	"END", "DIALING", "ACTIVE", "HELD", "ALERT", "INCOMING", "WAITING",
	"JOIN", "SPLIT", "SWAPPED", "RETRIEVED", "SAT_CALL_CONTROL",
}

func (e EventType) String() string {
	if int(e) >= 0 && int(e) < len(eventTypeNames) {
		return eventTypeNames[e]
	}
	return fmt.Sprintf("EventType(%d)", int(e))
}

// Valid проверяет, что тип события входит в известный набор
func (e EventType) Valid() bool {
	return e >= EventEnd && e <= EventSatCallControl
}

// EventData данные события платформы. Любой из трех снимков может отсутствовать.
type EventData struct {
	CallID   uint32
	SimSlot  SimSlot
	Incoming *CallData
	Active   *CallData
	Held     *CallData
}

// HasCalls сообщает, есть ли в событии хотя бы один снимок вызова
func (d *EventData) HasCalls() bool {
	return d != nil && (d.Incoming != nil || d.Active != nil || d.Held != nil)
}

// ReleaseType какие вызовы завершить
type ReleaseType int

const (
	ReleaseByCallHandle ReleaseType = iota
	ReleaseAll
	ReleaseAllHeld
	ReleaseAllActive
)

var releaseTypeNames = [...]string{"by_call_handle", "all", "all_held", "all_active"}

func (r ReleaseType) String() string {
	if r.Valid() {
		return releaseTypeNames[r]
	}
	return fmt.Sprintf("ReleaseType(%d)", int(r))
}

// Valid проверяет диапазон
func (r ReleaseType) Valid() bool {
	return r >= ReleaseByCallHandle && r <= ReleaseAllActive
}

// AnswerType как принять входящий вызов при наличии других вызовов
type AnswerType int

const (
	AnswerNormal AnswerType = iota
	AnswerHoldActiveAndAccept
	AnswerReleaseActiveAndAccept
	AnswerReleaseHeldAndAccept
	AnswerReleaseAllAndAccept
)

var answerTypeNames = [...]string{
	"normal", "hold_active_and_accept", "release_active_and_accept",
	"release_held_and_accept", "release_all_and_accept",
}

func (a AnswerType) String() string {
	if a.Valid() {
		return answerTypeNames[a]
	}
	return fmt.Sprintf("AnswerType(%d)", int(a))
}

// Valid проверяет диапазон
func (a AnswerType) Valid() bool {
	return a >= AnswerNormal && a <= AnswerReleaseAllAndAccept
}

// DialStatus результат попытки исходящего вызова
type DialStatus int

const (
	DialSuccess DialStatus = iota
	DialCancel
	DialFail
	DialFailSS
	DialFailFDN
	DialFailFlightMode
)

var dialStatusNames = [...]string{"success", "cancel", "fail", "fail_ss", "fail_fdn", "fail_flight_mode"}

func (s DialStatus) String() string {
	if s >= DialSuccess && s <= DialFailFlightMode {
		return dialStatusNames[s]
	}
	return fmt.Sprintf("DialStatus(%d)", int(s))
}

// AudioRoute текущий аудио маршрут
type AudioRoute int

const (
	AudioRouteNone AudioRoute = iota
	AudioRouteSpeaker
	AudioRouteReceiver
	AudioRouteEarjack
	AudioRouteBluetooth
)

var audioRouteNames = [...]string{"none", "speaker", "receiver", "earjack", "bluetooth"}

func (r AudioRoute) String() string {
	if r >= AudioRouteNone && r <= AudioRouteBluetooth {
		return audioRouteNames[r]
	}
	return fmt.Sprintf("AudioRoute(%d)", int(r))
}

// CallEventHandler колбэк событий жизненного цикла вызова
type CallEventHandler func(event EventType, data *EventData)

// DialStatusHandler колбэк статуса набора номера
type DialStatusHandler func(status DialStatus)

// Client платформенный клиент управления вызовами.
//
// Все методы синхронные и неблокирующие: результат действия приходит позже
// через CallEventHandler в том же цикле событий.
type Client interface {
	Dial(number string, slot SimSlot) error
	End(callID uint32, release ReleaseType) error
	Hold() error
	Unhold() error
	Swap() error
	Join() error
	Split(callID uint32) error
	Reject() error
	StopAlert() error
	Answer(answer AnswerType) error

	// AllCallData возвращает текущие снимки входящего, активного и удержанного вызовов
	AllCallData() (incoming, active, held *CallData, err error)
	ConferenceMembers() ([]ConferenceMember, error)

	SetCallEventHandler(handler CallEventHandler)
	SetDialStatusHandler(handler DialStatusHandler)
}

// AudioClient платформенное управление звуком в вызове
type AudioClient interface {
	AudioRoute() (AudioRoute, error)
	IsMuted() (bool, error)
	SetSpeaker(on bool) error
	SetBluetooth(on bool) error
	SetMute(on bool) error

	SetAudioRouteHandler(handler func(route AudioRoute))
	SetMuteHandler(handler func(muted bool))
}
