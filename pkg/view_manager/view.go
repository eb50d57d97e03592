package view_manager

import (
	"fmt"

	"github.com/arzzra/call_ui/pkg/result"
)

// ViewID идентификатор экрана. Совпадает с именем состояния машины.
type ViewID string

const (
	Undefined            ViewID = "undefined"
	Dialing              ViewID = "dialing"
	IncomingLock         ViewID = "incoming_lock"
	SingleCall           ViewID = "single_call"
	MulticallSplit       ViewID = "multicall_split"
	MulticallConference  ViewID = "multicall_conference"
	MulticallList        ViewID = "multicall_list"
	EndCall              ViewID = "end_call"
	IncomingNotification ViewID = "incoming_notification"
	Quickpanel           ViewID = "quickpanel"
)

// Views все экраны кроме Undefined, в порядке объявления
var Views = []ViewID{
	Dialing,
	IncomingLock,
	SingleCall,
	MulticallSplit,
	MulticallConference,
	MulticallList,
	EndCall,
	IncomingNotification,
	Quickpanel,
}

// Valid проверяет, что id входит в набор экранов или равен Undefined
func (id ViewID) Valid() bool {
	if id == Undefined {
		return true
	}
	for _, v := range Views {
		if v == id {
			return true
		}
	}
	return false
}

// IsIncoming экран входящего вызова (полный или уведомление)
func (id ViewID) IsIncoming() bool {
	return id == IncomingLock || id == IncomingNotification
}

// IsMulticall экраны с несколькими вызовами
func (id ViewID) IsMulticall() bool {
	return id == MulticallSplit || id == MulticallConference || id == MulticallList
}

func (id ViewID) String() string {
	return string(id)
}

// View экземпляр экрана. Manager владеет его жизненным циклом:
// Create -> Update* -> Destroy.
//
// Destroy обязан быть безопасным после неудачного Create.
type View interface {
	Create() error
	Destroy() error
}

// Updater экран, умеющий обновиться без пересоздания
type Updater interface {
	Update() error
}

// Visibility экран, которому важна видимость окна приложения
type Visibility interface {
	OnShow()
	OnHide()
}

// Factory создает новый экземпляр экрана
type Factory func(id ViewID) (View, error)

// ErrNoCall нет вызова, для которого можно выбрать экран
var ErrNoCall = result.New(result.Fail, "view_manager.AutoChangeView", "no call to show")

func eventName(id ViewID) string {
	return fmt.Sprintf("show_%s", id)
}
