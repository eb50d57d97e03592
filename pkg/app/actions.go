package app

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/view_manager"
)

// Action действие пользователя на экране вызова
type Action string

const (
	ActionAnswer              Action = "answer"
	ActionAnswerHoldActive    Action = "answer_hold_active"
	ActionAnswerReleaseActive Action = "answer_release_active"
	ActionAnswerReleaseHeld   Action = "answer_release_held"
	ActionAnswerReleaseAll    Action = "answer_release_all"
	ActionReject              Action = "reject"
	ActionStopAlert           Action = "stop_alert"
	ActionShowIncoming        Action = "show_incoming"
	ActionEnd                 Action = "end"
	ActionEndActive           Action = "end_active"
	ActionEndHeld             Action = "end_held"
	ActionHold                Action = "hold"
	ActionUnhold              Action = "unhold"
	ActionSwap                Action = "swap"
	ActionJoin                Action = "join"
	ActionSplit               Action = "split"
	ActionMute                Action = "mute"
	ActionUnmute              Action = "unmute"
	ActionSpeakerOn           Action = "speaker_on"
	ActionSpeakerOff          Action = "speaker_off"
	ActionListEnd             Action = "list_end"
)

var answerActions = map[Action]telephony.AnswerType{
	ActionAnswerHoldActive:    telephony.AnswerHoldActiveAndAccept,
	ActionAnswerReleaseActive: telephony.AnswerReleaseActiveAndAccept,
	ActionAnswerReleaseHeld:   telephony.AnswerReleaseHeldAndAccept,
	ActionAnswerReleaseAll:    telephony.AnswerReleaseAllAndAccept,
}

// AnswerOptions варианты приема входящего вызова при текущих вызовах.
// Первый вариант используется для простого ответа.
func (a *App) AnswerOptions() []telephony.AnswerType {
	if a.state.CallData(call_manager.CategoryIncoming) == nil {
		return nil
	}
	active := a.state.CallData(call_manager.CategoryActive)
	held := a.state.CallData(call_manager.CategoryHeld)
	switch {
	case active != nil && held != nil:
		return []telephony.AnswerType{
			telephony.AnswerReleaseActiveAndAccept,
			telephony.AnswerReleaseHeldAndAccept,
			telephony.AnswerReleaseAllAndAccept,
		}
	case active != nil:
		return []telephony.AnswerType{
			telephony.AnswerHoldActiveAndAccept,
			telephony.AnswerReleaseActiveAndAccept,
		}
	case held != nil:
		return []telephony.AnswerType{
			telephony.AnswerNormal,
			telephony.AnswerReleaseHeldAndAccept,
		}
	}
	return []telephony.AnswerType{telephony.AnswerNormal}
}

// Perform выполняет действие пользователя. callID нужен для end и split.
// Ошибка логируется; экран не откатывается, а выводится из следующего события.
func (a *App) Perform(action Action, callID uint32) error {
	if !a.created {
		return result.New(result.Fail, "app.Perform", "app is not created")
	}
	err := a.perform(action, callID)
	if err == nil {
		return nil
	}
	a.logger.Warn("action failed",
		slog.String("action", string(action)),
		slog.Int("call_id", int(callID)),
		slog.String("error", err.Error()))
	if result.CodeOf(err) != result.InvalidParam &&
		!a.state.IsAnyCallAvailable() && a.views.Current() != view_manager.EndCall {
		a.Exit()
	}
	return err
}

func (a *App) perform(action Action, callID uint32) error {
	if answer, ok := answerActions[action]; ok {
		return a.calls.Answer(answer)
	}

	switch action {
	case ActionAnswer:
		options := a.AnswerOptions()
		if len(options) == 0 {
			return result.New(result.Fail, "app.Perform", "no incoming call")
		}
		return a.calls.Answer(options[0])
	case ActionReject:
		return a.calls.Reject()
	case ActionStopAlert:
		return a.calls.StopAlert()
	case ActionShowIncoming:
		if a.state.CallData(call_manager.CategoryIncoming) == nil {
			return result.New(result.Fail, "app.Perform", "no incoming call")
		}
		return a.views.ChangeView(view_manager.IncomingLock)
	case ActionEnd:
		if callID != 0 {
			return a.calls.End(callID, telephony.ReleaseByCallHandle)
		}
		return a.calls.End(0, telephony.ReleaseAll)
	case ActionEndActive:
		return a.calls.End(0, telephony.ReleaseAllActive)
	case ActionEndHeld:
		return a.calls.End(0, telephony.ReleaseAllHeld)
	case ActionHold:
		return a.calls.Hold()
	case ActionUnhold:
		return a.calls.Unhold()
	case ActionSwap:
		return a.calls.Swap()
	case ActionJoin:
		return a.calls.Join()
	case ActionSplit:
		return a.calls.Split(callID)
	case ActionMute:
		return a.sound.SetMute(true)
	case ActionUnmute:
		return a.sound.SetMute(false)
	case ActionSpeakerOn:
		return a.sound.SetSpeaker(true)
	case ActionSpeakerOff:
		return a.sound.SetSpeaker(false)
	case ActionListEnd:
		a.views.SetListEndClicked()
		return a.views.AutoChangeView()
	}
	return result.Newf(result.InvalidParam, "app.Perform", "unknown action %q", action)
}

// Dial начинает исходящий вызов. Если вызов не удался и вызовов нет,
// приложение закрывается.
func (a *App) Dial(number string, slot telephony.SimSlot) error {
	if !a.created {
		return result.New(result.Fail, "app.Dial", "app is not created")
	}
	if err := a.calls.Dial(number, slot); err != nil {
		a.logger.Warn("dial failed", slog.String("error", err.Error()))
		if !a.state.IsAnyCallAvailable() {
			a.Exit()
		}
		return err
	}
	return nil
}
