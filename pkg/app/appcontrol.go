package app

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/arzzra/call_ui/pkg/call_manager"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/view_manager"
	"github.com/emiago/sipgo/sip"
	"github.com/google/uuid"
)

// Операции app-control
const (
	OperationCall             = "call"
	OperationDial             = "dial"
	OperationDuringCall       = "during_call"
	OperationEndCall          = "end_call"
	OperationQuickpanelResume = "quickpanel_resume"
	OperationLockscreenResume = "lockscreen_resume"
)

// Ключи дополнительных параметров запроса
const (
	ExtraAction  = "action"
	ExtraSimSlot = "sim_slot"
)

// Значения ExtraAction для during_call
const (
	DuringCallAccept = "accept"
	DuringCallReject = "reject"
	DuringCallShow   = "show"
)

// mtPrefix номер вида tel:MT... запускает показ входящего вызова
const mtPrefix = "MT"

// Request входящий запрос app-control
type Request struct {
	Operation string
	URI       string
	Extra     map[string]string
}

// dialTarget разобранный URI вызова
type dialTarget struct {
	showIncoming bool
	number       string
}

// HandleAppControl выполняет запрос по точному совпадению операции.
// Неизвестные операции только логируются.
func (a *App) HandleAppControl(req Request) error {
	if !a.created {
		return result.New(result.Fail, "app.HandleAppControl", "app is not created")
	}
	logger := a.logger.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("operation", req.Operation))
	logger.Info("app control")

	switch req.Operation {
	case OperationCall, OperationDial:
		return a.handleCall(req, logger)
	case OperationDuringCall:
		return a.handleDuringCall(req)
	case OperationEndCall:
		return a.Perform(ActionEnd, 0)
	case OperationQuickpanelResume:
		return a.raise(false)
	case OperationLockscreenResume:
		return a.raise(true)
	}
	logger.Warn("unknown app control operation ignored")
	return nil
}

func (a *App) handleCall(req Request, logger *slog.Logger) error {
	target, err := parseDialURI(req.URI)
	if err != nil {
		logger.Warn("bad call uri", slog.String("uri", req.URI), slog.String("error", err.Error()))
		return err
	}
	if target.showIncoming {
		if a.state.CallData(call_manager.CategoryIncoming) == nil {
			logger.Warn("incoming trigger without incoming call")
			return nil
		}
		if err := a.deps.Window.Raise(true); err != nil {
			logger.Warn("raise window", slog.String("error", err.Error()))
		}
		a.showIncoming()
		return nil
	}

	slot := telephony.SimSlotDefault
	if v, ok := req.Extra[ExtraSimSlot]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return result.Newf(result.InvalidParam, "app.HandleAppControl", "bad sim slot %q", v)
		}
		slot = telephony.SimSlot(n)
	}
	return a.Dial(target.number, slot)
}

func (a *App) handleDuringCall(req Request) error {
	switch req.Extra[ExtraAction] {
	case DuringCallAccept:
		return a.Perform(ActionAnswer, 0)
	case DuringCallReject:
		return a.Perform(ActionReject, 0)
	case DuringCallShow:
		if a.state.CallData(call_manager.CategoryIncoming) != nil {
			return a.Perform(ActionShowIncoming, 0)
		}
	}
	return a.raise(false)
}

func (a *App) raise(aboveLock bool) error {
	if err := a.deps.Window.Raise(aboveLock); err != nil {
		return err
	}
	if a.views.Current() == view_manager.Undefined && a.state.IsAnyCallAvailable() {
		a.refreshView()
	}
	return nil
}

// parseDialURI разбирает tel:, sip: и голый номер
func parseDialURI(raw string) (dialTarget, error) {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)

	switch {
	case raw == "":
		return dialTarget{}, result.New(result.InvalidParam, "app.parseDialURI", "empty uri")
	case strings.HasPrefix(lower, "tel:"):
		number := raw[len("tel:"):]
		if i := strings.IndexByte(number, ';'); i >= 0 {
			number = number[:i]
		}
		number = strings.TrimSpace(number)
		if strings.HasPrefix(number, mtPrefix) {
			return dialTarget{showIncoming: true}, nil
		}
		if number == "" {
			return dialTarget{}, result.New(result.InvalidParam, "app.parseDialURI", "empty tel number")
		}
		return dialTarget{number: number}, nil
	case strings.HasPrefix(lower, "sip:"), strings.HasPrefix(lower, "sips:"):
		var uri sip.Uri
		if err := sip.ParseUri(raw, &uri); err != nil {
			return dialTarget{}, result.Wrap(err, result.InvalidParam, "app.parseDialURI")
		}
		if uri.Host == "" {
			return dialTarget{}, result.New(result.InvalidParam, "app.parseDialURI", "sip uri without host")
		}
		address := uri.Host
		if uri.Port > 0 {
			address += ":" + strconv.Itoa(uri.Port)
		}
		if uri.User != "" {
			address = uri.User + "@" + address
		}
		return dialTarget{number: address}, nil
	case strings.Contains(raw, ":"):
		return dialTarget{}, result.Newf(result.InvalidParam, "app.parseDialURI", "unsupported uri %q", raw)
	}
	return dialTarget{number: raw}, nil
}
