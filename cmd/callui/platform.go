package main

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/state_provider"
	"github.com/arzzra/call_ui/pkg/telephony"
)

// window окно без оконной системы: действия пишутся в журнал,
// выход останавливает процесс
type window struct {
	logger *slog.Logger
	exit   func()
}

func (w *window) Minimize() error {
	w.logger.Info("minimize")
	return nil
}

func (w *window) Raise(aboveLock bool) error {
	w.logger.Info("raise", slog.Bool("above_lock", aboveLock))
	return nil
}

func (w *window) GrabHomeKey() error {
	w.logger.Debug("home key grabbed")
	return nil
}

func (w *window) ShowDialFailure(status telephony.DialStatus) {
	w.logger.Warn("dial failed", slog.String("status", status.String()))
}

func (w *window) ShowAnswerOptions(options []telephony.AnswerType) {
	names := make([]string, 0, len(options))
	for _, o := range options {
		names = append(names, o.String())
	}
	w.logger.Info("answer options", slog.Any("options", names))
}

func (w *window) Exit() {
	w.logger.Info("exit")
	w.exit()
}

// contactBook адресная книга из секции [contacts]
type contactBook map[string]string

func (b contactBook) ResolveContact(personID int, number string) (state_provider.ContactSnippet, error) {
	return state_provider.ContactSnippet{PersonID: personID, Name: b[number]}, nil
}
