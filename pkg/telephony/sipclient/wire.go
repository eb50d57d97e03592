package sipclient

import (
	"context"

	"github.com/emiago/sipgo"
	"github.com/emiago/sipgo/sip"
	"github.com/pkg/errors"
)

var errTxTerminated = errors.New("transaction terminated without final response")

// wire отправка запросов в сеть
type wire interface {
	// Send открывает клиентскую транзакцию. onResponse получает ответы до
	// финального включительно, onError - сбой транзакции. Колбэки могут
	// вызываться из другой горутины.
	Send(req *sip.Request, onResponse func(*sip.Response), onError func(error)) error
	// Write отправляет запрос вне транзакции (ACK на 2xx, CANCEL).
	// keepVia - не добавлять новый Via, он уже есть в запросе.
	Write(req *sip.Request, keepVia bool) error
}

// responder серверная транзакция, на которую можно ответить
type responder interface {
	Respond(res *sip.Response) error
}

type sipgoWire struct {
	client *sipgo.Client
	ctx    context.Context
}

func (w *sipgoWire) Send(req *sip.Request, onResponse func(*sip.Response), onError func(error)) error {
	tx, err := w.client.TransactionRequest(w.ctx, req, sipgo.ClientRequestAddVia)
	if err != nil {
		return errors.Wrapf(err, "send %s", req.Method)
	}

	go func() {
		defer tx.Terminate()
		for {
			select {
			case res, ok := <-tx.Responses():
				if !ok {
					onError(errTxTerminated)
					return
				}
				onResponse(res)
				if res.StatusCode >= 200 {
					return
				}
			case <-tx.Done():
				err := tx.Err()
				if err == nil {
					err = errTxTerminated
				}
				onError(err)
				return
			case <-w.ctx.Done():
				onError(w.ctx.Err())
				return
			}
		}
	}()
	return nil
}

func (w *sipgoWire) Write(req *sip.Request, keepVia bool) error {
	opt := sipgo.ClientRequestAddVia
	if keepVia {
		opt = func(*sipgo.Client, *sip.Request) error { return nil }
	}
	return w.client.WriteRequest(req, opt)
}
