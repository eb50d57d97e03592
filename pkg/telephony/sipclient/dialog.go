package sipclient

import (
	"net"
	"strconv"
	"strings"

	"github.com/emiago/sipgo/sip"
)

const (
	statusRinging  = 180
	statusProgress = 183
	statusBusyHere = 486

	statusServerError = 500
)

const contentTypeSDP = "application/sdp"

// dialog состояние одного INVITE диалога
type dialog struct {
	callID    string
	localURI  sip.Uri
	localName string
	remoteURI sip.Uri
	localTag  string
	remoteTag string
	// remoteTarget Contact удаленной стороны, Request-URI запросов в диалоге
	remoteTarget sip.Uri
	contact      sip.ContactHeader
	proxy        string
	cseq         uint32

	// invite первый INVITE диалога
	invite *sip.Request
	// tx транзакция входящего INVITE, пока на него нет финального ответа
	tx responder

	sessionID  uint64
	sdpVersion uint64
}

func newTag() string {
	return sip.RandString(8)
}

func newClientDialog(local sip.Uri, name string, remote sip.Uri, contact sip.ContactHeader, proxy string) *dialog {
	return &dialog{
		callID:       sip.RandString(32),
		localURI:     local,
		localName:    name,
		remoteURI:    remote,
		localTag:     newTag(),
		remoteTarget: remote,
		contact:      contact,
		proxy:        proxy,
	}
}

// newServerDialog строит диалог по входящему INVITE
func newServerDialog(req *sip.Request, contact sip.ContactHeader, proxy string) *dialog {
	from, to := req.From(), req.To()
	d := &dialog{
		callID:       req.CallID().Value(),
		localURI:     to.Address,
		remoteURI:    from.Address,
		localTag:     newTag(),
		remoteTarget: from.Address,
		contact:      contact,
		proxy:        proxy,
		invite:       req,
	}
	d.remoteTag, _ = from.Params.Get("tag")
	if h := req.Contact(); h != nil {
		d.remoteTarget = h.Address
	}
	return d
}

// build собирает запрос внутри диалога с заданным номером CSeq
func (d *dialog) build(method sip.RequestMethod, seq uint32) *sip.Request {
	req := sip.NewRequest(method, d.remoteTarget)

	req.AppendHeader(&sip.FromHeader{
		DisplayName: d.localName,
		Address:     d.localURI,
		Params:      sip.NewParams().Add("tag", d.localTag),
	})
	to := &sip.ToHeader{Address: d.remoteURI, Params: sip.NewParams()}
	if d.remoteTag != "" {
		to.Params = to.Params.Add("tag", d.remoteTag)
	}
	req.AppendHeader(to)

	callID := sip.CallIDHeader(d.callID)
	req.AppendHeader(&callID)
	req.AppendHeader(&sip.CSeqHeader{SeqNo: seq, MethodName: method})
	contact := d.contact
	req.AppendHeader(&contact)
	maxForwards := sip.MaxForwardsHeader(70)
	req.AppendHeader(&maxForwards)

	if d.proxy != "" {
		req.SetDestination(d.proxy)
	}
	return req
}

// request новый запрос в диалоге со следующим CSeq
func (d *dialog) request(method sip.RequestMethod) *sip.Request {
	d.cseq++
	return d.build(method, d.cseq)
}

// inviteWithSDP INVITE или re-INVITE с телом SDP
func (d *dialog) inviteWithSDP(body []byte) *sip.Request {
	req := d.request(sip.INVITE)
	ct := sip.ContentTypeHeader(contentTypeSDP)
	req.AppendHeader(&ct)
	req.SetBody(body)
	if d.invite == nil {
		d.invite = req
	}
	return req
}

// confirm запоминает тег и Contact удаленной стороны из 2xx на INVITE
func (d *dialog) confirm(res *sip.Response) {
	if to := res.To(); to != nil {
		if tag, ok := to.Params.Get("tag"); ok {
			d.remoteTag = tag
		}
	}
	if h := res.Contact(); h != nil {
		d.remoteTarget = h.Address
	}
}

// ack ACK на 2xx ответ. CSeq совпадает с подтверждаемым INVITE.
func (d *dialog) ack(invite *sip.Request) *sip.Request {
	seq := d.cseq
	if h := invite.CSeq(); h != nil {
		seq = h.SeqNo
	}
	return d.build(sip.ACK, seq)
}

// cancel CANCEL для первого INVITE, на который еще нет финального ответа
func (d *dialog) cancel() *sip.Request {
	inv := d.invite
	req := sip.NewRequest(sip.CANCEL, inv.Recipient)

	if via := inv.Via(); via != nil {
		req.AppendHeader(via.Clone())
	}
	sip.CopyHeaders("Route", inv, req)
	maxForwards := sip.MaxForwardsHeader(70)
	req.AppendHeader(&maxForwards)

	if h := inv.From(); h != nil {
		req.AppendHeader(sip.HeaderClone(h))
	}
	if h := inv.To(); h != nil {
		req.AppendHeader(sip.HeaderClone(h))
	}
	if h := inv.CallID(); h != nil {
		req.AppendHeader(sip.HeaderClone(h))
	}
	if h := inv.CSeq(); h != nil {
		req.AppendHeader(&sip.CSeqHeader{SeqNo: h.SeqNo, MethodName: sip.CANCEL})
	}

	switch {
	case inv.Destination() != "":
		req.SetDestination(inv.Destination())
	case d.proxy != "":
		req.SetDestination(d.proxy)
	}
	return req
}

// response ответ на запрос диалога. Начиная со 180 в To ставится локальный тег.
func (d *dialog) response(req *sip.Request, code int, reason string, body []byte) *sip.Response {
	res := sip.NewResponseFromRequest(req, sip.StatusCode(code), reason, body)
	if to := res.To(); to != nil && code > 100 {
		if _, ok := to.Params.Get("tag"); !ok {
			if to.Params == nil {
				to.Params = sip.NewParams()
			}
			to.Params = to.Params.Add("tag", d.localTag)
		}
	}
	if code >= 200 && code < 300 {
		contact := d.contact
		res.AppendHeader(&contact)
	}
	if len(body) > 0 {
		ct := sip.ContentTypeHeader(contentTypeSDP)
		res.AppendHeader(&ct)
	}
	return res
}

func toTag(msg *sip.Request) string {
	if to := msg.To(); to != nil {
		if tag, ok := to.Params.Get("tag"); ok {
			return tag
		}
	}
	return ""
}

func callIDOf(msg *sip.Request) string {
	if h := msg.CallID(); h != nil {
		return h.Value()
	}
	return ""
}

// targetURI переводит набранный номер в SIP URI
func targetURI(number, domain string) (sip.Uri, bool) {
	if strings.Contains(number, "@") || strings.HasPrefix(number, "sip:") || strings.HasPrefix(number, "sips:") {
		raw := number
		if !strings.HasPrefix(raw, "sip:") && !strings.HasPrefix(raw, "sips:") {
			raw = "sip:" + raw
		}
		var uri sip.Uri
		if err := sip.ParseUri(raw, &uri); err != nil || uri.Host == "" {
			return sip.Uri{}, false
		}
		return uri, true
	}
	if domain == "" {
		return sip.Uri{}, false
	}
	host, port := domain, 0
	if h, p, err := net.SplitHostPort(domain); err == nil {
		if n, err := strconv.Atoi(p); err == nil {
			host, port = h, n
		}
	}
	return sip.Uri{Scheme: "sip", User: number, Host: host, Port: port}, true
}
