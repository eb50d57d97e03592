package sipclient

import (
	"strconv"
	"time"

	"github.com/pion/sdp/v3"
	"github.com/pkg/errors"
)

// Направления медиа потока в SDP
const (
	dirSendRecv = "sendrecv"
	dirSendOnly = "sendonly"
	dirRecvOnly = "recvonly"
	dirInactive = "inactive"
)

// PCMU, PCMA и DTMF
var audioFormats = []struct {
	payload int
	rtpmap  string
}{
	{0, "PCMU/8000"},
	{8, "PCMA/8000"},
	{101, "telephone-event/8000"},
}

// sessionDescription SDP аудио потока с направлением dir. Каждый вызов для
// одного диалога увеличивает версию сессии в o=.
func sessionDescription(d *dialog, addr string, port int, dir string) ([]byte, error) {
	if d.sessionID == 0 {
		d.sessionID = uint64(time.Now().UnixNano())
	}
	d.sdpVersion++

	formats := make([]string, 0, len(audioFormats))
	attrs := make([]sdp.Attribute, 0, len(audioFormats)+2)
	for _, f := range audioFormats {
		pt := strconv.Itoa(f.payload)
		formats = append(formats, pt)
		attrs = append(attrs, sdp.Attribute{Key: "rtpmap", Value: pt + " " + f.rtpmap})
	}
	attrs = append(attrs,
		sdp.Attribute{Key: "ptime", Value: "20"},
		sdp.Attribute{Key: dir},
	)

	desc := &sdp.SessionDescription{
		Version: 0,
		Origin: sdp.Origin{
			Username:       "-",
			SessionID:      d.sessionID,
			SessionVersion: d.sdpVersion,
			NetworkType:    "IN",
			AddressType:    "IP4",
			UnicastAddress: addr,
		},
		SessionName: "call_ui",
		ConnectionInformation: &sdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: "IP4",
			Address:     &sdp.Address{Address: addr},
		},
		TimeDescriptions: []sdp.TimeDescription{
			{Timing: sdp.Timing{StartTime: 0, StopTime: 0}},
		},
		MediaDescriptions: []*sdp.MediaDescription{
			{
				MediaName: sdp.MediaName{
					Media:   "audio",
					Port:    sdp.RangedPort{Value: port},
					Protos:  []string{"RTP", "AVP"},
					Formats: formats,
				},
				Attributes: attrs,
			},
		},
	}
	body, err := desc.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal sdp")
	}
	return body, nil
}

// mediaDirection направление первого аудио потока. Атрибут уровня сессии
// действует, если у потока своего нет. Без атрибутов - sendrecv.
func mediaDirection(body []byte) (string, error) {
	var desc sdp.SessionDescription
	if err := desc.Unmarshal(body); err != nil {
		return "", errors.Wrap(err, "unmarshal sdp")
	}
	dir := directionOf(desc.Attributes)
	for _, m := range desc.MediaDescriptions {
		if m.MediaName.Media != "audio" {
			continue
		}
		if d := directionOf(m.Attributes); d != "" {
			dir = d
		}
		break
	}
	if dir == "" {
		dir = dirSendRecv
	}
	return dir, nil
}

func directionOf(attrs []sdp.Attribute) string {
	for _, a := range attrs {
		switch a.Key {
		case dirSendRecv, dirSendOnly, dirRecvOnly, dirInactive:
			return a.Key
		}
	}
	return ""
}

// answerDirection направление ответа на предложение offer
func answerDirection(offer string) string {
	switch offer {
	case dirSendOnly:
		return dirRecvOnly
	case dirRecvOnly:
		return dirSendOnly
	case dirInactive:
		return dirInactive
	}
	return dirSendRecv
}
