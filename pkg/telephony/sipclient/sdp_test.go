package sipclient

import (
	"testing"

	"github.com/pion/sdp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionDescription(t *testing.T) {
	d := &dialog{}
	first, err := sessionDescription(d, "192.168.1.10", 40000, dirSendOnly)
	require.NoError(t, err)

	var desc sdp.SessionDescription
	require.NoError(t, desc.Unmarshal(first))
	assert.Equal(t, "192.168.1.10", desc.Origin.UnicastAddress)
	assert.Equal(t, uint64(1), desc.Origin.SessionVersion)
	require.Len(t, desc.MediaDescriptions, 1)
	media := desc.MediaDescriptions[0]
	assert.Equal(t, "audio", media.MediaName.Media)
	assert.Equal(t, 40000, media.MediaName.Port.Value)
	assert.Equal(t, []string{"0", "8", "101"}, media.MediaName.Formats)
	rtpmap, ok := media.Attribute("rtpmap")
	require.True(t, ok)
	assert.Equal(t, "0 PCMU/8000", rtpmap)
	_, ok = media.Attribute(dirSendOnly)
	assert.True(t, ok)

	sessionID := d.sessionID
	second, err := sessionDescription(d, "192.168.1.10", 40000, dirSendRecv)
	require.NoError(t, err)
	require.NoError(t, desc.Unmarshal(second))
	assert.Equal(t, sessionID, desc.Origin.SessionID)
	assert.Equal(t, uint64(2), desc.Origin.SessionVersion)
}

func TestMediaDirection(t *testing.T) {
	const sessionLevel = "v=0\r\n" +
		"o=- 1 1 IN IP4 10.0.0.2\r\n" +
		"s=-\r\n" +
		"c=IN IP4 10.0.0.2\r\n" +
		"t=0 0\r\n" +
		"a=sendonly\r\n" +
		"m=audio 5004 RTP/AVP 0\r\n"
	const noAttrs = "v=0\r\n" +
		"o=- 1 1 IN IP4 10.0.0.2\r\n" +
		"s=-\r\n" +
		"c=IN IP4 10.0.0.2\r\n" +
		"t=0 0\r\n" +
		"m=audio 5004 RTP/AVP 0\r\n"
	const mediaOverrides = "v=0\r\n" +
		"o=- 1 1 IN IP4 10.0.0.2\r\n" +
		"s=-\r\n" +
		"c=IN IP4 10.0.0.2\r\n" +
		"t=0 0\r\n" +
		"a=sendonly\r\n" +
		"m=audio 5004 RTP/AVP 0\r\n" +
		"a=inactive\r\n"

	tests := []struct {
		name string
		body string
		want string
	}{
		{"session level attribute", sessionLevel, dirSendOnly},
		{"no attributes", noAttrs, dirSendRecv},
		{"media attribute wins", mediaOverrides, dirInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, err := mediaDirection([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, dir)
		})
	}

	_, err := mediaDirection([]byte("not sdp"))
	assert.Error(t, err)
}

func TestAnswerDirection(t *testing.T) {
	assert.Equal(t, dirRecvOnly, answerDirection(dirSendOnly))
	assert.Equal(t, dirSendOnly, answerDirection(dirRecvOnly))
	assert.Equal(t, dirInactive, answerDirection(dirInactive))
	assert.Equal(t, dirSendRecv, answerDirection(dirSendRecv))
	assert.Equal(t, dirSendRecv, answerDirection(""))
}

func TestTargetURI(t *testing.T) {
	tests := []struct {
		name   string
		number string
		domain string
		ok     bool
		user   string
		host   string
		port   int
	}{
		{"number at domain", "222", "pbx.local", true, "222", "pbx.local", 0},
		{"domain with port", "222", "pbx.local:5080", true, "222", "pbx.local", 5080},
		{"full uri", "sip:bob@10.0.0.5:5080", "", true, "bob", "10.0.0.5", 5080},
		{"address without scheme", "bob@example.org", "pbx.local", true, "bob", "example.org", 0},
		{"no domain", "222", "", false, "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, ok := targetURI(tt.number, tt.domain)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.user, uri.User)
			assert.Equal(t, tt.host, uri.Host)
			assert.Equal(t, tt.port, uri.Port)
		})
	}
}
