package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/view_manager"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCollector(t *testing.T) *Collector {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Registry = prometheus.NewRegistry()
	c := New(cfg)
	require.True(t, c.Enabled())
	return c
}

func TestCollectorCounts(t *testing.T) {
	c := newCollector(t)

	c.ObserveCallEvent(telephony.EventIncoming)
	c.ObserveCallEvent(telephony.EventIncoming)
	c.ObserveCallEvent(telephony.EventEnd)
	c.ObserveAction("dial", result.OK)
	c.ObserveAction("dial", result.InvalidParam)
	c.ObserveTransition(view_manager.Undefined, view_manager.Dialing, result.OK)
	c.ObserveDialStatus(telephony.DialCancel)
	c.SetLiveCalls(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.callEvents.WithLabelValues("INCOMING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.callEvents.WithLabelValues("END")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.actions.WithLabelValues("dial", "INVALID_PARAM")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("undefined", "dialing", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dialStatuses.WithLabelValues("cancel")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.liveCalls))
}

func TestCollectorHandler(t *testing.T) {
	c := newCollector(t)
	c.SetLiveCalls(1)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "call_ui_core_live_calls 1"))
}

func TestDisabledCollector(t *testing.T) {
	c := New(Config{})
	assert.False(t, c.Enabled())
	assert.Nil(t, c.Registry())

	assert.NotPanics(t, func() {
		c.ObserveCallEvent(telephony.EventEnd)
		c.ObserveAction("end", result.OK)
		c.ObserveTransition(view_manager.Undefined, view_manager.EndCall, result.OK)
		c.ObserveDialStatus(telephony.DialSuccess)
		c.SetLiveCalls(0)
	})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
