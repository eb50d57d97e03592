// Package metrics Prometheus метрики экрана вызова: события вызовов,
// результаты действий, переходы экранов и статусы набора.
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/view_manager"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config конфигурация сборщика метрик
type Config struct {
	Enabled   bool
	Namespace string
	Subsystem string
	// Registry реестр метрик; nil - новый реестр со стандартными коллекторами
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Namespace: "call_ui",
		Subsystem: "core",
	}
}

// Collector сборщик метрик. Реализует наблюдателя приложения.
// Выключенный сборщик молча игнорирует все вызовы.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry
	logger   *slog.Logger

	callEvents   *prometheus.CounterVec
	actions      *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	dialStatuses *prometheus.CounterVec
	liveCalls    prometheus.Gauge
}

// New создает сборщик метрик
func New(cfg Config) *Collector {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		return &Collector{logger: logger}
	}

	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		)
	}

	c := &Collector{
		enabled:  true,
		registry: reg,
		logger:   logger.With(slog.String("component", "metrics")),
	}
	c.init(promauto.With(reg), cfg.Namespace, cfg.Subsystem)
	return c
}

func (c *Collector) init(f promauto.Factory, namespace, subsystem string) {
	c.callEvents = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "call_events_total",
		Help:      "Total number of call lifecycle events received from the platform",
	}, []string{"event"})

	c.actions = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "call_actions_total",
		Help:      "Total number of call control actions by result code",
	}, []string{"action", "code"})

	c.transitions = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "view_transitions_total",
		Help:      "Total number of view changes by result code",
	}, []string{"from_view", "to_view", "code"})

	c.dialStatuses = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "dial_status_total",
		Help:      "Total number of dial results reported by the platform",
	}, []string{"status"})

	c.liveCalls = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "live_calls",
		Help:      "Number of calls currently present in the state snapshot",
	})
}

// Enabled включен ли сборщик
func (c *Collector) Enabled() bool { return c.enabled }

// Registry реестр метрик; nil для выключенного сборщика
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ObserveCallEvent учитывает событие вызова
func (c *Collector) ObserveCallEvent(event telephony.EventType) {
	if !c.enabled {
		return
	}
	c.callEvents.WithLabelValues(event.String()).Inc()
}

// ObserveAction учитывает результат действия менеджера вызовов
func (c *Collector) ObserveAction(action string, code result.Code) {
	if !c.enabled {
		return
	}
	c.actions.WithLabelValues(action, code.String()).Inc()
}

// ObserveTransition учитывает попытку смены экрана
func (c *Collector) ObserveTransition(from, to view_manager.ViewID, code result.Code) {
	if !c.enabled {
		return
	}
	c.transitions.WithLabelValues(from.String(), to.String(), code.String()).Inc()
}

// ObserveDialStatus учитывает статус набора
func (c *Collector) ObserveDialStatus(status telephony.DialStatus) {
	if !c.enabled {
		return
	}
	c.dialStatuses.WithLabelValues(status.String()).Inc()
}

// SetLiveCalls обновляет число живых вызовов
func (c *Collector) SetLiveCalls(n int) {
	if !c.enabled {
		return
	}
	c.liveCalls.Set(float64(n))
}

// Handler HTTP обработчик для /metrics
func (c *Collector) Handler() http.Handler {
	if !c.enabled {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
