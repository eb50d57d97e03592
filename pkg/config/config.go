// Package config конфигурация приложения экрана вызова в формате INI
package config

import (
	"strings"
	"time"

	"github.com/arzzra/call_ui/pkg/device"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/pkg/errors"
	ini "gopkg.in/ini.v1"
)

// Logging настройки журнала
type Logging struct {
	Level  string
	Format string
	// File путь к файлу журнала; пусто - только stderr
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Views настройки экранов
type Views struct {
	TickInterval time.Duration
	EndCallDelay time.Duration
}

// Metrics настройки Prometheus
type Metrics struct {
	Enabled   bool
	Listen    string
	Namespace string
}

// Bridge настройки websocket моста к клиентам отрисовки
type Bridge struct {
	Listen string
	Path   string
}

// HardKeys настройки чтения аппаратных кнопок
type HardKeys struct {
	Enabled bool
	// Devices пути к устройствам evdev; пусто - все /dev/input/event*
	Devices []string
}

// Simulator настройки встроенного симулятора телефонии
type Simulator struct {
	FlightMode bool
}

// Бэкенды телефонии
const (
	BackendSimulator = "simulator"
	BackendSIP       = "sip"
)

// Telephony выбор источника вызовов
type Telephony struct {
	Backend string
}

// SIP настройки программного SIP телефона
type SIP struct {
	Listen      string
	Transport   string
	User        string
	DisplayName string
	// Domain домен для номеров без @, обычно адрес АТС
	Domain    string
	Proxy     string
	MediaAddr string
	MediaPort int
}

// Config конфигурация приложения
type Config struct {
	Logging   Logging
	Device    device.Settings
	Views     Views
	Metrics   Metrics
	Bridge    Bridge
	HardKeys  HardKeys
	Telephony Telephony
	Simulator Simulator
	SIP       SIP
	// Contacts имена по номеру из секции [contacts]
	Contacts  map[string]string
	QueueSize int
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Logging: Logging{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 1,
			MaxAgeDays: 28,
		},
		Device: device.Settings{
			PowerKeyEndsCall:   true,
			ProximitySupported: true,
		},
		Views: Views{
			TickInterval: time.Second,
			EndCallDelay: 2 * time.Second,
		},
		Metrics: Metrics{
			Enabled:   true,
			Listen:    "127.0.0.1:9109",
			Namespace: "call_ui",
		},
		Bridge: Bridge{
			Listen: "127.0.0.1:8099",
			Path:   "/ws",
		},
		Telephony: Telephony{
			Backend: BackendSimulator,
		},
		SIP: SIP{
			Listen:    "0.0.0.0:5060",
			Transport: "udp",
			User:      "callui",
			MediaPort: 40000,
		},
		QueueSize: 256,
	}
}

// Load читает конфигурацию из файла. Пустой путь дает конфигурацию по умолчанию.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := DefaultConfig()
		return cfg, cfg.Validate()
	}
	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config %s", path)
	}
	return Parse(f)
}

// Parse заполняет конфигурацию из INI, отсутствующие ключи берутся по умолчанию
func Parse(f *ini.File) (*Config, error) {
	cfg := DefaultConfig()

	sec := f.Section("logging")
	cfg.Logging.Level = strings.ToLower(sec.Key("level").MustString(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(sec.Key("format").MustString(cfg.Logging.Format))
	cfg.Logging.File = sec.Key("file").String()
	cfg.Logging.MaxSizeMB = sec.Key("max_size_mb").MustInt(cfg.Logging.MaxSizeMB)
	cfg.Logging.MaxBackups = sec.Key("max_backups").MustInt(cfg.Logging.MaxBackups)
	cfg.Logging.MaxAgeDays = sec.Key("max_age_days").MustInt(cfg.Logging.MaxAgeDays)
	cfg.Logging.Compress = sec.Key("compress").MustBool(false)

	sec = f.Section("device")
	cfg.Device.PowerKeyEndsCall = sec.Key("power_key_ends_call").MustBool(cfg.Device.PowerKeyEndsCall)
	cfg.Device.AnsweringMode = sec.Key("answering_mode").MustBool(false)
	cfg.Device.PasswordEnforced = sec.Key("password_enforced").MustBool(false)
	cfg.Device.ProximitySupported = sec.Key("proximity").MustBool(cfg.Device.ProximitySupported)

	sec = f.Section("views")
	cfg.Views.TickInterval = sec.Key("tick_interval").MustDuration(cfg.Views.TickInterval)
	cfg.Views.EndCallDelay = sec.Key("end_call_delay").MustDuration(cfg.Views.EndCallDelay)

	sec = f.Section("metrics")
	cfg.Metrics.Enabled = sec.Key("enabled").MustBool(cfg.Metrics.Enabled)
	cfg.Metrics.Listen = sec.Key("listen").MustString(cfg.Metrics.Listen)
	cfg.Metrics.Namespace = sec.Key("namespace").MustString(cfg.Metrics.Namespace)

	sec = f.Section("bridge")
	cfg.Bridge.Listen = sec.Key("listen").MustString(cfg.Bridge.Listen)
	cfg.Bridge.Path = sec.Key("path").MustString(cfg.Bridge.Path)

	sec = f.Section("hardkeys")
	cfg.HardKeys.Enabled = sec.Key("enabled").MustBool(false)
	cfg.HardKeys.Devices = sec.Key("devices").Strings(",")

	sec = f.Section("telephony")
	cfg.Telephony.Backend = strings.ToLower(sec.Key("backend").MustString(cfg.Telephony.Backend))

	sec = f.Section("simulator")
	cfg.Simulator.FlightMode = sec.Key("flight_mode").MustBool(false)

	sec = f.Section("sip")
	cfg.SIP.Listen = sec.Key("listen").MustString(cfg.SIP.Listen)
	cfg.SIP.Transport = strings.ToLower(sec.Key("transport").MustString(cfg.SIP.Transport))
	cfg.SIP.User = sec.Key("user").MustString(cfg.SIP.User)
	cfg.SIP.DisplayName = sec.Key("display_name").String()
	cfg.SIP.Domain = sec.Key("domain").String()
	cfg.SIP.Proxy = sec.Key("proxy").String()
	cfg.SIP.MediaAddr = sec.Key("media_addr").String()
	cfg.SIP.MediaPort = sec.Key("media_port").MustInt(cfg.SIP.MediaPort)

	if f.HasSection("contacts") {
		cfg.Contacts = f.Section("contacts").KeysHash()
	}

	cfg.QueueSize = f.Section("").Key("queue_size").MustInt(cfg.QueueSize)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return result.Newf(result.InvalidParam, "config.Validate", "unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return result.Newf(result.InvalidParam, "config.Validate", "unknown log format %q", c.Logging.Format)
	}
	if c.Views.TickInterval <= 0 || c.Views.EndCallDelay <= 0 {
		return result.New(result.InvalidParam, "config.Validate", "view intervals must be positive")
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return result.New(result.InvalidParam, "config.Validate", "metrics listen address is empty")
	}
	if c.Bridge.Listen == "" || !strings.HasPrefix(c.Bridge.Path, "/") {
		return result.New(result.InvalidParam, "config.Validate", "bridge listen address and path are required")
	}
	switch c.Telephony.Backend {
	case BackendSimulator:
	case BackendSIP:
		if c.SIP.Listen == "" {
			return result.New(result.InvalidParam, "config.Validate", "sip listen address is empty")
		}
		switch c.SIP.Transport {
		case "udp", "tcp":
		default:
			return result.Newf(result.InvalidParam, "config.Validate", "unknown sip transport %q", c.SIP.Transport)
		}
		if c.SIP.MediaPort <= 0 || c.SIP.MediaPort > 65535 {
			return result.New(result.InvalidParam, "config.Validate", "sip media_port out of range")
		}
	default:
		return result.Newf(result.InvalidParam, "config.Validate", "unknown telephony backend %q", c.Telephony.Backend)
	}
	if c.QueueSize <= 0 {
		return result.New(result.InvalidParam, "config.Validate", "queue_size must be positive")
	}
	return nil
}
