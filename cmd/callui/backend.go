package main

import (
	"context"
	"log/slog"

	"github.com/arzzra/call_ui/pkg/bridge"
	"github.com/arzzra/call_ui/pkg/config"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/arzzra/call_ui/pkg/telephony/simulator"
	"github.com/arzzra/call_ui/pkg/telephony/sipclient"
)

// backend источник вызовов, выбранный в секции [telephony]
type backend struct {
	client telephony.Client
	audio  telephony.AudioClient
	// remote nil, если удаленной стороной управлять нельзя
	remote bridge.Remote
	run    func(ctx context.Context) error
	close  func() error
}

func newBackend(cfg *config.Config, post func(func()), logger *slog.Logger) (*backend, error) {
	switch cfg.Telephony.Backend {
	case config.BackendSimulator:
		sim := simulator.New(simulator.Options{
			Post:       post,
			FlightMode: cfg.Simulator.FlightMode,
			Logger:     logger,
		})
		return &backend{client: sim, audio: sim, remote: sim}, nil
	case config.BackendSIP:
		sc, err := sipclient.New(sipclient.Options{
			Post:        post,
			Logger:      logger,
			ListenAddr:  cfg.SIP.Listen,
			Transport:   cfg.SIP.Transport,
			User:        cfg.SIP.User,
			DisplayName: cfg.SIP.DisplayName,
			Domain:      cfg.SIP.Domain,
			Proxy:       cfg.SIP.Proxy,
			MediaAddr:   cfg.SIP.MediaAddr,
			MediaPort:   cfg.SIP.MediaPort,
		})
		if err != nil {
			return nil, err
		}
		return &backend{client: sc, audio: sc, run: sc.Run, close: sc.Close}, nil
	}
	return nil, result.Newf(result.InvalidParam, "callui.backend", "unknown telephony backend %q", cfg.Telephony.Backend)
}
