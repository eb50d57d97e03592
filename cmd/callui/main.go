// Команда callui запускает ядро экрана вызова поверх симулятора телефонии
// или SIP клиента.
// Экраны публикуются через websocket мост, метрики отдаются Prometheus.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arzzra/call_ui/pkg/app"
	"github.com/arzzra/call_ui/pkg/bridge"
	"github.com/arzzra/call_ui/pkg/config"
	"github.com/arzzra/call_ui/pkg/device"
	"github.com/arzzra/call_ui/pkg/hardkey"
	"github.com/arzzra/call_ui/pkg/logging"
	"github.com/arzzra/call_ui/pkg/mainloop"
	"github.com/arzzra/call_ui/pkg/metrics"
	"github.com/arzzra/call_ui/pkg/result"
	"github.com/arzzra/call_ui/pkg/view_manager"
	"github.com/arzzra/call_ui/pkg/views"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to INI config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	slog.SetDefault(logger.Logger)

	if err := run(cfg, logger.Logger); err != nil {
		logger.Error("callui stopped with error", slog.String("error", err.Error()))
		logger.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := mainloop.New(cfg.QueueSize, logger)
	tel, err := newBackend(cfg, loop.Post, logger)
	if err != nil {
		return errors.Wrap(err, "create telephony backend")
	}
	if tel.close != nil {
		defer func() {
			if err := tel.close(); err != nil {
				logger.Warn("close telephony backend", slog.String("error", err.Error()))
			}
		}()
	}
	dev := device.NewMemory(cfg.Device, logger)

	mcfg := metrics.DefaultConfig()
	mcfg.Enabled = cfg.Metrics.Enabled
	mcfg.Namespace = cfg.Metrics.Namespace
	mcfg.Logger = logger
	collector := metrics.New(mcfg)

	// мост создается после приложения, фабрика экранов вызывается только в Create
	var hub *bridge.Hub
	application, err := app.New(app.Deps{
		Client:   tel.client,
		Audio:    tel.audio,
		Contacts: contactBook(cfg.Contacts),
		Device:   dev,
		Lock:     dev,
		Window:   &window{logger: logger.With(slog.String("component", "window")), exit: cancel},
		Views: func(a *app.App) view_manager.Factory {
			return views.NewFactory(a, views.Options{
				Publisher:    hub,
				Scheduler:    views.LoopScheduler(loop),
				TickInterval: cfg.Views.TickInterval,
				EndCallDelay: cfg.Views.EndCallDelay,
				Logger:       logger,
			})
		},
		Observer: collector,
		Logger:   logger,
	})
	if err != nil {
		return errors.Wrap(err, "create app")
	}

	hub, err = bridge.New(bridge.Config{
		Dispatcher: application,
		Remote:     tel.remote,
		Exec:       func(fn func() error) error { return loop.Call(ctx, fn) },
		Logger:     logger,
	})
	if err != nil {
		return errors.Wrap(err, "create bridge")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(gctx) })
	if tel.run != nil {
		g.Go(func() error { return tel.run(gctx) })
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Bridge.Path, hub)
	serve(gctx, g, logger, "bridge", cfg.Bridge.Listen, mux)
	if collector.Enabled() {
		mmux := http.NewServeMux()
		mmux.Handle("/metrics", collector.Handler())
		serve(gctx, g, logger, "metrics", cfg.Metrics.Listen, mmux)
	}

	if cfg.HardKeys.Enabled {
		keys := hardkey.New(hardkey.Config{
			Devices: cfg.HardKeys.Devices,
			Handler: func(key app.Key, pressed bool) {
				loop.Post(func() { application.HandleKey(key, pressed) })
			},
			Logger: logger,
		})
		g.Go(func() error {
			err := keys.Run(gctx)
			if result.CodeOf(err) == result.NotSupported {
				logger.Warn("hard keys are unavailable", slog.String("error", err.Error()))
				return nil
			}
			return err
		})
	}

	if err := loop.Call(gctx, application.Create); err != nil {
		cancel()
		_ = g.Wait()
		return errors.Wrap(err, "start app")
	}
	logger.Info("callui started",
		slog.String("session", application.Session()),
		slog.String("telephony", cfg.Telephony.Backend),
		slog.String("bridge", cfg.Bridge.Listen))

	err = g.Wait()
	// цикл остановлен, дальше ядро трогает только эта горутина
	hub.Close()
	application.Terminate()
	return err
}

// serve запускает HTTP сервер в группе и останавливает его при отмене ctx
func serve(ctx context.Context, g *errgroup.Group, logger *slog.Logger, name, addr string, h http.Handler) {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	g.Go(func() error {
		logger.Info("http server listening", slog.String("server", name), slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "%s server", name)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
}
