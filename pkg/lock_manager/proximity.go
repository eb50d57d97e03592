package lock_manager

import (
	"log/slog"

	"github.com/arzzra/call_ui/pkg/result"
	"github.com/pkg/errors"
)

type proximity struct {
	sensor  ProximitySensor
	display Display
	logger  *slog.Logger

	started  bool
	lcdOff   bool
	onUnlock func()
}

func newProximity(sensor ProximitySensor, display Display, logger *slog.Logger) *proximity {
	return &proximity{
		sensor:  sensor,
		display: display,
		logger:  logger.With(slog.String("component", "proximity_lock")),
	}
}

func (p *proximity) Start() error {
	if p.started {
		return nil
	}
	if err := p.sensor.WatchProximity(p.onProximity); err != nil {
		return errors.Wrap(err, "watch proximity")
	}
	p.started = true
	p.logger.Debug("started")
	return nil
}

func (p *proximity) Stop() error {
	if !p.started {
		return nil
	}
	p.started = false
	if err := p.sensor.WatchProximity(nil); err != nil {
		p.logger.Warn("unwatch proximity", slog.String("error", err.Error()))
	}
	// экран не должен остаться погашенным после остановки
	if p.lcdOff {
		p.lcdOff = false
		if err := p.display.SetDisplay(true); err != nil {
			return errors.Wrap(err, "turn display on")
		}
	}
	p.logger.Debug("stopped")
	return nil
}

func (p *proximity) IsStarted() bool { return p.started }

func (p *proximity) IsLCDOff() bool { return p.lcdOff }

func (p *proximity) SetUnlockCallback(cb func()) { p.onUnlock = cb }

func (p *proximity) Destroy() {
	_ = p.Stop()
	p.onUnlock = nil
}

func (p *proximity) onProximity(near bool) {
	if !p.started || near == p.lcdOff {
		return
	}
	if err := p.display.SetDisplay(!near); err != nil {
		p.logger.Warn("set display",
			slog.Bool("near", near),
			slog.String("error", result.Wrap(err, result.Fail, "proximity").Error()))
		return
	}
	p.lcdOff = near
	if !near && p.onUnlock != nil {
		p.onUnlock()
	}
}
