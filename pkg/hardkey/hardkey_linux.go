//go:build linux

package hardkey

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/arzzra/call_ui/pkg/app"
	"github.com/arzzra/call_ui/pkg/result"
	evdev "github.com/holoplot/go-evdev"
	"github.com/pkg/errors"
)

var keyCodes = map[evdev.EvCode]app.Key{
	evdev.KEY_POWER:    app.KeyPower,
	evdev.KEY_HOMEPAGE: app.KeyHome,
}

// translate переводит событие evdev в кнопку. Автоповтор (2) пропускается.
func translate(ev *evdev.InputEvent) (app.Key, bool, bool) {
	if ev.Type != evdev.EV_KEY || (ev.Value != 0 && ev.Value != 1) {
		return 0, false, false
	}
	key, ok := keyCodes[ev.Code]
	return key, ev.Value == 1, ok
}

// hasKeys проверяет, что устройство умеет хотя бы одну из наших кнопок
func hasKeys(dev *evdev.InputDevice) bool {
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		if _, ok := keyCodes[code]; ok {
			return true
		}
	}
	return false
}

// Run читает кнопки до отмены ctx. Без подходящих устройств возвращает NOT_SUPPORTED.
func (r *Reader) Run(ctx context.Context) error {
	paths := r.cfg.Devices
	if len(paths) == 0 {
		matches, err := filepath.Glob(DevicePattern)
		if err != nil {
			return errors.Wrap(err, "failed to list input devices")
		}
		paths = matches
	}

	var devices []*evdev.InputDevice
	for _, path := range paths {
		dev, err := evdev.Open(path)
		if err != nil {
			if os.IsPermission(err) {
				r.logger.Warn("permission denied", slog.String("device", path))
			}
			continue
		}
		if !hasKeys(dev) {
			dev.Close()
			continue
		}
		name, _ := dev.Name()
		r.logger.Info("input device opened", slog.String("device", path), slog.String("name", name))
		devices = append(devices, dev)
	}
	if len(devices) == 0 {
		return result.New(result.NotSupported, "hardkey.Run", "no input device with power or home key")
	}

	var wg sync.WaitGroup
	for _, dev := range devices {
		wg.Add(1)
		go func(dev *evdev.InputDevice) {
			defer wg.Done()
			r.readLoop(dev)
		}(dev)
	}

	<-ctx.Done()
	// закрытие устройства прерывает ReadOne
	for _, dev := range devices {
		dev.Close()
	}
	wg.Wait()
	return nil
}

func (r *Reader) readLoop(dev *evdev.InputDevice) {
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			return
		}
		if key, pressed, ok := translate(ev); ok {
			r.cfg.Handler(key, pressed)
		}
	}
}
