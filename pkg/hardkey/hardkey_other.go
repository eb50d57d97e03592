//go:build !linux

package hardkey

import (
	"context"

	"github.com/arzzra/call_ui/pkg/result"
)

// Run на платформах без evdev не поддерживается
func (r *Reader) Run(context.Context) error {
	return result.New(result.NotSupported, "hardkey.Run", "evdev is available only on linux")
}
