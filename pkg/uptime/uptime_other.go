//go:build !linux

package uptime

import "time"

type systemSource struct{}

// Uptime на платформах без CLOCK_BOOTTIME считается от старта процесса
func (systemSource) Uptime() time.Duration {
	return fallbackUptime()
}
