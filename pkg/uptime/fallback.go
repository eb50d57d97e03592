package uptime

import "time"

var processStart = time.Now()

// fallbackUptime использует монотонную часть time.Time
func fallbackUptime() time.Duration {
	return time.Since(processStart)
}
