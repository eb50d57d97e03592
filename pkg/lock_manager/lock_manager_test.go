package lock_manager_test

import (
	"testing"

	"github.com/arzzra/call_ui/pkg/device"
	"github.com/arzzra/call_ui/pkg/lock_manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryPicksProximity(t *testing.T) {
	dev := device.NewMemory(device.Settings{ProximitySupported: true}, nil)
	lm := lock_manager.New(dev, nil)
	defer lm.Destroy()

	unlocked := 0
	lm.SetUnlockCallback(func() { unlocked++ })
	require.NoError(t, lm.Start())
	assert.True(t, lm.IsStarted())

	dev.SetNear(true)
	assert.True(t, lm.IsLCDOff())
	assert.False(t, dev.IsDisplayOn())

	dev.SetNear(false)
	assert.False(t, lm.IsLCDOff())
	assert.True(t, dev.IsDisplayOn())
	assert.Equal(t, 1, unlocked)

	// остановка при погашенном экране включает его обратно
	dev.SetNear(true)
	require.NoError(t, lm.Stop())
	assert.True(t, dev.IsDisplayOn())
	assert.False(t, lm.IsStarted())

	dev.SetNear(false)
	assert.Equal(t, 1, unlocked, "stopped lock ignores the sensor")
}

func TestFactoryFallsBackToLockscreen(t *testing.T) {
	dev := device.NewMemory(device.Settings{}, nil)
	lm := lock_manager.New(dev, nil)
	defer lm.Destroy()

	unlocked := 0
	lm.SetUnlockCallback(func() { unlocked++ })
	require.NoError(t, lm.Start())
	require.NoError(t, lm.Start())
	assert.True(t, dev.IsCallLocked())
	assert.False(t, lm.IsLCDOff())

	dev.UserUnlock()
	assert.Equal(t, 1, unlocked)
	assert.False(t, lm.IsStarted())
	assert.False(t, dev.IsLocked())

	require.NoError(t, lm.Start())
	require.NoError(t, lm.Stop())
	assert.False(t, dev.IsCallLocked())
}
