package core

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[window]
title = "demo"

[renderer]
backend = "vulkan"
max_rename_count = 64
`))
	require.NoError(t, err)
	require.Equal(t, "demo", cfg.Window.Title)
	require.Equal(t, uint32(1280), cfg.Window.Width)
	require.Equal(t, uint32(64), cfg.Renderer.MaxRenameCount)
	require.Equal(t, DefaultThreadAllocatorSize, cfg.Renderer.ThreadAllocatorSize)
	require.Equal(t, DefaultUploaderSize, cfg.Renderer.BufferUploaderSize)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestParseConfigRejectsUnknownBackend(t *testing.T) {
	_, err := ParseConfig([]byte("[renderer]\nbackend = \"metal\"\n"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = ParseConfig([]byte("[renderer\n"))
	require.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestAssertPanics(t *testing.T) {
	if !AssertionsEnabled {
		t.Skip("assertions compiled out")
	}
	require.Panics(t, func() { Assert(false, "value %d", 3) })
	require.NotPanics(t, func() { Assert(true, "fine") })
}

func TestEventFireStopsWhenHandled(t *testing.T) {
	defer EventShutdown()

	var calls []string
	a, b := "a", "b"
	require.True(t, EventRegister(EVENT_CODE_RESIZED, &a, func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, "a")
		return data.Width == 0
	}))
	require.True(t, EventRegister(EVENT_CODE_RESIZED, &b, func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, "b")
		return true
	}))
	require.False(t, EventRegister(EVENT_CODE_RESIZED, &a, nil))

	require.True(t, EventFire(EVENT_CODE_RESIZED, nil, EventContext{Width: 10}))
	require.Equal(t, []string{"a", "b"}, calls)

	require.True(t, EventUnregister(EVENT_CODE_RESIZED, &b))
	require.False(t, EventFire(EVENT_CODE_RESIZED, nil, EventContext{Width: 10}))
}

func TestMetricsAverage(t *testing.T) {
	require.NoError(t, MetricsInitialize())
	for i := 0; i < AVG_COUNT; i++ {
		MetricsUpdate(0.016)
	}
	require.InDelta(t, 16.0, MetricsFrameTime(), 0.001)
}

func TestIdentifierLifecycle(t *testing.T) {
	owner := struct{ name string }{"buffer"}
	id := IdentifierAquireNewID(owner)
	got, ok := IdentifierOwner(id)
	require.True(t, ok)
	require.Equal(t, owner, got)

	count := IdentifierCount()
	IdentifierReleaseID(id)
	_, ok = IdentifierOwner(id)
	require.False(t, ok)
	require.Equal(t, count-1, IdentifierCount())

	IdentifierReleaseID(id)
	require.Equal(t, count-1, IdentifierCount())
}

func TestClockElapsed(t *testing.T) {
	base := time.Unix(100, 0)
	current := base
	c := NewClock()
	c.now = func() time.Time { return current }

	c.Update()
	require.Zero(t, c.Elapsed())

	c.Start()
	current = base.Add(1500 * time.Millisecond)
	c.Update()
	require.InDelta(t, 1.5, c.Elapsed(), 1e-9)

	c.Stop()
	current = base.Add(10 * time.Second)
	c.Update()
	require.InDelta(t, 1.5, c.Elapsed(), 1e-9)
}
