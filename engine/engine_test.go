package engine

import (
	"context"
	"testing"

	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/stretchr/testify/require"
)

func TestResizeSuspendsAndResumes(t *testing.T) {
	var sizes [][2]uint32
	e := &Engine{
		width:  1280,
		height: 720,
		gameInstance: &Game{
			ApplicationConfig: &ApplicationConfig{},
			FnOnResize: func(w, h uint32) error {
				sizes = append(sizes, [2]uint32{w, h})
				return nil
			},
		},
	}

	e.onResized(core.EVENT_CODE_RESIZED, nil, nil, core.EventContext{Width: 0, Height: 0})
	require.True(t, e.isSuspended)
	require.Empty(t, sizes)

	e.onResized(core.EVENT_CODE_RESIZED, nil, nil, core.EventContext{Width: 800, Height: 600})
	require.False(t, e.isSuspended)
	require.Equal(t, [][2]uint32{{800, 600}}, sizes)
	w, h := e.GetFramebufferSize()
	require.Equal(t, uint32(800), w)
	require.Equal(t, uint32(600), h)
}

func TestQuitEventStopsTheLoop(t *testing.T) {
	e := &Engine{isRunning: true}
	require.True(t, e.onEvent(core.EVENT_CODE_APPLICATION_QUIT, nil, nil, core.EventContext{}))
	require.False(t, e.isRunning)
}

func TestRunRequiresInitialize(t *testing.T) {
	e := &Engine{}
	require.Error(t, e.Run(context.Background()))
	require.Equal(t, "uninitialized", e.Stage().String())
}

func TestNewRequiresApplicationConfig(t *testing.T) {
	_, err := New(&Game{}, core.DefaultConfig())
	require.Error(t, err)
}
