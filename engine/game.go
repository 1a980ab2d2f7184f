package engine

import (
	"github.com/spaghettifunk/anvil/engine/assets"
	"github.com/spaghettifunk/anvil/engine/renderer"
	"github.com/spaghettifunk/anvil/engine/systems"
)

// Context is what the engine hands a game once its subsystems are up.
type Context struct {
	Device renderer.GraphicsDevice
	Assets *assets.AssetManager
	Jobs   *systems.JobSystem
}

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          renderer.RenderFunc
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func(ctx *Context) error
type Update func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
