package engine

import (
	"context"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/anvil/engine/assets"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/spaghettifunk/anvil/engine/platform"
	"github.com/spaghettifunk/anvil/engine/renderer"
	"github.com/spaghettifunk/anvil/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting down"
	}
	return "unknown"
}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *core.Config
	isRunning    bool
	isSuspended  bool
	platform     *platform.Platform
	assetManager *assets.AssetManager
	jobs         *systems.JobSystem
	frontend     *renderer.Frontend
	width        uint32
	height       uint32
	clock        *core.Clock
	lastTime     float64
	stalls       uint64
}

func New(g *Game, cfg *core.Config) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, errors.New("game and its application config are required")
	}
	if g.ApplicationConfig.Name != "" {
		cfg.Window.Title = g.ApplicationConfig.Name
	}
	core.SetLogLevel(cfg.Log.Level)

	p, err := platform.New()
	if err != nil {
		return nil, err
	}

	am, err := assets.NewAssetManager(cfg.Assets)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	workers := g.ApplicationConfig.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	jobs, err := systems.NewJobSystem(workers, workers*2)
	if err != nil {
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       cfg,
		clock:        core.NewClock(),
		platform:     p,
		assetManager: am,
		jobs:         jobs,
		isRunning:    true,
		width:        cfg.Window.Width,
		height:       cfg.Window.Height,
	}, nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Initialize opens the window, indexes the assets, creates the graphics device and runs
// the game's initializer. The config file is watched until ctx is cancelled.
func (e *Engine) Initialize(ctx context.Context) error {
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_KEY_RELEASED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)
	core.EventRegister(core.EVENT_CODE_RENDERER_STALL, e, e.onStall)

	app := e.gameInstance.ApplicationConfig
	if err := e.platform.Startup(e.config.Window.Title, app.StartPosX, app.StartPosY, e.width, e.height); err != nil {
		return err
	}

	if err := e.assetManager.Initialize(); err != nil {
		return err
	}

	frontend, err := renderer.New(e.config, e.platform)
	if err != nil {
		return err
	}
	e.frontend = frontend

	if app.ConfigPath != "" {
		err := core.WatchConfig(ctx, app.ConfigPath, func(cfg *core.Config) {
			core.SetLogLevel(cfg.Log.Level)
		})
		if err != nil {
			core.LogWarn("config hot reload disabled: %s", err)
		}
	}

	gameCtx := &Context{
		Device: frontend.Device(),
		Assets: e.assetManager,
		Jobs:   e.jobs,
	}
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(gameCtx); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Run pumps window events and draws frames until the window closes, the game asks to quit
// or ctx is cancelled. It must be called from the main goroutine.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return errors.Newf("engine cannot run while %s", e.currentStage)
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		select {
		case <-ctx.Done():
			core.LogInfo("context cancelled, shutting down.")
			e.isRunning = false
			continue
		default:
		}

		if !e.platform.PumpMessages() {
			e.isRunning = false
			break
		}
		if e.isSuspended {
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("Game update failed, shutting down.")
				return err
			}
		}

		if err := e.frontend.DrawFrame(delta, e.gameInstance.FnRender); err != nil {
			core.LogError("Game render failed, shutting down.")
			return err
		}

		e.lastTime = currentTime
	}
	return nil
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown

	var errs error
	if e.frontend != nil {
		// the GPU must be idle before the game frees what it created
		if err := e.frontend.Device().WaitForGPU(); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	if e.gameInstance.FnShutdown != nil {
		errs = errors.CombineErrors(errs, e.gameInstance.FnShutdown())
	}
	if e.frontend != nil {
		errs = errors.CombineErrors(errs, e.frontend.Shutdown())
		fps, frameTime := core.MetricsFrame()
		core.LogInfo("last %.1f fps, %.2f ms average frame, %d frames skipped, %d descriptor stalls",
			fps, frameTime, e.frontend.Skipped(), e.stalls)
	}
	errs = errors.CombineErrors(errs, e.jobs.Shutdown())
	errs = errors.CombineErrors(errs, e.assetManager.Shutdown())
	errs = errors.CombineErrors(errs, e.platform.Shutdown())
	core.EventShutdown()
	return errs
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	if code == core.EVENT_CODE_KEY_PRESSED {
		core.LogDebug("key %d pressed", data.Key)
	} else {
		core.LogDebug("key %d released", data.Key)
	}
	return false
}

func (e *Engine) onStall(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	e.stalls++
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	width, height := data.Width, data.Height
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	return false
}
