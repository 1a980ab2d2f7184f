package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

const (
	MiB uint64 = 1 << 20

	DefaultMaxRenameCount      uint32 = 1024
	DefaultThreadAllocatorSize uint64 = 4 * MiB
	DefaultUploaderSize        uint64 = 256 * MiB
)

type WindowConfig struct {
	Title      string `toml:"title"`
	Width      uint32 `toml:"width"`
	Height     uint32 `toml:"height"`
	Fullscreen bool   `toml:"fullscreen"`
}

type RendererConfig struct {
	Backend    string `toml:"backend"`
	Validation bool   `toml:"validation"`
	VSync      bool   `toml:"vsync"`
	/** @brief GPU-visible descriptor sets per stage before the ring has to stall. */
	MaxRenameCount      uint32 `toml:"max_rename_count"`
	ThreadAllocatorSize uint64 `toml:"thread_allocator_size"`
	BufferUploaderSize  uint64 `toml:"buffer_uploader_size"`
	TextureUploaderSize uint64 `toml:"texture_uploader_size"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type AssetsConfig struct {
	Root  string `toml:"root"`
	Watch bool   `toml:"watch"`
}

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Log      LogConfig      `toml:"log"`
	Assets   AssetsConfig   `toml:"assets"`
}

// DefaultConfig is used for every field a config file leaves empty.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "anvil",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			Backend:             "vulkan",
			MaxRenameCount:      DefaultMaxRenameCount,
			ThreadAllocatorSize: DefaultThreadAllocatorSize,
			BufferUploaderSize:  DefaultUploaderSize,
			TextureUploaderSize: DefaultUploaderSize,
		},
		Log:    LogConfig{Level: "info"},
		Assets: AssetsConfig{Root: "assets"},
	}
}

// LoadConfig reads a TOML file, fills defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, errors.Wrapf(ErrInvalidConfig, "line %d column %d: %s", row, col, derr.Error())
		}
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Window.Title == "" {
		c.Window.Title = d.Window.Title
	}
	if c.Window.Width == 0 {
		c.Window.Width = d.Window.Width
	}
	if c.Window.Height == 0 {
		c.Window.Height = d.Window.Height
	}
	if c.Renderer.Backend == "" {
		c.Renderer.Backend = d.Renderer.Backend
	}
	if c.Renderer.MaxRenameCount == 0 {
		c.Renderer.MaxRenameCount = d.Renderer.MaxRenameCount
	}
	if c.Renderer.ThreadAllocatorSize == 0 {
		c.Renderer.ThreadAllocatorSize = d.Renderer.ThreadAllocatorSize
	}
	if c.Renderer.BufferUploaderSize == 0 {
		c.Renderer.BufferUploaderSize = d.Renderer.BufferUploaderSize
	}
	if c.Renderer.TextureUploaderSize == 0 {
		c.Renderer.TextureUploaderSize = d.Renderer.TextureUploaderSize
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Assets.Root == "" {
		c.Assets.Root = d.Assets.Root
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Renderer.Backend) {
	case "vulkan", "directx", "dx11":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown renderer backend %q", c.Renderer.Backend)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown log level %q", c.Log.Level)
	}
	if c.Renderer.ThreadAllocatorSize < 64*1024 {
		return errors.Wrapf(ErrInvalidConfig, "thread_allocator_size %d is below 64KiB", c.Renderer.ThreadAllocatorSize)
	}
	return nil
}

// WatchConfig calls onChange with the reloaded config every time the file is
// written, until ctx is cancelled. Invalid edits are logged and skipped.
func WatchConfig(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create config watcher")
	}
	// editors replace files on save, so watch the directory
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return errors.Wrapf(err, "failed to watch %s", path)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				cfg, err := LoadConfig(path)
				if err != nil {
					LogWarn("ignoring config change: %s", err)
					continue
				}
				LogInfo("config %s reloaded", path)
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				LogError("config watcher: %s", err)
			}
		}
	}()
	return nil
}
