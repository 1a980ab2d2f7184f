package assets

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anvil/engine/assets/loaders"
	"github.com/spaghettifunk/anvil/engine/core"
)

const ManifestName = "assets.toml"

type AssetType uint8

const (
	AssetTypeNone AssetType = iota
	AssetTypeImage
	AssetTypeShader
	AssetTypeBinary
)

func (t AssetType) String() string {
	switch t {
	case AssetTypeImage:
		return "image"
	case AssetTypeShader:
		return "shader"
	case AssetTypeBinary:
		return "binary"
	}
	return "none"
}

type TextureEntry struct {
	Path    string `toml:"path"`
	MipMaps bool   `toml:"mipmaps"`
	FlipY   bool   `toml:"flip_y"`
}

// Manifest maps asset names to files relative to the asset root.
type Manifest struct {
	Textures map[string]TextureEntry `toml:"textures"`
	Shaders  map[string]string       `toml:"shaders"`
	Binaries map[string]string       `toml:"binaries"`
}

type AssetInfo struct {
	Path       string
	Type       AssetType
	LastLoaded time.Time
	cached     *loaders.Resource
}

type AssetManager struct {
	root     string
	watch    bool
	manifest Manifest

	assets  map[string]*AssetInfo
	loaders map[AssetType]loaders.Loader
	mutex   sync.RWMutex

	onChange func(path string)

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool
}

func NewAssetManager(cfg core.AssetsConfig) (*AssetManager, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "asset root %s", cfg.Root)
	}
	am := &AssetManager{
		root:    root,
		watch:   cfg.Watch,
		assets:  make(map[string]*AssetInfo),
		loaders: make(map[AssetType]loaders.Loader),
		done:    make(chan struct{}),
	}
	am.registerLoader(AssetTypeImage, &loaders.ImageLoader{})
	am.registerLoader(AssetTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(AssetTypeBinary, &loaders.BinaryLoader{})
	return am, nil
}

// OnChange installs a callback fired, from the watcher goroutine, for every asset file
// that is rewritten on disk.
func (am *AssetManager) OnChange(fn func(path string)) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.onChange = fn
}

// Initialize reads the manifest, indexes every file under the root and, when watching is
// enabled, starts tracking changes.
func (am *AssetManager) Initialize() error {
	if _, err := os.Stat(am.root); err != nil {
		return errors.Wrapf(core.ErrAssetNotFound, "asset root %s", am.root)
	}
	if err := am.readManifest(); err != nil {
		return err
	}

	if am.watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return errors.Wrap(err, "failed to create asset watcher")
		}
		am.fsnotify = watcher
		am.wg.Add(1)
		go am.start()
	}
	if err := am.watchRecursive(am.root); err != nil {
		return err
	}
	core.LogInfo("asset manager indexed %d files under %s", len(am.assets), am.root)
	return nil
}

func (am *AssetManager) readManifest() error {
	data, err := os.ReadFile(filepath.Join(am.root, ManifestName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			core.LogDebug("no %s under %s, assets resolve by path only", ManifestName, am.root)
			return nil
		}
		return err
	}
	var manifest Manifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return errors.Wrapf(core.ErrInvalidConfig, "%s: %s", ManifestName, err)
	}
	am.manifest = manifest
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType AssetType, loader loaders.Loader) {
	am.loaders[assetType] = loader
}

// Resolve maps a manifest name, or a path relative to the root, to an absolute path.
func (am *AssetManager) Resolve(name string) (string, AssetType, error) {
	rel := name
	assetType := determineAssetType(name)
	if entry, ok := am.manifest.Textures[name]; ok {
		rel, assetType = entry.Path, AssetTypeImage
	} else if p, ok := am.manifest.Shaders[name]; ok {
		rel, assetType = p, AssetTypeShader
	} else if p, ok := am.manifest.Binaries[name]; ok {
		rel, assetType = p, AssetTypeBinary
	}

	path := filepath.Join(am.root, filepath.FromSlash(rel))
	am.mutex.RLock()
	_, exists := am.assets[path]
	am.mutex.RUnlock()
	if !exists {
		return "", AssetTypeNone, errors.Wrapf(core.ErrAssetNotFound, "%s", name)
	}
	return path, assetType, nil
}

// TextureParams returns the manifest options for a texture, or the defaults.
func (am *AssetManager) TextureParams(name string) *loaders.ImageParams {
	entry := am.manifest.Textures[name]
	return &loaders.ImageParams{FlipY: entry.FlipY, MipMaps: entry.MipMaps}
}

// LoadAsset returns the cached resource for name, loading it on first use or after the file
// changed on disk.
func (am *AssetManager) LoadAsset(name string, params interface{}) (*loaders.Resource, error) {
	path, assetType, err := am.Resolve(name)
	if err != nil {
		return nil, err
	}

	am.mutex.RLock()
	asset := am.assets[path]
	cached := asset.cached
	am.mutex.RUnlock()
	if cached != nil {
		return cached, nil
	}

	loader, ok := am.loaders[assetType]
	if !ok {
		return nil, errors.Newf("no loader registered for %s asset %s", assetType, name)
	}
	if params == nil && assetType == AssetTypeImage {
		params = am.TextureParams(name)
	}
	res, err := loader.Load(path, params)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am.mutex.Lock()
	if info, ok := am.assets[path]; ok {
		info.cached = res
		info.LastLoaded = time.Now()
	}
	am.mutex.Unlock()
	return res, nil
}

func (am *AssetManager) UnloadAsset(name string) error {
	path, assetType, err := am.Resolve(name)
	if err != nil {
		return err
	}
	am.mutex.Lock()
	info := am.assets[path]
	cached := info.cached
	info.cached = nil
	am.mutex.Unlock()
	if cached == nil {
		return nil
	}
	return am.loaders[assetType].Unload(cached)
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	am.wg.Wait()
	return nil
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	defer am.fsnotify.Close()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s.IsDir() {
				if e.Has(fsnotify.Create) {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogWarn("watch %s: %s", e.Name, err)
					}
				}
				continue
			}
			if e.Has(fsnotify.Create) || e.Has(fsnotify.Write) {
				am.handleFileEvent(e.Name)
			}
			// a deleted path cannot be stat'ed, drop it either way
			if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
				am.removeAsset(e.Name)
				_ = am.fsnotify.Remove(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			return
		}
	}
}

// watchRecursive indexes every file under path and, when watching, adds every directory
// to the watch list.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if am.fsnotify == nil {
				return nil
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// handleFileEvent indexes a new file, or drops the cached copy of one that changed.
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == AssetTypeNone {
		return
	}

	am.mutex.Lock()
	info, known := am.assets[path]
	if known {
		info.cached = nil
	} else {
		am.assets[path] = &AssetInfo{Path: path, Type: assetType}
	}
	onChange := am.onChange
	am.mutex.Unlock()

	if known && onChange != nil {
		core.LogDebug("asset %s changed on disk", path)
		onChange(path)
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) AssetType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return AssetTypeImage
	case ".spv":
		return AssetTypeShader
	case ".bin":
		return AssetTypeBinary
	default:
		return AssetTypeNone
	}
}
