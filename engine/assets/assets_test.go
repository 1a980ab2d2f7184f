package assets

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anvil/engine/assets/loaders"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xFF})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeSPIRV(t *testing.T, path string) {
	t.Helper()
	code := make([]byte, 20)
	binary.LittleEndian.PutUint32(code, loaders.SPIRVMagic)
	require.NoError(t, os.WriteFile(path, code, 0o644))
}

func newTestRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "textures"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "shaders"), 0o755))
	writePNG(t, filepath.Join(root, "textures", "checker.png"), 8, 4)
	writeSPIRV(t, filepath.Join(root, "shaders", "quad.vert.spv"))
	manifest := `
[textures]
checker = { path = "textures/checker.png", mipmaps = true }

[shaders]
quad_vs = "shaders/quad.vert.spv"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestName), []byte(manifest), 0o644))
	return root
}

func TestAssetManagerResolvesManifestNames(t *testing.T) {
	am, err := NewAssetManager(core.AssetsConfig{Root: newTestRoot(t)})
	require.NoError(t, err)
	require.NoError(t, am.Initialize())
	t.Cleanup(func() { require.NoError(t, am.Shutdown()) })

	path, kind, err := am.Resolve("checker")
	require.NoError(t, err)
	require.Equal(t, AssetTypeImage, kind)
	require.Equal(t, "checker.png", filepath.Base(path))

	_, kind, err = am.Resolve("shaders/quad.vert.spv")
	require.NoError(t, err)
	require.Equal(t, AssetTypeShader, kind)

	_, _, err = am.Resolve("missing")
	require.ErrorIs(t, err, core.ErrAssetNotFound)
}

func TestAssetManagerCachesUntilChanged(t *testing.T) {
	am, err := NewAssetManager(core.AssetsConfig{Root: newTestRoot(t)})
	require.NoError(t, err)
	require.NoError(t, am.Initialize())
	t.Cleanup(func() { require.NoError(t, am.Shutdown()) })

	var changed []string
	am.OnChange(func(path string) { changed = append(changed, path) })

	first, err := am.LoadAsset("checker", nil)
	require.NoError(t, err)
	levels, ok := first.Data.([]*image.RGBA)
	require.True(t, ok)
	require.Len(t, levels, 4)

	again, err := am.LoadAsset("checker", nil)
	require.NoError(t, err)
	require.Same(t, first, again)

	path, _, err := am.Resolve("checker")
	require.NoError(t, err)
	am.handleFileEvent(path)
	require.Equal(t, []string{path}, changed)

	reloaded, err := am.LoadAsset("checker", nil)
	require.NoError(t, err)
	require.NotSame(t, first, reloaded)
}

func TestAssetManagerRejectsBadManifest(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestName), []byte("[textures\n"), 0o644))

	am, err := NewAssetManager(core.AssetsConfig{Root: root})
	require.NoError(t, err)
	require.ErrorIs(t, am.Initialize(), core.ErrInvalidConfig)
}

func TestDetermineAssetType(t *testing.T) {
	require.Equal(t, AssetTypeImage, determineAssetType("a/b.WEBP"))
	require.Equal(t, AssetTypeShader, determineAssetType("quad.frag.spv"))
	require.Equal(t, AssetTypeBinary, determineAssetType("mesh.bin"))
	require.Equal(t, AssetTypeNone, determineAssetType("assets.toml"))
}
