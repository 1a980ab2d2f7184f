package loaders

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestMipChainHalvesToOne(t *testing.T) {
	levels := MipChain(image.NewRGBA(image.Rect(0, 0, 8, 4)))

	var sizes [][2]int
	for _, level := range levels {
		sizes = append(sizes, [2]int{level.Rect.Dx(), level.Rect.Dy()})
	}
	require.Equal(t, [][2]int{{8, 4}, {4, 2}, {2, 1}, {1, 1}}, sizes)
}

func TestDecodeImageConvertsToRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			src.Set(x, y, color.NRGBA{A: 255})
		}
	}
	src.Set(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, src))
	path := filepath.Join(t.TempDir(), "pixel.bmp")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	img, err := DecodeImage(path)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 3, 2), img.Rect)
	require.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, img.RGBAAt(2, 1))

	FlipVertical(img)
	require.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, img.RGBAAt(2, 0))
}

func TestDecodeImageMissingFile(t *testing.T) {
	_, err := DecodeImage(filepath.Join(t.TempDir(), "nope.png"))
	require.ErrorIs(t, err, core.ErrAssetNotFound)
}

func TestValidateSPIRV(t *testing.T) {
	require.ErrorIs(t, ValidateSPIRV(nil), core.ErrEmptyBytecode)
	require.Error(t, ValidateSPIRV(make([]byte, 7)))

	code := make([]byte, 20)
	require.Error(t, ValidateSPIRV(code))

	binary.LittleEndian.PutUint32(code, SPIRVMagic)
	require.NoError(t, ValidateSPIRV(code))
	binary.BigEndian.PutUint32(code, SPIRVMagic)
	require.NoError(t, ValidateSPIRV(code))
}
