package loaders

import (
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/anvil/engine/core"
	anvilmath "github.com/spaghettifunk/anvil/engine/math"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type ImageParams struct {
	FlipY   bool
	MipMaps bool
}

type ImageLoader struct{}

// DecodeImage reads any registered format and converts it to tightly packed RGBA8 with the
// origin at (0,0).
func DecodeImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(core.ErrAssetNotFound, "%s", path)
		}
		return nil, err
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(core.ErrUnsupportedFormat, "decode %s: %s", path, err)
	}
	core.LogDebug("decoded %s image %s", format, path)

	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba, nil
	}
	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Rect, src, bounds.Min, draw.Src)
	return rgba, nil
}

// FlipVertical mirrors img in place along its horizontal axis.
func FlipVertical(img *image.RGBA) {
	h := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
}

// MipChain returns img followed by every smaller level down to 1x1. Each level halves the
// previous one, clamped at 1.
func MipChain(img *image.RGBA) []*image.RGBA {
	w, h := uint32(img.Rect.Dx()), uint32(img.Rect.Dy())
	count := anvilmath.Log2(anvilmath.Max(w, h)) + 1

	levels := make([]*image.RGBA, 0, count)
	levels = append(levels, img)
	for mip := uint32(1); mip < count; mip++ {
		prev := levels[mip-1]
		level := image.NewRGBA(image.Rect(0, 0, int(anvilmath.MipExtent(w, mip)), int(anvilmath.MipExtent(h, mip))))
		xdraw.CatmullRom.Scale(level, level.Rect, prev, prev.Rect, xdraw.Src, nil)
		levels = append(levels, level)
	}
	return levels
}

func (il *ImageLoader) Load(path string, params interface{}) (*Resource, error) {
	p, _ := params.(*ImageParams)

	img, err := DecodeImage(path)
	if err != nil {
		return nil, err
	}
	if p != nil && p.FlipY {
		FlipVertical(img)
	}
	levels := []*image.RGBA{img}
	if p != nil && p.MipMaps {
		levels = MipChain(img)
	}

	var size uint64
	for _, level := range levels {
		size += uint64(len(level.Pix))
	}
	return &Resource{
		Name:     path,
		FullPath: path,
		DataSize: size,
		Data:     levels,
	}, nil
}

func (il *ImageLoader) Unload(*Resource) error {
	return nil
}
