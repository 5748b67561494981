package texture

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmpty is returned for images without pixels.
var ErrEmpty = errors.New("texture: empty image")

// Image is straight-alpha RGBA8 pixel data ready for upload.
type Image struct {
	Label  string
	Width  uint32
	Height uint32
	Pixels []byte
}

// Uploader creates GPU textures. renderer.Renderer satisfies it.
type Uploader interface {
	InitTexture(label string, width, height uint32, pixels []byte) (*wgpu.TextureView, error)
}

// Load decodes an image file. png, jpeg, gif, bmp, tiff and webp are supported. The label is
// the file name without its extension.
//
// Parameters:
//   - path: the image file
//   - options: decode options
//
// Returns:
//   - *Image: the decoded pixels
//   - error: an open or decode error
func Load(path string, options ...LoadOption) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	defer f.Close()

	label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Decode(f, label, options...)
}

// Decode reads an image in any registered format.
//
// Parameters:
//   - r: the encoded image
//   - label: the debug label of the texture
//   - options: decode options
//
// Returns:
//   - *Image: the decoded pixels
//   - error: a decode error, or ErrEmpty
func Decode(r io.Reader, label string, options ...LoadOption) (*Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", label, err)
	}
	img, err := FromImage(label, src, options...)
	if err != nil {
		return nil, fmt.Errorf("texture %q (%s): %w", label, format, err)
	}
	return img, nil
}

// FromImage converts src to straight-alpha RGBA8, scaling it down when it exceeds the
// configured maximum size. The aspect ratio is kept.
//
// Parameters:
//   - label: the debug label of the texture
//   - src: the source image
//   - options: decode options
//
// Returns:
//   - *Image: the converted pixels
//   - error: ErrEmpty if src has no pixels
func FromImage(label string, src image.Image, options ...LoadOption) (*Image, error) {
	cfg := loadConfig{maxSize: DefaultMaxSize, scaler: draw.BiLinear}
	for _, opt := range options {
		opt(&cfg)
	}

	size := src.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, ErrEmpty
	}
	dstSize := fit(size, cfg.maxSize)

	dst := image.NewNRGBA(image.Rectangle{Max: dstSize})
	if dstSize == size {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	} else {
		cfg.scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	}
	return &Image{
		Label:  label,
		Width:  uint32(dstSize.X),
		Height: uint32(dstSize.Y),
		Pixels: dst.Pix,
	}, nil
}

// Upload creates the GPU texture and wraps it for materials.
//
// Parameters:
//   - u: the uploader
//
// Returns:
//   - *material.Texture: the texture, with straight alpha
//   - error: an error if the GPU texture could not be created
func (img *Image) Upload(u Uploader) (*material.Texture, error) {
	view, err := u.InitTexture(img.Label, img.Width, img.Height, img.Pixels)
	if err != nil {
		return nil, fmt.Errorf("failed to upload texture %q: %w", img.Label, err)
	}
	return &material.Texture{Label: img.Label, View: view}, nil
}

// Checker returns a size×size grey checkerboard, one texel per cell.
//
// Parameters:
//   - label: the debug label of the texture
//   - size: the edge length in texels
//
// Returns:
//   - *Image: the checkerboard
func Checker(label string, size int) *Image {
	px := make([]byte, size*size*4)
	for y := range size {
		for x := range size {
			v := byte(255)
			if (x+y)%2 == 1 {
				v = 160
			}
			o := (y*size + x) * 4
			px[o], px[o+1], px[o+2], px[o+3] = v, v, v, 255
		}
	}
	return &Image{Label: label, Width: uint32(size), Height: uint32(size), Pixels: px}
}

// fit scales size down so neither edge exceeds limit. A non-positive limit disables scaling.
func fit(size image.Point, limit int) image.Point {
	longest := max(size.X, size.Y)
	if limit <= 0 || longest <= limit {
		return size
	}
	return image.Point{
		X: max(1, size.X*limit/longest),
		Y: max(1, size.Y*limit/longest),
	}
}
