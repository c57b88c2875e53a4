// Package pageimage produces background page rasters for the note
// codec: an ordered finite sequence of frames already at device
// resolution, each carrying the exact bytes to embed.
package pageimage

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"

	"snc/common"
	"snc/note"
)

// Frame is one background page: the bytes the codec will embed
// verbatim, plus pixel dimensions for early validation.
type Frame struct {
	Data   []byte
	Width  int
	Height int
}

// Source yields the ordered page backgrounds of a document.
type Source interface {
	Frames() ([]Frame, error)
}

// FromImage prepares a single frame from raster bytes. A PNG that is
// already at device resolution is passed through untouched (the device
// compares fingerprints of the exact bytes); anything else is decoded,
// brought to device resolution according to mode and re-encoded as PNG.
func FromImage(data []byte, spec note.DeviceSpec, mode common.ImageResizeMode) (Frame, error) {
	if !filetype.IsImage(data) {
		return Frame{}, fmt.Errorf("input is not a recognized raster image")
	}

	if t, err := filetype.Match(data); err == nil && t.Extension == "png" {
		if cfg, err := decodeConfig(data); err == nil &&
			cfg.Width == spec.Width && cfg.Height == spec.Height {
			return Frame{Data: data, Width: cfg.Width, Height: cfg.Height}, nil
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Frame{}, fmt.Errorf("unable to decode raster: %w", err)
	}

	if mode == common.ImageResizeModeNone {
		b := img.Bounds()
		if b.Dx() != spec.Width || b.Dy() != spec.Height {
			return Frame{}, fmt.Errorf("raster is %dx%d and resizing is disabled, device %s requires %dx%d",
				b.Dx(), b.Dy(), spec.Name, spec.Width, spec.Height)
		}
	} else {
		img = resize(img, spec, mode)
	}
	return encodeFrame(img)
}

// FromImageFile prepares a frame from an image file on disk.
func FromImageFile(path string, spec note.DeviceSpec, mode common.ImageResizeMode) (Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Frame{}, err
	}
	return FromImage(data, spec, mode)
}

// resize brings img to exactly the device resolution: stretch ignores
// aspect ratio, keepAR fits and centers on a white canvas so the
// result still matches the device dimensions exactly.
func resize(img image.Image, spec note.DeviceSpec, mode common.ImageResizeMode) image.Image {
	if mode == common.ImageResizeModeStretch {
		return imaging.Resize(img, spec.Width, spec.Height, imaging.Lanczos)
	}
	fitted := imaging.Fit(img, spec.Width, spec.Height, imaging.Lanczos)
	canvas := imaging.New(spec.Width, spec.Height, whiteColor)
	return imaging.PasteCenter(canvas, fitted)
}

func encodeFrame(img image.Image) (Frame, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return Frame{}, fmt.Errorf("unable to encode raster: %w", err)
	}
	b := img.Bounds()
	return Frame{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

func decodeConfig(data []byte) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	return cfg, err
}
