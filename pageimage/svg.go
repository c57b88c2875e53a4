package pageimage

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"snc/note"
)

var whiteColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

const defaultSVGSize = 2048 // used when SVG viewBox carries no size

// FromSVG rasterizes an SVG template at device resolution: the drawing
// is scaled to fit the page keeping aspect ratio, centered on a white
// canvas and encoded as PNG.
func FromSVG(svgData []byte, spec note.DeviceSpec) (Frame, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return Frame{}, err
	}

	intrW := int(math.Ceil(icon.ViewBox.W))
	intrH := int(math.Ceil(icon.ViewBox.H))
	if intrW <= 0 {
		intrW = defaultSVGSize
	}
	if intrH <= 0 {
		intrH = defaultSVGSize
	}

	scale := math.Min(float64(spec.Width)/float64(intrW), float64(spec.Height)/float64(intrH))
	w := max(int(math.Round(float64(intrW)*scale)), 1)
	h := max(int(math.Round(float64(intrH)*scale)), 1)

	dst := image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: whiteColor}, image.Point{}, draw.Src)

	// center the drawing on the page
	offX := (spec.Width - w) / 2
	offY := (spec.Height - h) / 2
	icon.SetTarget(float64(offX), float64(offY), float64(w), float64(h))

	scanner := rasterx.NewScannerGV(spec.Width, spec.Height, dst, dst.Bounds())
	dasher := rasterx.NewDasher(spec.Width, spec.Height, scanner)
	icon.Draw(dasher, 1.0)

	return encodeFrame(dst)
}

// IsSVG sniffs SVG input: filetype matchers cover rasters only, so
// templates are recognized by their markup.
func IsSVG(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<svg")) || bytes.Contains(head, []byte("<?xml"))
}
