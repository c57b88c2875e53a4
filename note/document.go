package note

import (
	"bytes"
	"fmt"
	"image/png"
)

// Shape selects one of the two file layouts. The format itself has no
// discriminator byte: the shapes differ in header tag sets, style
// naming and footer address tables.
type Shape int

const (
	// ShapePaginated is the layout of notes derived from a multi-page
	// source document.
	ShapePaginated Shape = iota
	// ShapeImageTemplate is the simpler single-page layout the device
	// itself creates from MyStyle raster templates.
	ShapeImageTemplate
)

func (s Shape) String() string {
	if s == ShapeImageTemplate {
		return "image-template"
	}
	return "paginated"
}

// Empty ink layers are stored as 300 repetitions of the two-byte RLE
// token 0x62 0xFF, the blank-page encoding of the device raster
// protocol. Must be emitted byte-exactly.
var emptyLayerRLE = bytes.Repeat([]byte{0x62, 0xff}, 300)

// EmptyLayerRLE returns a copy of the blank-layer run-length block.
func EmptyLayerRLE() []byte {
	return bytes.Clone(emptyLayerRLE)
}

// Page is one page of a document: its background raster (embedded
// verbatim, never re-encoded) and an optional ink layer carried over
// from an existing file.
type Page struct {
	Index         int    // 1-based
	ID            string // P<timestamp17><rand15>
	Background    []byte
	BackgroundMD5 string
	Ink           []byte // main-layer RLE; nil means the blank constant
}

// Document is the in-memory form of a note file, created once and
// serialized once. It exclusively owns its pages.
type Document struct {
	Shape    Shape
	Device   DeviceSpec
	Language string
	FileID   string
	Realtime bool

	// SourceName is the stem of the originating document (paginated
	// shape) or the template name (image-template shape).
	SourceName string
	// SourceSize is the byte size of the originating document; it
	// suffixes every paginated style fingerprint.
	SourceSize int64

	Pages []*Page
}

// Options tune document construction. The zero value is a standard
// (non-realtime) note.
type Options struct {
	Language string // recognition language, used only with Realtime
	Realtime bool
}

// NewPaginatedDocument builds a paginated-shape document from ordered
// page rasters. Rasters are fingerprinted and embedded as-is.
func NewPaginatedDocument(device, sourceName string, sourceSize int64, rasters [][]byte, opt Options) (*Document, error) {
	spec, err := LookupDevice(device)
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", device, err)
	}
	if len(rasters) == 0 {
		return nil, fmt.Errorf("document %q has no pages", sourceName)
	}

	doc := &Document{
		Shape:      ShapePaginated,
		Device:     spec,
		Language:   opt.Language,
		FileID:     NewFileID(),
		Realtime:   opt.Realtime,
		SourceName: sourceName,
		SourceSize: sourceSize,
	}
	for i, raster := range rasters {
		doc.Pages = append(doc.Pages, &Page{
			Index:         i + 1,
			ID:            NewPageID(),
			Background:    raster,
			BackgroundMD5: Fingerprint(raster),
		})
	}
	return doc, nil
}

// NewTemplateDocument builds a single-page image-template document the
// way the device creates notes from MyStyle templates.
func NewTemplateDocument(device, templateName string, raster []byte, opt Options) (*Document, error) {
	spec, err := LookupDevice(device)
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", device, err)
	}

	return &Document{
		Shape:      ShapeImageTemplate,
		Device:     spec,
		Language:   opt.Language,
		FileID:     NewFileID(),
		Realtime:   opt.Realtime,
		SourceName: templateName,
		Pages: []*Page{{
			Index:         1,
			ID:            NewPageID(),
			Background:    raster,
			BackgroundMD5: Fingerprint(raster),
		}},
	}, nil
}

// pageStyle returns the PAGESTYLE value for page p.
func (d *Document) pageStyle(p *Page) string {
	if d.Shape == ShapeImageTemplate {
		return "user_" + d.SourceName
	}
	return fmt.Sprintf("user_pdf_%s_%d", d.SourceName, p.Index)
}

// pageStyleMD5 returns the PAGESTYLEMD5 value for page p. Paginated
// fingerprints carry the source byte size as suffix, template ones do
// not.
func (d *Document) pageStyleMD5(p *Page) string {
	if d.Shape == ShapeImageTemplate {
		return p.BackgroundMD5
	}
	return fmt.Sprintf("%s_%d", p.BackgroundMD5, d.SourceSize)
}

// styleKey is the footer key for page p: PAGESTYLE and PAGESTYLEMD5
// concatenated with no separator, behind the STYLE_ prefix.
func (d *Document) styleKey(p *Page) string {
	return "STYLE_" + d.pageStyle(p) + d.pageStyleMD5(p)
}

// pdfStyle is the header PDFSTYLE value (paginated shape only).
func (d *Document) pdfStyle() string {
	return fmt.Sprintf("user_pdf_%s_%d", d.SourceName, len(d.Pages))
}

// pdfStyleMD5 is the header PDFSTYLEMD5 value. The fingerprint is the
// MD5 of the LAST page's raster, not of the source document; device
// goldens demand it.
func (d *Document) pdfStyleMD5() string {
	last := d.Pages[len(d.Pages)-1]
	return fmt.Sprintf("%s_%d", last.BackgroundMD5, d.SourceSize)
}

// styleListPayload is the PDFSTYLELIST block content: comma-terminated
// base64 entries of the full per-page style names.
func (d *Document) styleListPayload() []byte {
	var buf bytes.Buffer
	for _, p := range d.Pages {
		name := fmt.Sprintf("user_pdf_%s_%d_%s_%d", d.SourceName, p.Index, p.BackgroundMD5, d.SourceSize)
		buf.WriteString(EncodeStyleListEntry(name))
		buf.WriteByte(',')
	}
	return buf.Bytes()
}

// checkDimensions verifies that every PNG background matches the device
// resolution. Rasters the codec cannot decode as PNG are rejected: the
// device expects PNG backgrounds.
func (d *Document) checkDimensions() error {
	for _, p := range d.Pages {
		cfg, err := png.DecodeConfig(bytes.NewReader(p.Background))
		if err != nil {
			return fmt.Errorf("page %d background is not a decodable PNG: %w", p.Index, err)
		}
		if cfg.Width != d.Device.Width || cfg.Height != d.Device.Height {
			return &DimensionError{Page: p.Index, Width: cfg.Width, Height: cfg.Height, Want: d.Device}
		}
	}
	return nil
}
