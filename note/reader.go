package note

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrLayerAbsent is returned when a requested layer's address is 0,
// i.e. the layer exists in the page table but carries no metadata.
var ErrLayerAbsent = errors.New("layer is not present on this page")

// File is a read-only view over the bytes of a note file. All
// operations are idempotent; the view never interprets ink.
type File struct {
	data       []byte
	signature  string
	footerAddr uint32
	header     Tags
	footer     Tags
}

// Open validates the container framing and decodes the header and
// footer address tables. Unknown tags anywhere are preserved, and any
// SN_FILE_VER_ signature revision is accepted.
func Open(data []byte) (*File, error) {
	if len(data) < headerOffset+8 {
		return nil, &FormatError{Offset: 0, Reason: "file too short for marker, signature and trailer"}
	}
	if string(data[:4]) != FileTypeMarker {
		return nil, &FormatError{Offset: 0, Reason: fmt.Sprintf("bad file type marker %q", data[:4])}
	}
	signature := string(data[4:headerOffset])
	if !strings.HasPrefix(signature, SignaturePrefix) {
		return nil, &FormatError{Offset: 4, Reason: fmt.Sprintf("bad signature %q", signature)}
	}
	if string(data[len(data)-8:len(data)-4]) != TailMarker {
		return nil, &FormatError{Offset: int64(len(data) - 8), Reason: "trailer marker 'tail' missing"}
	}

	f := &File{
		data:       data,
		signature:  signature,
		footerAddr: binary.LittleEndian.Uint32(data[len(data)-4:]),
	}

	footerPayload, err := f.Block(f.footerAddr)
	if err != nil {
		return nil, fmt.Errorf("footer: %w", err)
	}
	f.footer = DecodeTags(footerPayload)

	headerPayload, err := f.Block(headerOffset)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	f.header = DecodeTags(headerPayload)

	return f, nil
}

// OpenFile reads and opens a note file from disk.
func OpenFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Open(data)
}

// Block reads the length-prefixed payload whose prefix word sits at
// addr, bounds-checked against the file image.
func (f *File) Block(addr uint32) ([]byte, error) {
	if addr == 0 {
		return nil, &FormatError{Offset: 0, Reason: "zero block address"}
	}
	pos := int64(addr)
	if pos+4 > int64(len(f.data)) {
		return nil, &FormatError{Offset: pos, Reason: "block address out of bounds"}
	}
	length := int64(binary.LittleEndian.Uint32(f.data[pos : pos+4]))
	if pos+4+length > int64(len(f.data)) {
		return nil, &FormatError{Offset: pos, Reason: fmt.Sprintf("block of %d bytes overruns end of file", length)}
	}
	return f.data[pos+4 : pos+4+length], nil
}

// Size returns the total file size in bytes.
func (f *File) Size() int64 { return int64(len(f.data)) }

// Signature returns the 20-byte version signature.
func (f *File) Signature() string { return f.signature }

// Header returns the ordered header records.
func (f *File) Header() Tags { return f.header }

// Footer returns the ordered footer records.
func (f *File) Footer() Tags { return f.footer }

// FooterAddress returns the absolute offset of the footer block.
func (f *File) FooterAddress() uint32 { return f.footerAddr }

// Shape infers the file layout. The format carries no discriminator
// byte; a PDFSTYLE record in the header marks the paginated shape.
func (f *File) Shape() Shape {
	if f.header.Has("PDFSTYLE") {
		return ShapePaginated
	}
	return ShapeImageTemplate
}

// FileID returns the header FILE_ID value, empty when absent.
func (f *File) FileID() string {
	v, _ := f.header.Get("FILE_ID")
	return v
}

// Equipment returns the device equipment code from the header.
func (f *File) Equipment() string {
	v, _ := f.header.Get("APPLY_EQUIPMENT")
	return v
}

// PageView is the decoded metadata of one page plus its layer address
// table.
type PageView struct {
	Index int
	Tags  Tags

	file *File
}

// PageCount returns the number of PAGE<n> entries in the footer.
func (f *File) PageCount() int {
	count := 0
	for _, t := range f.footer {
		if pageTagIndex(t.Key) > 0 {
			count++
		}
	}
	return count
}

func pageTagIndex(key string) int {
	rest, ok := strings.CutPrefix(key, "PAGE")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// Pages decodes every page metadata block, ordered by page number.
func (f *File) Pages() ([]*PageView, error) {
	type pageEntry struct {
		index int
		addr  uint32
	}
	var entries []pageEntry
	for _, t := range f.footer {
		n := pageTagIndex(t.Key)
		if n == 0 {
			continue
		}
		addr, err := parseAddr(t.Value)
		if err != nil {
			return nil, &FormatError{Offset: int64(f.footerAddr), Reason: fmt.Sprintf("bad %s address %q", t.Key, t.Value)}
		}
		entries = append(entries, pageEntry{n, addr})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

	pages := make([]*PageView, 0, len(entries))
	for _, e := range entries {
		payload, err := f.Block(e.addr)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", e.index, err)
		}
		pages = append(pages, &PageView{Index: e.index, Tags: DecodeTags(payload), file: f})
	}
	return pages, nil
}

// Page returns the 1-based page n.
func (f *File) Page(n int) (*PageView, error) {
	addrStr, ok := f.footer.Get("PAGE" + strconv.Itoa(n))
	if !ok {
		return nil, fmt.Errorf("page %d not present in footer", n)
	}
	addr, err := parseAddr(addrStr)
	if err != nil {
		return nil, &FormatError{Offset: int64(f.footerAddr), Reason: fmt.Sprintf("bad PAGE%d address %q", n, addrStr)}
	}
	payload, err := f.Block(addr)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", n, err)
	}
	return &PageView{Index: n, Tags: DecodeTags(payload), file: f}, nil
}

// LayerOrder returns this page's layer names: the LAYERSEQ record when
// present, the conventional full order otherwise.
func (p *PageView) LayerOrder() []string {
	if seq, ok := p.Tags.Get("LAYERSEQ"); ok && len(seq) > 0 {
		return strings.Split(seq, ",")
	}
	return AllLayerNames
}

// LayerView is the decoded metadata of one layer. Content is fetched
// lazily through Content.
type LayerView struct {
	Name     string
	Type     string
	Protocol string
	Tags     Tags

	contentAddr uint32
	file        *File
}

// Layer resolves the named layer of this page. Layers listed with
// address 0 yield ErrLayerAbsent.
func (p *PageView) Layer(name string) (*LayerView, error) {
	addrStr, ok := p.Tags.Get(name)
	if !ok {
		return nil, fmt.Errorf("page %d has no layer record %q", p.Index, name)
	}
	addr, err := parseAddr(addrStr)
	if err != nil {
		return nil, &FormatError{Offset: 0, Reason: fmt.Sprintf("bad %s address %q", name, addrStr)}
	}
	if addr == 0 {
		return nil, ErrLayerAbsent
	}

	payload, err := p.file.Block(addr)
	if err != nil {
		return nil, fmt.Errorf("layer %s: %w", name, err)
	}
	tags := DecodeTags(payload)

	l := &LayerView{Name: name, Tags: tags, file: p.file}
	l.Type, _ = tags.Get("LAYERTYPE")
	l.Protocol, _ = tags.Get("LAYERPROTOCOL")
	if bitmapStr, ok := tags.Get("LAYERBITMAP"); ok {
		if l.contentAddr, err = parseAddr(bitmapStr); err != nil {
			return nil, &FormatError{Offset: 0, Reason: fmt.Sprintf("bad LAYERBITMAP address %q", bitmapStr)}
		}
	}
	return l, nil
}

// Layers resolves the present layers of this page in LAYERSEQ order.
func (p *PageView) Layers() ([]*LayerView, error) {
	var out []*LayerView
	for _, name := range p.LayerOrder() {
		l, err := p.Layer(name)
		if errors.Is(err, ErrLayerAbsent) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Content returns the layer's content block: the background raster for
// BGLAYER, the run-length ink block otherwise. Nil when the layer has
// no content pointer.
func (l *LayerView) Content() ([]byte, error) {
	if l.contentAddr == 0 {
		return nil, nil
	}
	return l.file.Block(l.contentAddr)
}

// IsRaster reports whether content looks like an embedded PNG rather
// than a run-length block.
func IsRaster(content []byte) bool {
	return bytes.HasPrefix(content, []byte("\x89PNG\r\n\x1a\n"))
}

// StyleEntry is a footer record pointing at a background block.
type StyleEntry struct {
	Key     string
	Address uint32
}

// Styles returns footer entries whose key begins with STYLE_, in file
// order.
func (f *File) Styles() []StyleEntry {
	var out []StyleEntry
	for _, t := range f.footer {
		if !strings.HasPrefix(t.Key, "STYLE_") {
			continue
		}
		if addr, err := parseAddr(t.Value); err == nil {
			out = append(out, StyleEntry{Key: t.Key, Address: addr})
		}
	}
	return out
}

// Link is a page link recorded by the device: a rectangle on a source
// page jumping to a destination page, possibly in another file.
type Link struct {
	SourcePage int // 1-based
	X, Y, W, H int
	DestPage   int // 1-based
	SameFile   bool
}

// Links decodes LINKO_ footer entries. Generated files never carry
// them; device-authored ones may.
func (f *File) Links() []Link {
	var links []Link
	for _, t := range f.footer {
		if !strings.HasPrefix(t.Key, "LINKO_") || len(t.Key) < 10 {
			continue
		}
		srcPage, err := strconv.Atoi(t.Key[6:10])
		if err != nil {
			continue
		}
		addr, err := parseAddr(t.Value)
		if err != nil {
			continue
		}
		payload, err := f.Block(addr)
		if err != nil {
			continue
		}
		tags := DecodeTags(payload)

		rect, ok := tags.Get("LINKRECT")
		if !ok {
			continue
		}
		parts := strings.Split(rect, ",")
		if len(parts) != 4 {
			continue
		}
		var nums [4]int
		bad := false
		for i, part := range parts {
			if nums[i], err = strconv.Atoi(part); err != nil {
				bad = true
				break
			}
		}
		if bad {
			continue
		}

		destStr, ok := tags.Get("OBJPAGE")
		if !ok {
			continue
		}
		dest, err := strconv.Atoi(destStr)
		if err != nil {
			continue
		}

		fileID, _ := tags.Get("LINKFILEID")
		links = append(links, Link{
			SourcePage: srcPage,
			X:          nums[0], Y: nums[1], W: nums[2], H: nums[3],
			DestPage: dest,
			SameFile: f.FileID() != "" && fileID == f.FileID(),
		})
	}
	return links
}

func parseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
