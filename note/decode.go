package note

import (
	"fmt"
	"strconv"
	"strings"
)

// DecodeDocument rebuilds an in-memory Document from an opened file so
// it can be re-encoded. Page identifiers and ink blocks are carried
// over; the file identifier is regenerated (a re-encoded file is a new
// file on the device). Re-encoding the result reproduces the original
// byte-for-byte outside the regenerated identifier regions.
func DecodeDocument(f *File) (*Document, error) {
	doc := &Document{
		Shape:    f.Shape(),
		Realtime: false,
		FileID:   NewFileID(),
	}

	spec, err := deviceFromEquipment(f.Equipment())
	if err != nil {
		return nil, err
	}
	doc.Device = spec

	if v, _ := f.Header().Get("FILE_RECOGN_TYPE"); v == "1" {
		doc.Realtime = true
	}
	if v, _ := f.Header().Get("FILE_RECOGN_LANGUAGE"); v != "" && v != "none" {
		doc.Language = v
	}

	pages, err := f.Pages()
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, &FormatError{Offset: int64(f.FooterAddress()), Reason: "footer lists no pages"}
	}

	if doc.Shape == ShapePaginated {
		if err := doc.decodePaginatedIdentity(f, pages[0]); err != nil {
			return nil, err
		}
	} else if style, ok := pages[0].Tags.Get("PAGESTYLE"); ok {
		doc.SourceName = strings.TrimPrefix(style, "user_")
	}

	for _, pv := range pages {
		p := &Page{Index: pv.Index}
		p.ID, _ = pv.Tags.Get("PAGEID")

		bg, err := pv.Layer("BGLAYER")
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pv.Index, err)
		}
		if p.Background, err = bg.Content(); err != nil {
			return nil, fmt.Errorf("page %d background: %w", pv.Index, err)
		}
		p.BackgroundMD5 = Fingerprint(p.Background)

		if main, err := pv.Layer("MAINLAYER"); err == nil {
			ink, err := main.Content()
			if err != nil {
				return nil, fmt.Errorf("page %d ink: %w", pv.Index, err)
			}
			p.Ink = ink
		}

		doc.Pages = append(doc.Pages, p)
	}
	return doc, nil
}

// decodePaginatedIdentity recovers the source document name and size
// from the header PDFSTYLE ("user_pdf_<name>_<pages>") and the first
// page's PAGESTYLEMD5 ("<md5>_<size>"). Names may contain underscores,
// so both parses split on the LAST one.
func (d *Document) decodePaginatedIdentity(f *File, first *PageView) error {
	style, _ := f.Header().Get("PDFSTYLE")
	name, ok := strings.CutPrefix(style, "user_pdf_")
	if !ok {
		return &FormatError{Offset: headerOffset, Reason: fmt.Sprintf("unexpected PDFSTYLE %q", style)}
	}
	if i := strings.LastIndexByte(name, '_'); i > 0 {
		name = name[:i]
	}
	d.SourceName = name

	md5val, _ := first.Tags.Get("PAGESTYLEMD5")
	i := strings.LastIndexByte(md5val, '_')
	if i < 0 {
		return &FormatError{Offset: headerOffset, Reason: fmt.Sprintf("unexpected PAGESTYLEMD5 %q", md5val)}
	}
	size, err := strconv.ParseInt(md5val[i+1:], 10, 64)
	if err != nil {
		return &FormatError{Offset: headerOffset, Reason: fmt.Sprintf("unexpected PAGESTYLEMD5 %q", md5val)}
	}
	d.SourceSize = size
	return nil
}

// deviceFromEquipment resolves an on-wire equipment code back to a
// device profile.
func deviceFromEquipment(code string) (DeviceSpec, error) {
	if code == "N5" {
		return LookupDevice("A5X2")
	}
	if spec, err := LookupDevice(code); err == nil {
		return spec, nil
	}
	return DeviceSpec{}, fmt.Errorf("equipment code %q: %w", code, ErrUnsupportedDevice)
}
