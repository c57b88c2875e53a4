package note

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// testPNG encodes a flat gray raster at the requested size. shade
// varies page content so fingerprints differ between pages.
func testPNG(t *testing.T, w, h int, shade uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = shade
	}
	img.SetGray(0, 0, color.Gray{Y: 255 - shade}) // one differing pixel per shade
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("unable to encode test raster: %v", err)
	}
	return buf.Bytes()
}

func templateDoc(t *testing.T) *Document {
	t.Helper()
	doc, err := NewTemplateDocument("A5X2", "blank_template", testPNG(t, 1920, 2560, 255), Options{})
	if err != nil {
		t.Fatalf("unable to build document: %v", err)
	}
	return doc
}

func paginatedDoc(t *testing.T) *Document {
	t.Helper()
	rasters := [][]byte{testPNG(t, 1404, 1872, 250), testPNG(t, 1404, 1872, 128)}
	doc, err := NewPaginatedDocument("Nomad", "meeting_notes", 34567, rasters, Options{})
	if err != nil {
		t.Fatalf("unable to build document: %v", err)
	}
	return doc
}

func TestEncodeTemplateShape(t *testing.T) {
	doc := templateDoc(t)
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if string(data[:4]) != "note" {
		t.Fatalf("bad file type marker %q", data[:4])
	}
	if !strings.HasPrefix(string(data[4:24]), "SN_FILE_VER_") {
		t.Fatalf("bad signature %q", data[4:24])
	}
	if string(data[len(data)-8:len(data)-4]) != "tail" {
		t.Fatal("missing tail marker")
	}

	// footer must decode at the trailer address and carry exactly the
	// template tag set
	footerAddr := binary.LittleEndian.Uint32(data[len(data)-4:])
	f, err := Open(data)
	if err != nil {
		t.Fatalf("reader rejected generated file: %v", err)
	}
	if f.FooterAddress() != footerAddr {
		t.Fatalf("footer address mismatch: %d vs %d", f.FooterAddress(), footerAddr)
	}

	footer := f.Footer()
	md5 := doc.Pages[0].BackgroundMD5
	wantKeys := []string{"PAGE1", "DIRTY", "FILE_FEATURE", "STYLE_user_blank_template" + md5}
	if len(footer) != len(wantKeys) {
		t.Fatalf("footer has %d records, want %d: %v", len(footer), len(wantKeys), footer)
	}
	for i, k := range wantKeys {
		if footer[i].Key != k {
			t.Fatalf("footer record %d is %q, want %q", i, footer[i].Key, k)
		}
	}

	// whole file must be a seamless chain of length-prefixed blocks
	pos := int64(24)
	for pos < int64(len(data))-8 {
		length := int64(binary.LittleEndian.Uint32(data[pos : pos+4]))
		pos += 4 + length
	}
	if pos != int64(len(data))-8 {
		t.Fatalf("block chain ends at %d, trailer starts at %d", pos, len(data)-8)
	}
}

func TestEncodePaginatedShape(t *testing.T) {
	doc := paginatedDoc(t)
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	f, err := Open(data)
	if err != nil {
		t.Fatalf("reader rejected generated file: %v", err)
	}

	if f.Shape() != ShapePaginated {
		t.Fatalf("shape detected as %s", f.Shape())
	}
	if f.PageCount() != 2 {
		t.Fatalf("page count %d, want 2", f.PageCount())
	}

	// header PDFSTYLEMD5 carries the LAST page's fingerprint plus the
	// source size
	wantMD5 := doc.Pages[1].BackgroundMD5 + "_34567"
	if v, _ := f.Header().Get("PDFSTYLEMD5"); v != wantMD5 {
		t.Fatalf("PDFSTYLEMD5 is %q, want %q", v, wantMD5)
	}
	if v, _ := f.Header().Get("PDFSTYLE"); v != "user_pdf_meeting_notes_2" {
		t.Fatalf("PDFSTYLE is %q", v)
	}

	// per-page style keys concatenate style and fingerprint with no
	// separator
	for i, p := range doc.Pages {
		key := "STYLE_user_pdf_meeting_notes_" + strconv.Itoa(i+1) + p.BackgroundMD5 + "_34567"
		if !f.Footer().Has(key) {
			t.Fatalf("footer misses style key %q", key)
		}
	}

	// style-table completeness: default entry + list pointer + one per page
	styles := f.Styles()
	if len(styles) != len(doc.Pages)+1 {
		t.Fatalf("expected %d STYLE_ entries, got %d", len(doc.Pages)+1, len(styles))
	}
	if !f.Footer().Has("PDFSTYLELIST") || !f.Footer().Has("COVER_0") {
		t.Fatal("paginated footer misses PDFSTYLELIST or COVER_0")
	}
}

func TestAddressConsistency(t *testing.T) {
	doc := paginatedDoc(t)
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	f, err := Open(data)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	// every address recorded in any footer or page tag must enclose a
	// readable block
	checkAddr := func(key, value string) {
		t.Helper()
		addr, err := strconv.ParseUint(value, 10, 32)
		if err != nil || addr == 0 {
			return
		}
		if _, err := f.Block(uint32(addr)); err != nil {
			t.Fatalf("tag %s address %s does not enclose a block: %v", key, value, err)
		}
	}

	for _, tag := range f.Footer() {
		checkAddr(tag.Key, tag.Value)
	}
	pages, err := f.Pages()
	if err != nil {
		t.Fatalf("pages failed: %v", err)
	}
	for _, p := range pages {
		for _, name := range AllLayerNames {
			v, _ := p.Tags.Get(name)
			checkAddr(name, v)
		}
		for _, name := range []string{"MAINLAYER", "BGLAYER"} {
			l, err := p.Layer(name)
			if err != nil {
				t.Fatalf("page %d layer %s: %v", p.Index, name, err)
			}
			bitmap, _ := l.Tags.Get("LAYERBITMAP")
			checkAddr("LAYERBITMAP", bitmap)
		}
	}
}

func TestEmptyLayerConstant(t *testing.T) {
	doc := templateDoc(t)
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	f, err := Open(data)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	page, err := f.Page(1)
	if err != nil {
		t.Fatalf("page failed: %v", err)
	}
	main, err := page.Layer("MAINLAYER")
	if err != nil {
		t.Fatalf("main layer: %v", err)
	}
	content, err := main.Content()
	if err != nil {
		t.Fatalf("main content: %v", err)
	}
	if len(content) != 600 {
		t.Fatalf("main layer is %d bytes, want 600", len(content))
	}
	if !bytes.Equal(content, EmptyLayerRLE()) {
		t.Fatal("main layer is not the blank RLE constant")
	}
	if !bytes.Equal(EmptyLayerRLE(), bytes.Repeat([]byte{0x62, 0xff}, 300)) {
		t.Fatal("blank RLE constant drifted from the wire value")
	}
	if main.Protocol != "RATTA_RLE" {
		t.Fatalf("main layer protocol %q", main.Protocol)
	}
}

func TestLayerInfoSanitized(t *testing.T) {
	doc := paginatedDoc(t)
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	f, err := Open(data)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	pages, err := f.Pages()
	if err != nil {
		t.Fatalf("pages failed: %v", err)
	}
	for _, p := range pages {
		info, ok := p.Tags.Get("LAYERINFO")
		if !ok {
			t.Fatalf("page %d has no LAYERINFO", p.Index)
		}
		if strings.ContainsRune(info, ':') {
			t.Fatalf("page %d LAYERINFO still contains ':' after sanitization", p.Index)
		}
		if !strings.Contains(info, `"layerId"#3`) || !strings.Contains(info, `"isDeleted"#true`) {
			t.Fatalf("page %d LAYERINFO lost structure: %s", p.Index, info)
		}
	}
}

func TestEncodeRejectsForbiddenCharacter(t *testing.T) {
	raster := testPNG(t, 1920, 2560, 255)
	doc, err := NewTemplateDocument("A5X2", "bad>name", raster, Options{})
	if err != nil {
		t.Fatalf("unable to build document: %v", err)
	}
	if _, err := doc.Encode(); err == nil {
		t.Fatal("expected grammar violation")
	} else {
		var ge *GrammarError
		if !errors.As(err, &ge) {
			t.Fatalf("expected GrammarError, got %v", err)
		}
	}
}

func TestWriteRejectsBeforeOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "bad.note")

	doc, err := NewTemplateDocument("A5X2", "bad>name", testPNG(t, 1920, 2560, 255), Options{})
	if err != nil {
		t.Fatalf("unable to build document: %v", err)
	}
	if err := doc.Write(out); err == nil {
		t.Fatal("expected write to fail")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatal("failed write left a file behind")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed write left %d stray entries", len(entries))
	}
}

func TestDimensionMismatch(t *testing.T) {
	doc, err := NewTemplateDocument("A5X2", "small", testPNG(t, 100, 100, 255), Options{})
	if err != nil {
		t.Fatalf("unable to build document: %v", err)
	}
	_, err = doc.Encode()
	var de *DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	if de.Width != 100 || de.Want.Width != 1920 {
		t.Fatalf("unexpected dimension report: %+v", de)
	}
}

func TestWriteRoundTripFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "note.note")
	doc := templateDoc(t)
	if err := doc.Write(out); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	f, err := OpenFile(out)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if f.FileID() != doc.FileID {
		t.Fatalf("file id %q, want %q", f.FileID(), doc.FileID)
	}
}

func TestReencodeStable(t *testing.T) {
	doc := paginatedDoc(t)
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	f, err := Open(data)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	doc2, err := DecodeDocument(f)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	data2, err := doc2.Encode()
	if err != nil {
		t.Fatalf("re-encode failed: %v", err)
	}

	if len(data) != len(data2) {
		t.Fatalf("re-encoded size %d differs from original %d", len(data2), len(data))
	}

	// footers must be byte-identical: the only regenerated region is
	// the file id inside the header block
	f2, err := Open(data2)
	if err != nil {
		t.Fatalf("open re-encoded: %v", err)
	}
	footer1, _ := f.Block(f.FooterAddress())
	footer2, _ := f2.Block(f2.FooterAddress())
	if !bytes.Equal(footer1, footer2) {
		t.Fatalf("footers differ:\n%s\n%s", footer1, footer2)
	}

	// the files may differ only inside the FILE_ID value
	if bytes.Equal(data, data2) {
		t.Fatal("file ids should have been regenerated")
	}
	diff := 0
	for i := range data {
		if data[i] != data2[i] {
			diff++
		}
	}
	if diff > len(doc.FileID) {
		t.Fatalf("%d differing bytes, more than the file id region", diff)
	}
}
