package note

import (
	"testing"
)

func TestDecodeDocumentTemplate(t *testing.T) {
	doc := templateDoc(t)
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	f, err := Open(data)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	got, err := DecodeDocument(f)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if got.Shape != ShapeImageTemplate {
		t.Fatalf("shape %s", got.Shape)
	}
	if got.SourceName != "blank_template" {
		t.Fatalf("source name %q", got.SourceName)
	}
	if got.Device.Equipment != "N5" {
		t.Fatalf("device %+v", got.Device)
	}
	if got.FileID == doc.FileID {
		t.Fatal("decoded document must get a fresh file id")
	}
	if got.Pages[0].ID != doc.Pages[0].ID {
		t.Fatal("page ids must be carried over")
	}
}

func TestDecodeDocumentKeepsUnderscoredNames(t *testing.T) {
	rasters := [][]byte{testPNG(t, 1404, 1872, 10), testPNG(t, 1404, 1872, 20), testPNG(t, 1404, 1872, 30)}
	doc, err := NewPaginatedDocument("A6X", "my_notes_v2", 999, rasters, Options{Realtime: true, Language: "en_GB"})
	if err != nil {
		t.Fatalf("unable to build document: %v", err)
	}
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	f, err := Open(data)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	got, err := DecodeDocument(f)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if got.SourceName != "my_notes_v2" {
		t.Fatalf("source name %q, want my_notes_v2", got.SourceName)
	}
	if got.SourceSize != 999 {
		t.Fatalf("source size %d, want 999", got.SourceSize)
	}
	if !got.Realtime || got.Language != "en_GB" {
		t.Fatalf("recognition settings lost: realtime=%v language=%q", got.Realtime, got.Language)
	}
	if len(got.Pages) != 3 {
		t.Fatalf("got %d pages", len(got.Pages))
	}
}
