package convert

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"go.uber.org/zap"

	"snc/common"
	"snc/config"
	"snc/note"
	"snc/state"
)

func testEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("unable to load default configuration: %v", err)
	}
	env.Cfg = cfg
	env.Log = zap.NewNop()
	return ctx, env
}

func devicePNG(t *testing.T, device string, shade uint8) []byte {
	t.Helper()
	spec, err := note.LookupDevice(device)
	if err != nil {
		t.Fatalf("device lookup: %v", err)
	}
	img := image.NewGray(image.Rect(0, 0, spec.Width, spec.Height))
	for i := range img.Pix {
		img.Pix[i] = shade
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("unable to encode test raster: %v", err)
	}
	return buf.Bytes()
}

func TestBuildDocumentTemplate(t *testing.T) {
	_, env := testEnv(t)
	env.Shape = common.NoteShapeTemplate

	doc, err := buildDocument(env, "grid_template.png", []pageInput{{name: "grid_template.png", data: devicePNG(t, "A5X2", 255)}})
	if err != nil {
		t.Fatalf("unable to build document: %v", err)
	}
	if doc.Shape != note.ShapeImageTemplate {
		t.Fatalf("unexpected shape %s", doc.Shape)
	}
	if doc.SourceName != "grid_template" {
		t.Fatalf("unexpected source name %q", doc.SourceName)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("unexpected page count %d", len(doc.Pages))
	}
}

func TestBuildDocumentTemplateRejectsMultiplePages(t *testing.T) {
	_, env := testEnv(t)
	env.Shape = common.NoteShapeTemplate

	_, err := buildDocument(env, "x", []pageInput{
		{name: "a.png", data: devicePNG(t, "A5X2", 1)},
		{name: "b.png", data: devicePNG(t, "A5X2", 2)},
	})
	if err == nil {
		t.Fatal("template shape must reject multiple pages")
	}
}

func TestBuildDocumentPaginated(t *testing.T) {
	_, env := testEnv(t)
	env.Shape = common.NoteShapePaginated

	in := []pageInput{
		{name: "p1.png", data: devicePNG(t, "A5X2", 1)},
		{name: "p2.png", data: devicePNG(t, "A5X2", 2)},
	}
	doc, err := buildDocument(env, "chapter", in)
	if err != nil {
		t.Fatalf("unable to build document: %v", err)
	}
	if doc.Shape != note.ShapePaginated || len(doc.Pages) != 2 {
		t.Fatalf("unexpected document %s with %d pages", doc.Shape, len(doc.Pages))
	}
	if doc.SourceSize != int64(len(in[0].data)+len(in[1].data)) {
		t.Fatalf("source size %d", doc.SourceSize)
	}
}

func TestNaturalPageOrdering(t *testing.T) {
	inputs := []pageInput{
		{name: "page10.png"}, {name: "page2.png"}, {name: "page1.png"},
	}
	sort.Sort(byNaturalName(inputs))
	want := []string{"page1.png", "page2.png", "page10.png"}
	for i, w := range want {
		if inputs[i].name != w {
			t.Fatalf("position %d is %q, want %q", i, inputs[i].name, w)
		}
	}
}

func TestConvertPagesWritesFile(t *testing.T) {
	ctx, env := testEnv(t)
	env.Shape = common.NoteShapeTemplate

	dst := t.TempDir()
	in := []pageInput{{name: "daily.png", data: devicePNG(t, "A5X2", 128)}}
	if err := convertPages(ctx, "daily.png", in, "daily.png", dst, "", env.Log); err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	out := filepath.Join(dst, "daily.note")
	f, err := note.OpenFile(out)
	if err != nil {
		t.Fatalf("output is not a readable note: %v", err)
	}
	if f.Shape() != note.ShapeImageTemplate || f.PageCount() != 1 {
		t.Fatalf("unexpected output: %s with %d pages", f.Shape(), f.PageCount())
	}
}

func TestConvertPagesHonorsOverwrite(t *testing.T) {
	ctx, env := testEnv(t)
	env.Shape = common.NoteShapeTemplate

	dst := t.TempDir()
	in := []pageInput{{name: "daily.png", data: devicePNG(t, "A5X2", 128)}}
	if err := convertPages(ctx, "daily.png", in, "daily.png", dst, "", env.Log); err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if err := convertPages(ctx, "daily.png", in, "daily.png", dst, "", env.Log); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	env.Overwrite = true
	if err := convertPages(ctx, "daily.png", in, "daily.png", dst, "", env.Log); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
}

func TestConvertPagesTargetFile(t *testing.T) {
	ctx, env := testEnv(t)
	env.Shape = common.NoteShapeTemplate

	target := filepath.Join(t.TempDir(), "pinned.note")
	in := []pageInput{{name: "daily.png", data: devicePNG(t, "A5X2", 128)}}
	if err := convertPages(ctx, "daily.png", in, "daily.png", t.TempDir(), target, env.Log); err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("pinned output missing: %v", err)
	}
}

func TestProcessDirPaginated(t *testing.T) {
	ctx, env := testEnv(t)
	env.Shape = common.NoteShapePaginated

	srcDir := filepath.Join(t.TempDir(), "chapter")
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// names chosen so natural order differs from lexical order
	for i, name := range []string{"page10.png", "page2.png"} {
		if err := os.WriteFile(filepath.Join(srcDir, name), devicePNG(t, "A5X2", uint8(40+i)), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	dst := t.TempDir()
	env.NoDirs = true
	if err := processDir(ctx, srcDir, dst, "", env.Log); err != nil {
		t.Fatalf("processing failed: %v", err)
	}

	f, err := note.OpenFile(filepath.Join(dst, "chapter.note"))
	if err != nil {
		t.Fatalf("output is not a readable note: %v", err)
	}
	if f.PageCount() != 2 {
		t.Fatalf("page count %d", f.PageCount())
	}

	// page2 sorts before page10 naturally - first background must be
	// the shade written for page2
	pages, err := f.Pages()
	if err != nil {
		t.Fatalf("pages: %v", err)
	}
	bg, err := pages[0].Layer("BGLAYER")
	if err != nil {
		t.Fatalf("layer: %v", err)
	}
	content, err := bg.Content()
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if !bytes.Equal(content, devicePNG(t, "A5X2", 41)) {
		t.Fatal("natural ordering lost: first page is not page2.png")
	}
}

func TestIsPageEntry(t *testing.T) {
	if !isPageEntry("a.png", devicePNG(t, "A6X", 1)) {
		t.Fatal("png entry rejected")
	}
	if isPageEntry("a.txt", []byte("hello")) {
		t.Fatal("text entry accepted")
	}
	if !isPageEntry("t.svg", []byte(`<svg viewBox="0 0 1 1"/>`)) {
		t.Fatal("svg entry rejected")
	}
}
