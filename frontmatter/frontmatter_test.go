package frontmatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	content := "---\ntitle: My Note\nsupernote.type: realtime\n---\n\n# Heading\n"
	fm, rest := Extract(content)
	if fm == nil {
		t.Fatal("frontmatter not found")
	}
	if fm["title"] != "My Note" {
		t.Fatalf("title lost: %v", fm)
	}
	if !strings.HasPrefix(rest, "\n# Heading") {
		t.Fatalf("content not stripped: %q", rest)
	}
}

func TestExtractNoFrontmatter(t *testing.T) {
	content := "# Just a heading\n"
	fm, rest := Extract(content)
	if fm != nil || rest != content {
		t.Fatalf("unexpected extraction: %v %q", fm, rest)
	}
}

func TestExtractBadYAML(t *testing.T) {
	content := "---\n: : :\n---\nbody\n"
	fm, rest := Extract(content)
	if fm != nil || rest != content {
		t.Fatal("bad yaml must leave content untouched")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		fm       map[string]any
		wantType string
		wantFile string
		warnings int
	}{
		{"empty", nil, TypeStandard, "", 0},
		{"realtime", map[string]any{"supernote.type": "realtime"}, TypeRealtime, "", 0},
		{"invalid type", map[string]any{"supernote.type": "turbo"}, TypeStandard, "", 1},
		{"file", map[string]any{"supernote.file": "[out/daily.note]"}, TypeStandard, "[out/daily.note]", 0},
		{"blank file", map[string]any{"supernote.file": "  "}, TypeStandard, "", 0},
		{"non-string file", map[string]any{"supernote.file": 42}, TypeStandard, "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props, warnings := Parse(tt.fm)
			if props.Type != tt.wantType || props.File != tt.wantFile {
				t.Fatalf("got %+v", props)
			}
			if len(warnings) != tt.warnings {
				t.Fatalf("got %d warnings: %v", len(warnings), warnings)
			}
		})
	}
}

func TestNotePath(t *testing.T) {
	props := Properties{File: "[output/daily.note]"}
	got := props.NotePath(filepath.Join("/vault", "daily.md"))
	want := filepath.Join("/vault", "output", "daily.note")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if (Properties{}).NotePath("/vault/daily.md") != "" {
		t.Fatal("unset file must resolve to empty path")
	}
}

func TestRealtime(t *testing.T) {
	if !(Properties{Type: TypeRealtime}).Realtime() {
		t.Fatal("realtime type not detected")
	}
	if (Properties{Type: TypeStandard}).Realtime() {
		t.Fatal("standard type detected as realtime")
	}
}

func TestUpdateNoteReference(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "daily.md")
	if err := os.WriteFile(md, []byte("---\ntitle: Daily\n---\n\nbody\n"), 0644); err != nil {
		t.Fatalf("unable to write markdown: %v", err)
	}

	if err := UpdateNoteReference(md, filepath.Join(dir, "out", "daily.note")); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	props, content, _, err := ReadFile(md)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if props.File != "[out/daily.note]" {
		t.Fatalf("file reference %q", props.File)
	}
	if props.Raw["title"] != "Daily" {
		t.Fatal("existing properties were dropped")
	}
	if !strings.Contains(content, "body") {
		t.Fatalf("content lost: %q", content)
	}
}
