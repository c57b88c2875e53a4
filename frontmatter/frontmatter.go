// Package frontmatter parses authoring-side properties from Markdown
// files: which note flavor to produce and, optionally, which existing
// note file the document is bound to.
package frontmatter

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Note flavor requested by the author.
const (
	TypeStandard = "standard"
	TypeRealtime = "realtime"
)

// Properties are the recognized frontmatter fields. Raw holds the full
// decoded frontmatter for callers that need more.
type Properties struct {
	Type string // TypeStandard or TypeRealtime
	File string // optional note reference, may use [relative.note] notation
	Raw  map[string]any
}

// Realtime reports whether realtime handwriting recognition was
// requested.
func (p Properties) Realtime() bool {
	return p.Type == TypeRealtime
}

// NotePath resolves the File reference against the Markdown file's
// directory, stripping the bracket notation. Empty when File is unset.
func (p Properties) NotePath(markdownPath string) string {
	if p.File == "" {
		return ""
	}
	ref := strings.TrimSpace(p.File)
	if strings.HasPrefix(ref, "[") && strings.HasSuffix(ref, "]") {
		ref = ref[1 : len(ref)-1]
	}
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	abs, err := filepath.Abs(filepath.Join(filepath.Dir(markdownPath), ref))
	if err != nil {
		return filepath.Join(filepath.Dir(markdownPath), ref)
	}
	return abs
}

var frontmatterRe = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*\n`)

// Extract splits a leading YAML frontmatter block from Markdown
// content. When no block is present (or it does not parse as a
// mapping) the original content is returned with a nil map.
func Extract(content string) (map[string]any, string) {
	m := frontmatterRe.FindStringSubmatch(content)
	if m == nil {
		return nil, content
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(m[1]), &fm); err != nil || fm == nil {
		return nil, content
	}
	return fm, content[len(m[0]):]
}

// Parse validates the recognized properties, falling back to defaults
// on bad values. Returned warnings describe every fallback taken so
// the caller can log them.
func Parse(fm map[string]any) (Properties, []string) {
	props := Properties{Type: TypeStandard, Raw: fm}
	var warnings []string

	if v, ok := fm["supernote.type"]; ok {
		s, isStr := v.(string)
		if isStr && (s == TypeStandard || s == TypeRealtime) {
			props.Type = s
		} else {
			warnings = append(warnings, fmt.Sprintf("invalid supernote.type %v, using %q", v, TypeStandard))
		}
	}

	if v, ok := fm["supernote.file"]; ok {
		switch s := v.(type) {
		case string:
			if strings.TrimSpace(s) != "" {
				props.File = s
			}
		default:
			warnings = append(warnings, fmt.Sprintf("supernote.file must be a string, got %T", v))
		}
	}

	return props, warnings
}

// ReadFile reads a Markdown file and returns its parsed properties,
// the content without the frontmatter block and any warnings.
func ReadFile(path string) (Properties, string, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Properties{}, "", nil, err
	}
	fm, content := Extract(string(data))
	props, warnings := Parse(fm)
	return props, content, warnings, nil
}

// FormatNoteReference renders a note path in the bracket notation
// relative to the Markdown file, falling back to the absolute path when
// no relative form exists.
func FormatNoteReference(notePath, markdownPath string) string {
	rel, err := filepath.Rel(filepath.Dir(markdownPath), notePath)
	if err != nil {
		return "[" + filepath.ToSlash(notePath) + "]"
	}
	return "[" + filepath.ToSlash(rel) + "]"
}

// UpdateNoteReference rewrites the Markdown file so its frontmatter
// points at notePath, preserving every other property.
func UpdateNoteReference(markdownPath, notePath string) error {
	data, err := os.ReadFile(markdownPath)
	if err != nil {
		return err
	}

	fm, content := Extract(string(data))
	if fm == nil {
		fm = map[string]any{}
	}
	fm["supernote.file"] = FormatNoteReference(notePath, markdownPath)

	encoded, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("unable to marshal frontmatter: %w", err)
	}

	out := "---\n" + string(encoded) + "---\n\n" + content
	return os.WriteFile(markdownPath, []byte(out), 0644)
}
