package convert

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"snc/pageimage"
)

// readHead returns enough leading bytes of a file for type sniffing.
func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}

// isArchiveFile reports whether path is a zip archive.
func isArchiveFile(path string) (bool, error) {
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	t, err := filetype.Match(head)
	if err != nil {
		return false, err
	}
	return t.Extension == "zip", nil
}

// isPageFile reports whether path looks like a page background input:
// a raster image or an SVG template.
func isPageFile(path string) (bool, error) {
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	if filetype.IsImage(head) {
		return true, nil
	}
	return pageimage.IsSVG(head), nil
}

// isPageEntry is the in-archive variant working on entry names and
// content already read from the archive.
func isPageEntry(name string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".svg":
	default:
		return false
	}
	return filetype.IsImage(data) || pageimage.IsSVG(data)
}
