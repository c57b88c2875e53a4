package note

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Encode serializes the document and returns the complete file image.
// It fails before producing any bytes if a tag value violates the
// grammar, if a background raster is not at the device resolution, or
// if a planned address overflows the 4-byte address words.
func (d *Document) Encode() ([]byte, error) {
	if err := d.checkDimensions(); err != nil {
		return nil, err
	}
	pl, err := d.layout()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, pl.fileSize)
	buf = append(buf, FileTypeMarker...)
	buf = append(buf, Signature...)
	for _, payload := range pl.blocks {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payload)))
		buf = append(buf, payload...)
	}
	buf = append(buf, TailMarker...)
	buf = binary.LittleEndian.AppendUint32(buf, pl.footerAddr)

	if int64(len(buf)) != pl.fileSize {
		// plan and cursor disagree - refuse to hand out a broken file
		return nil, fmt.Errorf("layout mismatch: planned %d bytes, produced %d", pl.fileSize, len(buf))
	}
	return buf, nil
}

// WriteTo streams the encoded document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := d.Encode()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Write serializes the document to path atomically: the file is staged
// next to the destination and renamed into place only after a complete
// flush, so partial output is never observable.
func (d *Document) Write(path string) (err error) {
	data, err := d.Encode()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("unable to stage output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("unable to sync output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("unable to close output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("unable to finalize output: %w", err)
	}
	return nil
}
