// notedump prints the block-level structure of a .note file: every
// length-prefixed block with its address, size and decoded records.
// Intended for comparing generated output against device-authored
// goldens.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/maruel/natural"

	"snc/note"
)

func main() {
	tagsOnly := flag.Bool("tags", false, "print only decoded header/footer/page records")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: notedump [-tags] <file.note>\n")
		os.Exit(2)
	}

	if err := dump(flag.Arg(0), *tagsOnly); err != nil {
		fmt.Fprintf(os.Stderr, "notedump: %v\n", err)
		os.Exit(1)
	}
}

func dump(path string, tagsOnly bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f, err := note.Open(data)
	if err != nil {
		return err
	}

	fmt.Printf("file: %s (%d bytes)\n", path, f.Size())
	fmt.Printf("signature: %s\n", f.Signature())
	fmt.Printf("shape: %s, equipment: %s, pages: %d\n", f.Shape(), f.Equipment(), f.PageCount())
	fmt.Printf("footer address: %d\n\n", f.FooterAddress())

	if !tagsOnly {
		if err := dumpBlocks(data); err != nil {
			return err
		}
	}

	dumpTags("header", f.Header())
	dumpTags("footer", f.Footer())

	pages, err := f.Pages()
	if err != nil {
		return err
	}
	for _, p := range pages {
		dumpTags(fmt.Sprintf("page %d", p.Index), p.Tags)
	}
	return nil
}

// dumpBlocks walks the length-prefix chain from the header to the
// trailer.
func dumpBlocks(data []byte) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ADDRESS\tLENGTH\tKIND")

	pos := int64(24)
	end := int64(len(data)) - 8
	for pos < end {
		if pos+4 > end {
			return fmt.Errorf("block chain broken at offset %d", pos)
		}
		length := int64(binary.LittleEndian.Uint32(data[pos : pos+4]))
		if pos+4+length > end {
			return fmt.Errorf("block at offset %d overruns trailer", pos)
		}
		payload := data[pos+4 : pos+4+length]
		fmt.Fprintf(w, "%d\t%d\t%s\n", pos, length, classify(payload))
		pos += 4 + length
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

func classify(payload []byte) string {
	switch {
	case note.IsRaster(payload):
		return "raster"
	case len(payload) > 0 && payload[0] == '<':
		return "tags"
	case len(payload) == 600:
		return "run-length (blank)"
	default:
		return "run-length"
	}
}

func dumpTags(name string, tags note.Tags) {
	fmt.Printf("%s (%d records):\n", name, len(tags))

	keys := make([]string, 0, len(tags))
	values := make(map[string][]string, len(tags))
	for _, t := range tags {
		if _, seen := values[t.Key]; !seen {
			keys = append(keys, t.Key)
		}
		values[t.Key] = append(values[t.Key], t.Value)
	}
	sort.Sort(natural.StringSlice(keys))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		for _, v := range values[k] {
			if len(v) > 80 {
				v = v[:77] + "..."
			}
			fmt.Fprintf(w, "  %s\t%s\n", k, v)
		}
	}
	w.Flush()
	fmt.Println()
}
