package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"snc/note"
	"snc/state"
)

// Inspect is the "inspect" subcommand: it opens an existing note file
// and logs its structure without interpreting ink.
func Inspect(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inspect")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no note file has been specified")
	}
	src, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	f, err := note.OpenFile(src)
	if err != nil {
		return fmt.Errorf("unable to open note file: %w", err)
	}

	log.Info("Note file",
		zap.String("file", src),
		zap.Int64("size", f.Size()),
		zap.String("signature", f.Signature()),
		zap.Stringer("shape", f.Shape()),
		zap.String("equipment", f.Equipment()),
		zap.String("file_id", f.FileID()),
		zap.Int("pages", f.PageCount()))

	pages, err := f.Pages()
	if err != nil {
		return fmt.Errorf("unable to read pages: %w", err)
	}
	for _, p := range pages {
		style, _ := p.Tags.Get("PAGESTYLE")
		pageID, _ := p.Tags.Get("PAGEID")
		log.Info("Page", zap.Int("index", p.Index), zap.String("style", style), zap.String("page_id", pageID))

		layers, err := p.Layers()
		if err != nil {
			return fmt.Errorf("page %d: %w", p.Index, err)
		}
		for _, l := range layers {
			content, err := l.Content()
			if err != nil {
				return fmt.Errorf("page %d layer %s: %w", p.Index, l.Name, err)
			}
			kind := "run-length"
			if note.IsRaster(content) {
				kind = "raster"
			}
			log.Info("Layer",
				zap.Int("page", p.Index),
				zap.String("name", l.Name),
				zap.String("protocol", l.Protocol),
				zap.String("kind", kind),
				zap.Int("bytes", len(content)))
		}
	}

	// natural order so style_10 sorts after style_2
	styles := f.Styles()
	keys := make([]string, 0, len(styles))
	byKey := make(map[string]uint32, len(styles))
	for _, s := range styles {
		keys = append(keys, s.Key)
		byKey[s.Key] = s.Address
	}
	sort.Sort(natural.StringSlice(keys))
	for _, k := range keys {
		log.Info("Style", zap.String("key", k), zap.Uint32("address", byKey[k]))
	}

	for _, l := range f.Links() {
		log.Info("Link",
			zap.Int("from_page", l.SourcePage),
			zap.Int("to_page", l.DestPage),
			zap.Bool("same_file", l.SameFile))
	}
	return nil
}
