package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"snc/archive"
	"snc/common"
	"snc/config"
	"snc/frontmatter"
	"snc/note"
	"snc/pageimage"
	"snc/state"
)

// Run is the "convert" subcommand: it sweeps the input source (file,
// directory or archive) and produces a note file per template input or
// one paginated note per input set.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Shape, err = common.ParseNoteShape(cmd.String("shape"))
	if err != nil {
		log.Warn("Unknown note shape requested, switching to template", zap.Error(err))
		env.Shape = common.NoteShapeTemplate
	}

	// frontmatter may switch recognition mode and pin the output file
	var targetFile string
	if fmPath := cmd.String("frontmatter"); len(fmPath) > 0 {
		props, _, warnings, err := frontmatter.ReadFile(fmPath)
		if err != nil {
			return fmt.Errorf("unable to read frontmatter from %q: %w", fmPath, err)
		}
		for _, w := range warnings {
			log.Warn("Frontmatter", zap.String("file", fmPath), zap.String("problem", w))
		}
		if props.Realtime() {
			env.Cfg.Document.Note.Realtime = true
		}
		if p := props.NotePath(fmPath); len(p) > 0 {
			targetFile = p
			log.Debug("Output file pinned by frontmatter", zap.String("file", targetFile))
		}
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("shape", env.Shape))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, targetFile, log)
}

// process handles the core conversion logic independently of CLI
// framework. It determines the input type (directory, archive, or
// single image) and processes accordingly.
func process(ctx context.Context, src, dst, targetFile string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, targetFile, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, tail, "", dst, targetFile, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		page, err := isPageFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if page && len(tail) == 0 {
			data, err := os.ReadFile(head)
			if err != nil {
				return fmt.Errorf("unable to read input: %w", err)
			}
			name := filepath.Base(head)
			return convertPages(ctx, name, []pageInput{{name: name, data: data}}, name, dst, targetFile, log)
		}
		return fmt.Errorf("input was not recognized as page image or archive (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// pageInput is one background image before conversion.
type pageInput struct {
	name string // path relative to the sweep root
	data []byte
}

// processDir walks directory tree finding page images. In template
// shape every image becomes its own note; in paginated shape all
// images of the directory become pages of a single note, in natural
// name order.
func processDir(ctx context.Context, dir, dst, targetFile string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	var inputs []pageInput
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		page, err := isPageFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !page {
			log.Debug("Skipping file, not recognized as page image", zap.String("file", path))
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("Unable to read file", zap.String("file", path), zap.Error(err))
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		inputs = append(inputs, pageInput{name: rel, data: data})
		return nil
	})
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
		return nil
	}

	sort.Sort(byNaturalName(inputs))

	if env.Shape == common.NoteShapePaginated {
		name := filepath.Base(dir)
		return convertPages(ctx, name, inputs, name, dst, targetFile, log)
	}

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := convertPages(ctx, in.name, []pageInput{in}, in.name, dst, targetFile, log); err != nil {
			log.Error("Unable to process file", zap.String("file", in.name), zap.Error(err))
		}
	}
	return nil
}

// processArchive collects page images under "pathIn" inside the
// archive and converts them the same way processDir does.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst, targetFile string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	var inputs []pageInput
	err := archive.Walk(path, pathIn, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := f.Open()
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", arc), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		data, err := io.ReadAll(r)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", arc), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}

		name := f.FileHeader.Name
		if env.CodePage != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := env.CodePage.NewDecoder().String(name); err == nil {
				name = n
			} else {
				cp, _ := ianaindex.IANA.Name(env.CodePage)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", cp), zap.String("path", name), zap.Error(err))
			}
		}

		if !isPageEntry(name, data) {
			log.Debug("Skipping file, not recognized as page image", zap.String("archive", arc), zap.String("file", name))
			return nil
		}
		inputs = append(inputs, pageInput{name: filepath.Join(pathOut, filepath.FromSlash(name)), data: data})
		return nil
	})
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		log.Debug("Nothing to process", zap.String("archive", path))
		return nil
	}

	sort.Sort(byNaturalName(inputs))

	if env.Shape == common.NoteShapePaginated {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return convertPages(ctx, name, inputs, name, dst, targetFile, log)
	}

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := convertPages(ctx, in.name, []pageInput{in}, in.name, dst, targetFile, log); err != nil {
			log.Error("Unable to process file in archive", zap.String("file", in.name), zap.Error(err))
		}
	}
	return nil
}

type byNaturalName []pageInput

func (s byNaturalName) Len() int           { return len(s) }
func (s byNaturalName) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s byNaturalName) Less(i, j int) bool { return natural.Less(s[i].name, s[j].name) }

// convertPages builds a document from the collected inputs and writes
// it out. "src" is the source path relative to the sweep root used for
// output naming; "docName" seeds style naming inside the note.
func convertPages(ctx context.Context, docName string, inputs []pageInput, src, dst, targetFile string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Conversion starting", zap.String("from", src), zap.Int("pages", len(inputs)))
	defer func(start time.Time) {
		// NOTE: some of golang graphic processing libraries are not mature
		// enough - when multiple inputs are being processed we do not want
		// to stop on a single bad image.
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	doc, err := buildDocument(env, docName, inputs)
	if err != nil {
		return err
	}

	values := newValues(config.OutputNameTemplateFieldName, baseName(docName), doc.Device.Name, doc.Shape.String(), len(doc.Pages))
	outputName = targetFile
	if outputName == "" {
		outputName = buildOutputPath(values, src, dst, env)
	}

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := doc.Write(outputName); err != nil {
		return fmt.Errorf("unable to generate output: %w", err)
	}

	// Store conversion result for debugging
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s%s", doc.FileID, filepath.Ext(outputName)), outputName)
	}
	return nil
}

// buildDocument runs every input through the page-image producer and
// assembles the requested document shape.
func buildDocument(env *state.LocalEnv, docName string, inputs []pageInput) (*note.Document, error) {
	cfg := env.Cfg.Document

	spec, err := note.LookupDevice(cfg.Note.Device)
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", cfg.Note.Device, err)
	}

	opts := note.Options{Language: cfg.Note.RecognitionLanguage, Realtime: cfg.Note.Realtime}

	var (
		rasters   [][]byte
		totalSize int64
	)
	for _, in := range inputs {
		frame, err := pageimage.FromBytes(in.data, spec, cfg.Images.Resize)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.name, err)
		}
		rasters = append(rasters, frame.Data)
		totalSize += int64(len(in.data))
	}

	if env.Shape == common.NoteShapePaginated {
		return note.NewPaginatedDocument(cfg.Note.Device, baseName(docName), totalSize, rasters, opts)
	}
	if len(rasters) != 1 {
		return nil, fmt.Errorf("template shape requires exactly one page image, got %d", len(rasters))
	}
	return note.NewTemplateDocument(cfg.Note.Device, baseName(docName), rasters[0], opts)
}

func baseName(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}
