package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/pigment/internal/backend"
	"github.com/jmylchreest/pigment/internal/image"
	"github.com/jmylchreest/pigment/internal/palette"
	"github.com/jmylchreest/pigment/internal/util/imagecache"
)

type generateOptions struct {
	image      string
	backend    string
	light      bool
	cols16     cols16Flag
	background colourFlag
	foreground colourFlag
	iterative  bool
	recursive  bool
	output     string
	preview    bool
}

func newGenerateCmd(g *globals) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a palette from an image",
		Long: `Generate a 16 colour palette from an image, a directory of images or an
image URL.

When --image is a directory one image is picked at random, or the one after
the previously used image with --iterative. Remote images are downloaded to
the cache directory first.

Backends:
  kmeans       in-process k-means clustering (default)
  imagemagick  ImageMagick colour quantisation
  genai        Google Gemini multimodal model (needs GOOGLE_API_KEY)
  <plugin>     any plugin listed in the configuration file

Examples:
  # Dark palette to stdout
  pigment generate -i ~/walls/forest.jpg

  # Light palette with WCAG AA contrast, written to a file
  pigment generate -i ~/walls/forest.jpg -l --contrast 4.5 -o colors.json

  # Next wallpaper in a directory, more saturated
  pigment generate -i ~/walls --iterative --saturate 0.2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, g, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.image, "image", "i", "", "image file, directory or URL (required)")
	flags.StringVar(&opts.backend, "backend", "", "extraction backend (default from configuration)")
	flags.BoolVarP(&opts.light, "light", "l", false, "generate a light palette")
	flags.Var(&opts.cols16, "cols16", "16 colour mode for colours 0 and 8 (off, darken, lighten)")
	flags.Float64("contrast", 0, "minimum contrast ratio against the background (1 to 21)")
	flags.Float64("saturate", 0, "saturation delta applied to every colour (-1 to 1)")
	flags.VarP(&opts.background, "background", "b", "override the background colour")
	flags.Var(&opts.foreground, "fg", "override the foreground colour")
	flags.BoolVar(&opts.iterative, "iterative", false, "pick the next image in the directory instead of a random one")
	flags.BoolVar(&opts.recursive, "recursive", false, "search the directory recursively")
	flags.StringVarP(&opts.output, "output", "o", "", "write the palette JSON to this file instead of stdout")
	flags.BoolVar(&opts.preview, "preview", false, "print a colour preview")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runGenerate(cmd *cobra.Command, g *globals, opts *generateOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	contrast, err := optionalFloat(cmd.Flags(), "contrast")
	if err != nil {
		return err
	}
	saturation, err := optionalFloat(cmd.Flags(), "saturate")
	if err != nil {
		return err
	}

	req := palette.Request{
		Backend:    opts.backend,
		Polarity:   palette.Dark,
		Cols16:     palette.Cols16Mode(opts.cols16.String()),
		Contrast:   contrast,
		Saturation: saturation,
	}
	if req.Backend == "" {
		req.Backend = g.cfg.Backend
	}
	if opts.light {
		req.Polarity = palette.Light
	}
	// Reject bad adjustments and backend names before any download or extraction.
	if err := req.Validate(); err != nil {
		return err
	}
	registry := newRegistry(g.cfg, g.logger)
	if !registry.Has(req.Backend) {
		return fmt.Errorf("%w: %s (available: %v)", backend.ErrUnknownBackend, req.Backend, registry.List())
	}

	history := image.NewHistory(historyFile())
	req.Image, err = resolveImage(ctx, g, opts, history)
	if err != nil {
		return err
	}
	g.logger.Debug("generating palette", "image", req.Image, "backend", req.Backend, "polarity", req.Polarity)

	engine, err := palette.NewEngine(registry, g.cfg.Engine(), g.logger)
	if err != nil {
		return err
	}

	p, err := engine.Generate(ctx, req)
	if err != nil && !errors.Is(err, palette.ErrContrastIncomplete) {
		return err
	}

	if opts.background.set {
		p = p.WithBackground(opts.background.value)
	}
	if opts.foreground.set {
		p = p.WithForeground(opts.foreground.value)
	}

	if err := history.Record(req.Image); err != nil {
		g.logger.Warn("failed to record wallpaper", "error", err)
	}

	if err := writePalette(cmd, opts.output, p); err != nil {
		return err
	}

	// The preview goes wherever the JSON does not.
	previewOut := cmd.OutOrStdout()
	if opts.output == "" {
		previewOut = cmd.ErrOrStderr()
	}
	if opts.preview || (!g.quiet && isTerminal(previewOut)) {
		return writePreview(previewOut, p)
	}
	return nil
}

// resolveImage turns the --image argument into a local image file.
func resolveImage(ctx context.Context, g *globals, opts *generateOptions, history *image.History) (string, error) {
	if imagecache.IsURL(opts.image) {
		path, err := imagecache.Download(ctx, opts.image, imagecache.Options{Dir: g.cfg.CacheDir})
		if err != nil {
			return "", fmt.Errorf("failed to download image: %w", err)
		}
		g.logger.Debug("downloaded image", "url", opts.image, "path", path)
		return path, nil
	}

	previous, err := history.Last()
	if err != nil {
		g.logger.Debug("no previous wallpaper", "error", err)
	}
	path, err := image.Resolve(opts.image, image.SelectOptions{
		Recursive: opts.recursive,
		Iterative: opts.iterative,
		Previous:  previous,
	})
	if err != nil {
		return "", err
	}
	if err := image.Validate(path); err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

func writePalette(cmd *cobra.Command, output string, p palette.Palette) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode palette: %w", err)
	}
	data = append(data, '\n')

	if output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil { // #nosec G306 - palettes are not secret
		return fmt.Errorf("failed to write palette: %w", err)
	}
	return nil
}

// historyFile returns the wallpaper history file, or "" (no history) when
// there is no cache directory.
func historyFile() string {
	file, err := image.DefaultHistoryFile()
	if err != nil {
		return ""
	}
	return file
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors fit in int
}
