// Package imagemagick extracts colours by shelling out to ImageMagick's colour
// quantizer.
package imagemagick

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pigment/internal/backend"
	"github.com/jmylchreest/pigment/internal/colour"
)

// Name is the registry key of this backend.
const Name = "imagemagick"

const (
	// firstColours is the quantizer colour count of the first attempt.
	firstColours = 16

	// attempts bounds the retry loop; each retry asks for one more colour.
	attempts = 20

	// wantMoreThan is the number of unique colours an attempt must exceed.
	wantMoreThan = 16
)

// Binaries searched on PATH when no binary is configured, in order.
var defaultBinaries = []string{"magick", "convert"}

// Matches #RRGGBB and #RRGGBBAA; alpha is dropped.
var hexPattern = regexp.MustCompile(`#([0-9A-Fa-f]{6})(?:[0-9A-Fa-f]{2})?\b`)

// Options configures the ImageMagick backend.
type Options struct {
	// Binary is an explicit path or name of the ImageMagick executable.
	Binary string

	Runner   ProcessRunner
	LookPath func(file string) (string, error)
	Logger   hclog.Logger
}

// Backend runs `<binary> <image>[0] -resize 25% -colors N -unique-colors txt:-`
// and parses the hex codes from the output.
type Backend struct {
	binary   string
	runner   ProcessRunner
	lookPath func(string) (string, error)
	logger   hclog.Logger
}

// New creates an ImageMagick backend.
func New(opts Options) *Backend {
	b := &Backend{
		binary:   opts.Binary,
		runner:   opts.Runner,
		lookPath: opts.LookPath,
		logger:   opts.Logger,
	}
	if b.runner == nil {
		b.runner = ExecRunner{}
	}
	if b.lookPath == nil {
		b.lookPath = exec.LookPath
	}
	if b.logger == nil {
		b.logger = hclog.NewNullLogger()
	}
	b.logger = b.logger.Named(Name)
	return b
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Description() string {
	return "ImageMagick colour quantization (requires magick or convert on PATH)"
}

// Extract quantizes the image, asking for more colours on each attempt until
// ImageMagick yields more than 16 unique colours. If every attempt comes up
// short the last result is returned and the caller's minimum applies.
func (b *Backend) Extract(ctx context.Context, imagePath string) ([]colour.RGB, error) {
	bin, err := b.resolveBinary()
	if err != nil {
		return nil, err
	}

	var found []colour.RGB
	for i := range attempts {
		n := firstColours + i
		stdout, stderr, err := b.runner.Run(ctx, bin, Args(imagePath, n))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%s failed: %w: %s", bin, err, strings.TrimSpace(string(stderr)))
		}

		found, err = ParseOutput(stdout)
		if err != nil {
			return nil, fmt.Errorf("reading %s output: %w", bin, err)
		}
		b.logger.Debug("quantized", "colors", n, "found", len(found))
		if len(found) > wantMoreThan {
			return found, nil
		}
	}

	b.logger.Warn("imagemagick could not produce enough colours", "image", imagePath, "found", len(found))
	return found, nil
}

// resolveBinary returns the configured binary or the first default found on PATH.
func (b *Backend) resolveBinary() (string, error) {
	candidates := defaultBinaries
	if b.binary != "" {
		candidates = []string{b.binary}
	}
	for _, name := range candidates {
		if path, err := b.lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", &backend.UnavailableError{
		Backend: Name,
		Reason:  fmt.Sprintf("none of %s found on PATH", strings.Join(candidates, ", ")),
	}
}

// Args builds the quantizer command line for n colours. Only the first frame
// of animated images is read.
func Args(imagePath string, n int) []string {
	return []string{
		imagePath + "[0]",
		"-resize", "25%",
		"-colors", strconv.Itoa(n),
		"-unique-colors",
		"txt:-",
	}
}

// ParseOutput extracts colours from ImageMagick txt: output. The header line
// and lines without a hex code are ignored. A line the scanner cannot hold is
// an error rather than a silent truncation.
func ParseOutput(out []byte) ([]colour.RGB, error) {
	var colours []colour.RGB
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		m := hexPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		c, err := colour.ParseHex(m[1])
		if err != nil {
			continue
		}
		colours = append(colours, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return colours, nil
}
