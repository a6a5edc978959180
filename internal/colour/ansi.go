package colour

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

const defaultWidth = 4

// Previewer renders colour swatches for a terminal.
// When the writer is not a colour-capable terminal the swatches degrade to
// plain hex codes.
type Previewer struct {
	out   *termenv.Output
	width int
}

// NewPreviewer returns a Previewer writing to w. The colour profile is
// detected from w unless one is passed explicitly.
func NewPreviewer(w io.Writer, profile ...termenv.Profile) *Previewer {
	var opts []termenv.OutputOption
	if len(profile) > 0 {
		opts = append(opts, termenv.WithProfile(profile[0]))
	}
	return &Previewer{out: termenv.NewOutput(w, opts...), width: defaultWidth}
}

// Plain reports whether the previewer has no colour support.
func (p *Previewer) Plain() bool {
	return p.out.Profile == termenv.Ascii
}

// Swatch returns a solid block of colour c.
func (p *Previewer) Swatch(c RGB) string {
	block := strings.Repeat(" ", p.width)
	if p.Plain() {
		return c.Hex()
	}
	return p.out.String(block).Background(p.out.Color(c.Hex())).String()
}

// Label returns text rendered on c, with black or white text for legibility.
func (p *Previewer) Label(c RGB, text string) string {
	if p.Plain() {
		return text
	}
	fg := White
	if IsLight(c) {
		fg = Black
	}
	return p.out.String(text).
		Foreground(p.out.Color(fg.Hex())).
		Background(p.out.Color(c.Hex())).
		String()
}

// WriteRows writes colours as rows of perRow swatches, one row per line.
func (p *Previewer) WriteRows(colours []RGB, perRow int) error {
	if perRow <= 0 {
		perRow = 8
	}
	sep := ""
	if p.Plain() {
		sep = " "
	}
	for start := 0; start < len(colours); start += perRow {
		end := min(start+perRow, len(colours))
		cells := make([]string, 0, end-start)
		for _, c := range colours[start:end] {
			cells = append(cells, p.Swatch(c))
		}
		if _, err := fmt.Fprintln(p.out, strings.Join(cells, sep)); err != nil {
			return err
		}
	}
	return nil
}

// WriteLabelled writes one line for c: a swatch followed by the label and hex
// code printed on c itself.
func (p *Previewer) WriteLabelled(label string, c RGB) error {
	if p.Plain() {
		_, err := fmt.Fprintf(p.out, "%-12s %s\n", label, c.Hex())
		return err
	}
	text := fmt.Sprintf(" %-12s %s ", label, c.Hex())
	_, err := fmt.Fprintf(p.out, "%s %s\n", p.Swatch(c), p.Label(c, text))
	return err
}
