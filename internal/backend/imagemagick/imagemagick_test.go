package imagemagick

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/jmylchreest/pigment/internal/backend"
)

// mockRunner returns quantizer output with produce(n) unique colours for a
// request of n colours.
type mockRunner struct {
	produce  func(n int) int
	err      error
	calls    int
	lastPath string
	lastArgs []string
}

func (m *mockRunner) Run(_ context.Context, path string, args []string) ([]byte, []byte, error) {
	m.calls++
	m.lastPath = path
	m.lastArgs = args
	if m.err != nil {
		return nil, []byte("convert: unable to open image"), m.err
	}
	n, _ := strconv.Atoi(args[4])
	return txtOutput(m.produce(n)), nil, nil
}

func txtOutput(count int) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# ImageMagick pixel enumeration: %d,1,0,255,srgb\n", count)
	for i := range count {
		v := i * 8
		fmt.Fprintf(&b, "%d,0: (%d,%d,%d)  #%02X%02X%02X  srgb(%d,%d,%d)\n", i, v, 255-v, 100, v, 255-v, 100, v, 255-v, 100)
	}
	return []byte(b.String())
}

func lookPathFor(available ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		if slices.Contains(available, name) {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		available []string
		binary    string
		produce   func(int) int
		wantPath  string
		wantCalls int
		wantCount int
	}{
		{
			name:      "first attempt succeeds",
			available: []string{"magick", "convert"},
			produce:   func(n int) int { return n + 1 },
			wantPath:  "/usr/bin/magick",
			wantCalls: 1,
			wantCount: 17,
		},
		{
			name:      "retries until more than 16",
			available: []string{"convert"},
			produce:   func(n int) int { return n - 2 },
			wantPath:  "/usr/bin/convert",
			wantCalls: 4,
			wantCount: 17,
		},
		{
			name:      "gives up after all attempts",
			available: []string{"magick"},
			produce:   func(int) int { return 8 },
			wantPath:  "/usr/bin/magick",
			wantCalls: attempts,
			wantCount: 8,
		},
		{
			name:      "configured binary",
			available: []string{"magick", "im7"},
			binary:    "im7",
			produce:   func(int) int { return 20 },
			wantPath:  "/usr/bin/im7",
			wantCalls: 1,
			wantCount: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{produce: tt.produce}
			b := New(Options{Binary: tt.binary, Runner: runner, LookPath: lookPathFor(tt.available...)})

			got, err := b.Extract(context.Background(), "/walls/a.png")
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("Extract() returned %d colours, want %d", len(got), tt.wantCount)
			}
			if runner.calls != tt.wantCalls {
				t.Errorf("runner called %d times, want %d", runner.calls, tt.wantCalls)
			}
			if runner.lastPath != tt.wantPath {
				t.Errorf("runner path = %s, want %s", runner.lastPath, tt.wantPath)
			}
		})
	}
}

func TestExtractUnavailable(t *testing.T) {
	runner := &mockRunner{}
	b := New(Options{Runner: runner, LookPath: lookPathFor()})

	_, err := b.Extract(context.Background(), "/walls/a.png")
	if !errors.Is(err, backend.ErrBackendUnavailable) {
		t.Fatalf("Extract() error = %v, want ErrBackendUnavailable", err)
	}
	if runner.calls != 0 {
		t.Errorf("runner called %d times without a binary", runner.calls)
	}
}

func TestExtractCommandFailure(t *testing.T) {
	runner := &mockRunner{err: errors.New("exit status 1")}
	b := New(Options{Runner: runner, LookPath: lookPathFor("magick")})

	_, err := b.Extract(context.Background(), "/walls/a.png")
	if err == nil || !strings.Contains(err.Error(), "unable to open image") {
		t.Fatalf("Extract() error = %v, want stderr in message", err)
	}
	if runner.calls != 1 {
		t.Errorf("runner called %d times, want 1", runner.calls)
	}
}

func TestExtractCancelled(t *testing.T) {
	runner := &mockRunner{err: errors.New("signal: killed")}
	b := New(Options{Runner: runner, LookPath: lookPathFor("magick")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Extract(ctx, "/walls/a.png"); !errors.Is(err, context.Canceled) {
		t.Errorf("Extract() error = %v, want context.Canceled", err)
	}
}

func TestArgs(t *testing.T) {
	got := Args("/walls/a.gif", 18)
	want := []string{"/walls/a.gif[0]", "-resize", "25%", "-colors", "18", "-unique-colors", "txt:-"}
	if !slices.Equal(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}
}

func TestParseOutput(t *testing.T) {
	out := []byte(`# ImageMagick pixel enumeration: 3,1,0,255,srgba
0,0: (26,26,26,255)  #1A1A1AFF  srgba(26,26,26,1)
1,0: (59,59,59)  #3B3B3B  srgb(59,59,59)
garbage line
2,0: (255,0,0)  #FF0000  red
`)
	got, err := ParseOutput(out)
	if err != nil {
		t.Fatalf("ParseOutput() error = %v", err)
	}
	want := []string{"#1a1a1a", "#3b3b3b", "#ff0000"}
	if len(got) != len(want) {
		t.Fatalf("ParseOutput() = %v", got)
	}
	for i, c := range got {
		if c.Hex() != want[i] {
			t.Errorf("colour %d = %s, want %s", i, c.Hex(), want[i])
		}
	}
}

func TestParseOutputLongLine(t *testing.T) {
	out := []byte("0,0: (26,26,26)  #1A1A1A  srgb(26,26,26)\n" +
		strings.Repeat("x", 70*1024) + "\n" +
		"1,0: (59,59,59)  #3B3B3B  srgb(59,59,59)\n")
	got, err := ParseOutput(out)
	if err == nil {
		t.Fatalf("ParseOutput() = %v, want error for oversized line", got)
	}
}

// oversizedRunner emits a single line longer than the scanner buffer.
type oversizedRunner struct{}

func (oversizedRunner) Run(context.Context, string, []string) ([]byte, []byte, error) {
	return []byte(strings.Repeat("y", 70*1024)), nil, nil
}

func TestExtractOversizedOutput(t *testing.T) {
	b := New(Options{Runner: oversizedRunner{}, LookPath: lookPathFor("magick")})
	if _, err := b.Extract(context.Background(), "/walls/a.png"); err == nil {
		t.Fatal("Extract() error = nil, want scanner error")
	}
}
