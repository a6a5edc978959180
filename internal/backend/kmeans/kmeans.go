// Package kmeans implements the built-in extraction backend: k-means
// clustering over a downscaled copy of the image.
package kmeans

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"math/rand"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pigment/internal/colour"
	imageutil "github.com/jmylchreest/pigment/internal/image"
)

// Name is the registry key of this backend.
const Name = "kmeans"

const (
	// DefaultCount is the number of clusters extracted.
	DefaultCount = 16

	// DefaultMaxSide is the longest side of the working thumbnail.
	DefaultMaxSide = 256

	maxIterations = 20
	convergence   = 2.0
	maxSamples    = 4000
)

// Options configures the k-means backend.
type Options struct {
	// Count is the number of clusters. Zero means DefaultCount.
	Count int

	// MaxSide bounds the thumbnail the clustering runs on. Zero means DefaultMaxSide.
	MaxSide int

	// Loader decodes images. Nil means a file loader.
	Loader imageutil.Loader

	Logger hclog.Logger
}

// Backend clusters image pixels with k-means++. Results are deterministic:
// the random source is seeded from the image content.
type Backend struct {
	count   int
	maxSide int
	loader  imageutil.Loader
	logger  hclog.Logger
}

// New creates a k-means backend.
func New(opts Options) *Backend {
	b := &Backend{
		count:   opts.Count,
		maxSide: opts.MaxSide,
		loader:  opts.Loader,
		logger:  opts.Logger,
	}
	if b.count <= 0 {
		b.count = DefaultCount
	}
	if b.maxSide <= 0 {
		b.maxSide = DefaultMaxSide
	}
	if b.loader == nil {
		b.loader = imageutil.NewFileLoader()
	}
	if b.logger == nil {
		b.logger = hclog.NewNullLogger()
	}
	b.logger = b.logger.Named(Name)
	return b
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Description() string {
	return "In-process k-means clustering (no external dependencies)"
}

// Extract loads the image and returns up to Count cluster centres, most
// common first.
func (b *Backend) Extract(ctx context.Context, imagePath string) ([]colour.RGB, error) {
	img, err := b.loader.Load(imagePath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	thumb := imageutil.Thumbnail(img, b.maxSide)
	seed := contentSeed(thumb)
	b.logger.Debug("clustering", "image", imagePath, "count", b.count, "seed", seed)

	return Cluster(ctx, samplePixels(thumb), b.count, seed)
}

// Cluster groups pixels into at most k colours ordered by cluster size,
// largest first. When there are no more than k distinct pixels they are
// returned directly, ordered by frequency.
func Cluster(ctx context.Context, pixels []colour.RGB, k int, seed int64) ([]colour.RGB, error) {
	if len(pixels) == 0 {
		return nil, fmt.Errorf("no pixels found in image")
	}
	if k < 1 || k > 256 {
		return nil, fmt.Errorf("cluster count must be between 1 and 256, got %d", k)
	}

	counts := make(map[colour.RGB]int)
	var unique []colour.RGB
	for _, p := range pixels {
		if counts[p] == 0 {
			unique = append(unique, p)
		}
		counts[p]++
	}
	if len(unique) <= k {
		sort.SliceStable(unique, func(i, j int) bool {
			return counts[unique[i]] > counts[unique[j]]
		})
		return unique, nil
	}

	points := make([]point3D, len(pixels))
	for i, p := range pixels {
		points[i] = point3D{R: float64(p.R), G: float64(p.G), B: float64(p.B)}
	}

	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- deterministic clustering, not security sensitive
	centroids, sizes, err := kmeans(ctx, rng, points, k)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(centroids))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return sizes[order[i]] > sizes[order[j]] })

	out := make([]colour.RGB, 0, k)
	for _, i := range order {
		if sizes[i] == 0 {
			continue
		}
		c := centroids[i]
		out = append(out, colour.FromRGB(int(math.Round(c.R)), int(math.Round(c.G)), int(math.Round(c.B))))
	}
	return out, nil
}

// point3D is a point in RGB space.
type point3D struct {
	R, G, B float64
}

func (p point3D) distance(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// samplePixels returns the opaque pixels of img on a grid of roughly
// maxSamples points.
func samplePixels(img image.Image) []colour.RGB {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	step := 1
	if total > maxSamples {
		step = max(int(math.Sqrt(float64(total)/float64(maxSamples))), 1)
	}

	pixels := make([]colour.RGB, 0, min(total, maxSamples*2))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue
			}
			// Un-premultiply partially transparent pixels.
			if a < 0xffff {
				r, g, b = r*0xffff/a, g*0xffff/a, b*0xffff/a
			}
			pixels = append(pixels, colour.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)})
		}
	}
	return pixels
}

// contentSeed hashes a grid of pixels so the same image always clusters the
// same way regardless of file name.
func contentSeed(img image.Image) int64 {
	bounds := img.Bounds()
	hasher := sha256.New()

	dim := make([]byte, 8)
	binary.LittleEndian.PutUint32(dim[0:4], uint32(bounds.Dx())) // #nosec G115 -- image dimensions are safe to convert
	binary.LittleEndian.PutUint32(dim[4:8], uint32(bounds.Dy())) // #nosec G115 -- image dimensions are safe to convert
	hasher.Write(dim)

	step := max(bounds.Dx()/100, bounds.Dy()/100, 1)
	px := make([]byte, 4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			px[0], px[1], px[2], px[3] = byte(r>>8), byte(g>>8), byte(b>>8), byte(a>>8)
			hasher.Write(px)
		}
	}

	sum := hasher.Sum(nil)
	return int64(binary.LittleEndian.Uint64(sum[:8])) // #nosec G115 -- hash conversion is safe
}

// kmeans clusters points and returns the centroids with their member counts.
func kmeans(ctx context.Context, rng *rand.Rand, points []point3D, k int) ([]point3D, []int, error) {
	centroids := initCentroids(rng, points, k)
	assignments := make([]int, len(points))

	for range maxIterations {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		changed := 0
		for i, p := range points {
			nearest := nearestCentroid(p, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}
		// Fewer than 1% reassigned.
		if float64(changed)/float64(len(points)) < 0.01 {
			break
		}

		next := recalculate(rng, points, assignments, k)
		movement := 0.0
		for i := range centroids {
			movement += centroids[i].distance(next[i])
		}
		centroids = next
		if movement/float64(k) < convergence {
			break
		}
	}

	sizes := make([]int, k)
	for i, p := range points {
		// Re-assign against the final centroids so sizes match what is returned.
		assignments[i] = nearestCentroid(p, centroids)
		sizes[assignments[i]]++
	}
	return centroids, sizes, nil
}

// initCentroids picks k starting centroids with k-means++.
func initCentroids(rng *rand.Rand, points []point3D, k int) []point3D {
	centroids := make([]point3D, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	distances := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d := p.distance(centroids[nearestCentroid(p, centroids)])
			distances[i] = d * d
			total += distances[i]
		}

		if total == 0 {
			last := centroids[len(centroids)-1]
			centroids = append(centroids, point3D{R: last.R + 0.1, G: last.G + 0.1, B: last.B + 0.1})
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		picked := len(points) - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				picked = i
				break
			}
		}
		centroids = append(centroids, points[picked])
	}
	return centroids
}

func nearestCentroid(p point3D, centroids []point3D) int {
	best, nearest := math.MaxFloat64, 0
	for i, c := range centroids {
		if d := p.distance(c); d < best {
			best, nearest = d, i
		}
	}
	return nearest
}

func recalculate(rng *rand.Rand, points []point3D, assignments []int, k int) []point3D {
	sums := make([]point3D, k)
	counts := make([]int, k)
	for i, p := range points {
		c := assignments[i]
		sums[c].R += p.R
		sums[c].G += p.G
		sums[c].B += p.B
		counts[c]++
	}

	centroids := make([]point3D, k)
	for i := range k {
		if counts[i] == 0 {
			// Empty cluster: restart it from a random point.
			centroids[i] = points[rng.Intn(len(points))]
			continue
		}
		n := float64(counts[i])
		centroids[i] = point3D{R: sums[i].R / n, G: sums[i].G / n, B: sums[i].B / n}
	}
	return centroids
}
