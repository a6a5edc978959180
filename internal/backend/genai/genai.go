// Package genai extracts colours by asking a Gemini multimodal model to
// describe the dominant colours of an image.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/genai"

	"github.com/jmylchreest/pigment/internal/backend"
	"github.com/jmylchreest/pigment/internal/colour"
)

// Name is the registry key of this backend.
const Name = "genai"

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash"

	// DefaultCount is the number of colours requested from the model.
	DefaultCount = 16

	// APIKeyEnv holds the Gemini API key.
	APIKeyEnv = "GOOGLE_API_KEY"

	// BackendGeminiAPI and BackendVertexAI select the Gen AI service.
	BackendGeminiAPI = "gemini-api"
	BackendVertexAI  = "vertex-ai"
)

const promptTemplate = "List the %d most dominant colours of this image, most prominent first, " +
	"as a JSON array of lowercase #rrggbb hex strings. Include the darkest and lightest " +
	"significant colours. Respond with the JSON array only."

// contentGenerator is the subset of *genai.Models used by the backend.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options configures the Gen AI backend.
type Options struct {
	Model   string
	Count   int
	Service string // BackendGeminiAPI (default) or BackendVertexAI
	Logger  hclog.Logger

	// Getenv overrides os.Getenv.
	Getenv func(string) string
}

// Backend sends the image to a Gemini model and parses the returned palette.
type Backend struct {
	model   string
	count   int
	service string
	getenv  func(string) string
	logger  hclog.Logger

	newGenerator func(ctx context.Context) (contentGenerator, error)
}

// New creates a Gen AI backend.
func New(opts Options) *Backend {
	b := &Backend{
		model:   opts.Model,
		count:   opts.Count,
		service: opts.Service,
		getenv:  opts.Getenv,
		logger:  opts.Logger,
	}
	if b.model == "" {
		b.model = DefaultModel
	}
	if b.count <= 0 {
		b.count = DefaultCount
	}
	if b.service == "" {
		b.service = BackendGeminiAPI
	}
	if b.getenv == nil {
		b.getenv = os.Getenv
	}
	if b.logger == nil {
		b.logger = hclog.NewNullLogger()
	}
	b.logger = b.logger.Named(Name)
	b.newGenerator = b.clientSetup
	return b
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Description() string {
	return fmt.Sprintf("Google Gemini multimodal model (%s, requires %s)", b.model, APIKeyEnv)
}

// clientSetup creates the Gen AI client for the configured service.
func (b *Backend) clientSetup(ctx context.Context) (contentGenerator, error) {
	cfg := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if b.service == BackendVertexAI {
		cfg.Backend = genai.BackendVertexAI
	} else {
		key := b.getenv(APIKeyEnv)
		if key == "" {
			return nil, &backend.UnavailableError{Backend: Name, Reason: APIKeyEnv + " is not set"}
		}
		cfg.APIKey = key
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, &backend.UnavailableError{Backend: Name, Reason: err.Error()}
	}
	return client.Models, nil
}

// Extract uploads the image inline and asks the model for its dominant colours.
func (b *Backend) Extract(ctx context.Context, imagePath string) ([]colour.RGB, error) {
	gen, err := b.newGenerator(ctx)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(imagePath) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%s is not an image (%s)", imagePath, mime)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mime),
			genai.NewPartFromText(fmt.Sprintf(promptTemplate, b.count)),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	}

	b.logger.Debug("requesting palette", "model", b.model, "image", imagePath, "bytes", len(data))
	resp, err := gen.GenerateContent(ctx, b.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("palette request failed: %w", err)
	}

	colours, err := ParseResponse(resp.Text())
	if err != nil {
		return nil, err
	}
	if len(colours) == 0 {
		return nil, &backend.InsufficientColoursError{Backend: Name, Found: 0, Minimum: 1}
	}
	return colours, nil
}

// ParseResponse decodes a JSON array of hex strings. Markdown code fences
// around the array are tolerated and malformed entries are skipped.
func ParseResponse(text string) ([]colour.RGB, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var hexes []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &hexes); err != nil {
		return nil, fmt.Errorf("unexpected model response: %w", err)
	}

	out := make([]colour.RGB, 0, len(hexes))
	for _, h := range hexes {
		c, err := colour.ParseHex(strings.TrimSpace(h))
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
