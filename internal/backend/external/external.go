// Package external runs extraction backends that live in separate plugin
// executables, using hashicorp/go-plugin.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/pigment/internal/backend"
	"github.com/jmylchreest/pigment/internal/colour"
	"github.com/jmylchreest/pigment/pkg/plugin"
)

// DefaultStartTimeout bounds the plugin handshake.
const DefaultStartTimeout = 10 * time.Second

// Options configures an external backend.
type Options struct {
	// Name is the registry key, usually the key in the plugins config map.
	Name string

	// Path is the plugin executable.
	Path string

	// Args and Env are passed to the plugin process in addition to the
	// go-plugin handshake variables.
	Args []string
	Env  []string

	StartTimeout time.Duration
	Logger       hclog.Logger
}

// Backend launches the plugin for each extraction and kills it afterwards.
type Backend struct {
	opts   Options
	logger hclog.Logger
}

// New creates an external backend.
func New(opts Options) *Backend {
	if opts.StartTimeout == 0 {
		opts.StartTimeout = DefaultStartTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Backend{opts: opts, logger: logger.Named("plugin").Named(opts.Name)}
}

func (b *Backend) Name() string { return b.opts.Name }

func (b *Backend) Description() string {
	return "External plugin " + b.opts.Path
}

// Path returns the plugin executable.
func (b *Backend) Path() string { return b.opts.Path }

func (b *Backend) command() *exec.Cmd {
	cmd := exec.Command(b.opts.Path, b.opts.Args...) // #nosec G204 - plugin path comes from user configuration
	cmd.Env = append(os.Environ(), b.opts.Env...)
	return cmd
}

// checkExecutable returns an *backend.UnavailableError when the plugin
// executable is missing.
func (b *Backend) checkExecutable() error {
	info, err := os.Stat(b.opts.Path)
	if err != nil {
		return &backend.UnavailableError{Backend: b.opts.Name, Reason: err.Error()}
	}
	if info.IsDir() {
		return &backend.UnavailableError{Backend: b.opts.Name, Reason: b.opts.Path + " is a directory"}
	}
	return nil
}

// Extract starts the plugin, verifies its protocol version and asks it for the
// colours of imagePath.
func (b *Backend) Extract(ctx context.Context, imagePath string) ([]colour.RGB, error) {
	if err := b.checkExecutable(); err != nil {
		return nil, err
	}

	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig: plugin.Handshake,
		Plugins: map[string]goplugin.Plugin{
			plugin.PluginName: &plugin.BackendRPC{},
		},
		Cmd:              b.command(),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		StartTimeout:     b.opts.StartTimeout,
		Logger:           b.logger,
	})
	defer client.Kill()

	rpcClient, err := client.Client()
	if err != nil {
		return nil, fmt.Errorf("failed to start plugin %s: %w", b.opts.Name, err)
	}
	raw, err := rpcClient.Dispense(plugin.PluginName)
	if err != nil {
		return nil, fmt.Errorf("failed to dispense plugin %s: %w", b.opts.Name, err)
	}
	impl, ok := raw.(plugin.Backend)
	if !ok {
		return nil, fmt.Errorf("plugin %s returned unexpected type %T", b.opts.Name, raw)
	}

	info := impl.Info()
	if _, err := plugin.IsCompatible(info.ProtocolVersion); err != nil {
		return nil, fmt.Errorf("plugin %s: %w", b.opts.Name, err)
	}
	b.logger.Debug("plugin connected", "version", info.Version, "protocol", info.ProtocolVersion)

	wire, err := impl.Extract(ctx, imagePath)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", b.opts.Name, err)
	}

	out := make([]colour.RGB, len(wire))
	for i, c := range wire {
		out[i] = colour.RGB{R: c.R, G: c.G, B: c.B}
	}
	return out, nil
}

// Probe runs the plugin with plugin.InfoFlag and decodes its metadata.
func (b *Backend) Probe(ctx context.Context) (plugin.PluginInfo, error) {
	if err := b.checkExecutable(); err != nil {
		return plugin.PluginInfo{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.opts.StartTimeout)
	defer cancel()

	args := append([]string{plugin.InfoFlag}, b.opts.Args...)
	cmd := exec.CommandContext(ctx, b.opts.Path, args...) // #nosec G204 - plugin path comes from user configuration
	cmd.Env = append(os.Environ(), b.opts.Env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return plugin.PluginInfo{}, fmt.Errorf("failed to query plugin %s: %w: %s", b.opts.Name, err, stderr.String())
	}

	var info plugin.PluginInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return plugin.PluginInfo{}, fmt.Errorf("plugin %s returned invalid info: %w", b.opts.Name, err)
	}
	if info.Name == "" {
		return plugin.PluginInfo{}, errors.New("plugin info has no name")
	}
	return info, nil
}
