// Package plugin is the public API for out-of-tree pigment extraction
// backends. A plugin is an executable that implements Backend and calls Serve
// from its main function; pigment launches it and talks to it over
// hashicorp/go-plugin net/rpc.
package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/hashicorp/go-plugin"
)

// InfoFlag makes a plugin print its PluginInfo as JSON and exit.
const InfoFlag = "--plugin-info"

// RGBColour is a colour on the wire.
type RGBColour struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// PluginInfo describes a plugin.
type PluginInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
}

// Backend is implemented by plugin authors.
type Backend interface {
	// Extract returns the colours of the image at imagePath.
	Extract(ctx context.Context, imagePath string) ([]RGBColour, error)

	// Info returns the plugin metadata.
	Info() PluginInfo
}

// Serve runs impl as a plugin. It does not return while the host is connected.
// When the process is started with InfoFlag it prints the metadata instead.
func Serve(impl Backend) {
	if slices.Contains(os.Args[1:], InfoFlag) {
		if err := WriteInfo(os.Stdout, impl.Info()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			PluginName: &BackendRPC{Impl: impl},
		},
	})
}

// WriteInfo encodes info as indented JSON. An empty protocol version is
// filled with ProtocolVersion.
func WriteInfo(w io.Writer, info PluginInfo) error {
	if info.ProtocolVersion == "" {
		info.ProtocolVersion = ProtocolVersion
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
