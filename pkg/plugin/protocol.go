package plugin

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion is the plugin API version.
	// MAJOR changes are breaking; MINOR and PATCH are backward compatible.
	ProtocolVersion = "1.0.0"

	// MinCompatibleVersion is the oldest protocol version the host accepts.
	MinCompatibleVersion = "1.0.0"

	// PluginName is the key the backend is dispensed under.
	PluginName = "backend"
)

// Handshake is shared by host and plugin. The magic cookie stops a plugin
// binary from being run directly as a normal program.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "PIGMENT_PLUGIN",
	MagicCookieValue: "pigment_backend",
}

// IsCompatible reports whether a plugin speaking version can be used by this
// host: same major version and not older than MinCompatibleVersion.
func IsCompatible(version string) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("invalid protocol version %q: %w", version, err)
	}

	current := semver.MustParse(ProtocolVersion)
	if v.Major() != current.Major() {
		return false, fmt.Errorf("incompatible protocol version %s, host requires %d.x.x", v, current.Major())
	}

	constraint, err := semver.NewConstraint(">= " + MinCompatibleVersion)
	if err != nil {
		return false, err
	}
	if !constraint.Check(v) {
		return false, fmt.Errorf("protocol version %s is too old, minimum is %s", v, MinCompatibleVersion)
	}
	return true, nil
}
