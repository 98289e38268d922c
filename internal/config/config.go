package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Release tracks accepted in RUSTC_CHANNEL
const (
	ChannelStable  = "stable"
	ChannelBeta    = "beta"
	ChannelNightly = "nightly"
)

// Default configuration values
const (
	DefaultChannel      = ChannelNightly
	DefaultInstallerURL = "https://static.rust-lang.org/rustup.sh"
	DefaultDistServer   = "https://static.rust-lang.org"
	DefaultDocsServer   = "https://doc.rust-lang.org"
	DefaultVerbose      = false

	// DateLayout is the format of RUSTC_DATE
	DateLayout = "2006-01-02"
)

// Configuration keys, matching the environment variable names in lower case
const (
	KeyChannel      = "rustc_channel"
	KeyRevision     = "rustc_revision"
	KeyDate         = "rustc_date"
	KeyInstallerURL = "installer_url"
	KeyDistServer   = "dist_server"
	KeyDocsServer   = "docs_server"
	KeyVerbose      = "verbose"
)

// ChannelKind says how a channel's builds are identified
type ChannelKind int

const (
	// FixedRelease builds are identified by a semantic version
	FixedRelease ChannelKind = iota
	// Rolling builds are identified by a date and commit hash
	Rolling
)

var channels = map[string]ChannelKind{
	ChannelStable:  FixedRelease,
	ChannelBeta:    Rolling,
	ChannelNightly: Rolling,
}

// Holds the toolchain configuration for a provisioning run
type Config struct {
	// Release track (stable, beta or nightly)
	Channel string
	// Set when Channel was not configured and DefaultChannel was applied
	ChannelDefaulted bool
	// Pinned version on the fixed-release track
	Revision string
	// Pinned build date on a rolling track (YYYY-MM-DD)
	Date string
	// Where the installer script is downloaded from
	InstallerURL string
	// Base URL of the release manifests
	DistServer string
	// Base URL of the published documentation
	DocsServer string
	// Enable verbose output
	Verbose bool
	// Non-fatal problems found while validating
	Warnings []string
}

// Load builds a Config from v and validates it
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Channel:      strings.TrimSpace(v.GetString(KeyChannel)),
		Revision:     strings.TrimSpace(v.GetString(KeyRevision)),
		Date:         strings.TrimSpace(v.GetString(KeyDate)),
		InstallerURL: v.GetString(KeyInstallerURL),
		DistServer:   v.GetString(KeyDistServer),
		DocsServer:   v.GetString(KeyDocsServer),
		Verbose:      v.GetBool(KeyVerbose),
	}

	// Apply defaults if not set
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
		cfg.ChannelDefaulted = true
	}

	if cfg.InstallerURL == "" {
		cfg.InstallerURL = DefaultInstallerURL
	}

	if cfg.DistServer == "" {
		cfg.DistServer = DefaultDistServer
	}

	if cfg.DocsServer == "" {
		cfg.DocsServer = DefaultDocsServer
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects unknown channels and malformed pins.
// A pin that does not belong to the channel's kind is dropped with a warning.
func (c *Config) Validate() error {
	kind, ok := KindOf(c.Channel)
	if !ok {
		return eris.Errorf("unrecognized channel %q (expected one of stable, beta, nightly)", c.Channel)
	}

	switch kind {
	case FixedRelease:
		if c.Date != "" {
			c.Warnings = append(c.Warnings, fmt.Sprintf("Ignoring RUSTC_DATE=%s on the %s channel.", c.Date, c.Channel))
			c.Date = ""
		}

		if c.Revision != "" {
			if _, err := semver.StrictNewVersion(c.Revision); err != nil {
				return eris.Wrapf(err, "invalid revision %q", c.Revision)
			}
		}
	case Rolling:
		if c.Revision != "" {
			c.Warnings = append(c.Warnings, fmt.Sprintf("Ignoring RUSTC_REVISION=%s on the %s channel.", c.Revision, c.Channel))
			c.Revision = ""
		}

		if c.Date != "" {
			if _, err := time.Parse(DateLayout, c.Date); err != nil {
				return eris.Wrapf(err, "invalid date %q", c.Date)
			}
		}
	}

	for key, raw := range map[string]string{
		KeyInstallerURL: c.InstallerURL,
		KeyDistServer:   c.DistServer,
		KeyDocsServer:   c.DocsServer,
	} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return eris.Errorf("invalid %s %q", key, raw)
		}
	}

	return nil
}

// Kind returns the kind of the configured channel
func (c *Config) Kind() ChannelKind {
	kind, _ := KindOf(c.Channel)
	return kind
}

// Pin returns the configured revision or date, whichever applies
func (c *Config) Pin() string {
	if c.Kind() == FixedRelease {
		return c.Revision
	}

	return c.Date
}

// KindOf returns the kind of channel and whether it is supported
func KindOf(channel string) (ChannelKind, bool) {
	kind, ok := channels[channel]
	return kind, ok
}
