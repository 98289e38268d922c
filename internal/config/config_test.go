package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupViper  func(v *viper.Viper)
		wantConfig  *Config
		wantErr     bool
		errContains string
	}{
		{
			name:       "load with all defaults",
			setupViper: func(v *viper.Viper) {},
			wantConfig: &Config{
				Channel:          DefaultChannel,
				ChannelDefaulted: true,
				InstallerURL:     DefaultInstallerURL,
				DistServer:       DefaultDistServer,
				DocsServer:       DefaultDocsServer,
			},
		},
		{
			name: "stable with revision",
			setupViper: func(v *viper.Viper) {
				v.Set(KeyChannel, "stable")
				v.Set(KeyRevision, "1.2.3")
			},
			wantConfig: &Config{
				Channel:      ChannelStable,
				Revision:     "1.2.3",
				InstallerURL: DefaultInstallerURL,
				DistServer:   DefaultDistServer,
				DocsServer:   DefaultDocsServer,
			},
		},
		{
			name: "nightly with date",
			setupViper: func(v *viper.Viper) {
				v.Set(KeyChannel, "nightly")
				v.Set(KeyDate, "2015-09-22")
				v.Set(KeyVerbose, true)
			},
			wantConfig: &Config{
				Channel:      ChannelNightly,
				Date:         "2015-09-22",
				InstallerURL: DefaultInstallerURL,
				DistServer:   DefaultDistServer,
				DocsServer:   DefaultDocsServer,
				Verbose:      true,
			},
		},
		{
			name: "whitespace is trimmed",
			setupViper: func(v *viper.Viper) {
				v.Set(KeyChannel, " beta ")
			},
			wantConfig: &Config{
				Channel:      ChannelBeta,
				InstallerURL: DefaultInstallerURL,
				DistServer:   DefaultDistServer,
				DocsServer:   DefaultDocsServer,
			},
		},
		{
			name: "custom servers",
			setupViper: func(v *viper.Viper) {
				v.Set(KeyChannel, "stable")
				v.Set(KeyInstallerURL, "http://mirror.local/rustup.sh")
				v.Set(KeyDistServer, "http://mirror.local")
				v.Set(KeyDocsServer, "http://docs.local")
			},
			wantConfig: &Config{
				Channel:      ChannelStable,
				InstallerURL: "http://mirror.local/rustup.sh",
				DistServer:   "http://mirror.local",
				DocsServer:   "http://docs.local",
			},
		},
		{
			name: "unrecognized channel",
			setupViper: func(v *viper.Viper) {
				v.Set(KeyChannel, "invalid")
			},
			wantErr:     true,
			errContains: "unrecognized channel",
		},
		{
			name: "channel is case sensitive",
			setupViper: func(v *viper.Viper) {
				v.Set(KeyChannel, "Stable")
			},
			wantErr:     true,
			errContains: "unrecognized channel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			tt.setupViper(v)

			cfg, err := Load(v)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		wantErr     bool
		errContains string
		checkFields func(*testing.T, *Config)
	}{
		{
			name:   "stable without pin",
			config: validConfig(ChannelStable),
		},
		{
			name: "stable with date drops the date",
			config: func() *Config {
				c := validConfig(ChannelStable)
				c.Date = "2015-09-22"
				return c
			}(),
			checkFields: func(t *testing.T, c *Config) {
				assert.Empty(t, c.Date)
				require.Len(t, c.Warnings, 1)
				assert.Contains(t, c.Warnings[0], "RUSTC_DATE")
			},
		},
		{
			name: "nightly with revision drops the revision",
			config: func() *Config {
				c := validConfig(ChannelNightly)
				c.Revision = "1.2.3"
				c.Date = "2015-09-22"
				return c
			}(),
			checkFields: func(t *testing.T, c *Config) {
				assert.Empty(t, c.Revision)
				assert.Equal(t, "2015-09-22", c.Date)
				require.Len(t, c.Warnings, 1)
				assert.Contains(t, c.Warnings[0], "RUSTC_REVISION")
			},
		},
		{
			name: "beta with revision drops the revision",
			config: func() *Config {
				c := validConfig(ChannelBeta)
				c.Revision = "1.3.0"
				return c
			}(),
			checkFields: func(t *testing.T, c *Config) {
				assert.Empty(t, c.Revision)
				assert.Len(t, c.Warnings, 1)
			},
		},
		{
			name: "malformed revision",
			config: func() *Config {
				c := validConfig(ChannelStable)
				c.Revision = "latest"
				return c
			}(),
			wantErr:     true,
			errContains: "invalid revision",
		},
		{
			name: "partial revision",
			config: func() *Config {
				c := validConfig(ChannelStable)
				c.Revision = "1.2"
				return c
			}(),
			wantErr:     true,
			errContains: "invalid revision",
		},
		{
			name: "malformed date",
			config: func() *Config {
				c := validConfig(ChannelNightly)
				c.Date = "22/09/2015"
				return c
			}(),
			wantErr:     true,
			errContains: "invalid date",
		},
		{
			name:        "empty channel",
			config:      validConfig(""),
			wantErr:     true,
			errContains: "unrecognized channel",
		},
		{
			name: "relative installer url",
			config: func() *Config {
				c := validConfig(ChannelStable)
				c.InstallerURL = "rustup.sh"
				return c
			}(),
			wantErr:     true,
			errContains: "invalid installer_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)

			if tt.checkFields != nil {
				tt.checkFields(t, tt.config)
			}
		})
	}
}

func TestConfig_Pin(t *testing.T) {
	stable := validConfig(ChannelStable)
	stable.Revision = "1.2.3"
	stable.Date = "2015-09-22"
	assert.Equal(t, "1.2.3", stable.Pin())

	nightly := validConfig(ChannelNightly)
	nightly.Revision = "1.2.3"
	nightly.Date = "2015-09-22"
	assert.Equal(t, "2015-09-22", nightly.Pin())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		channel  string
		wantKind ChannelKind
		wantOK   bool
	}{
		{"stable", FixedRelease, true},
		{"beta", Rolling, true},
		{"nightly", Rolling, true},
		{"", FixedRelease, false},
		{"invalid", FixedRelease, false},
		{"NIGHTLY", FixedRelease, false},
	}

	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			kind, ok := KindOf(tt.channel)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantKind, kind)
			}
		})
	}
}

func validConfig(channel string) *Config {
	return &Config{
		Channel:      channel,
		InstallerURL: DefaultInstallerURL,
		DistServer:   DefaultDistServer,
		DocsServer:   DefaultDocsServer,
	}
}
