package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Norgate-AV/rustpack/internal/envdir"
)

// Flag names bound by the loader
const (
	FlagChannel      = "channel"
	FlagInstallerURL = "installer-url"
	FlagVerbose      = "verbose"
)

// Loader handles configuration loading from various sources
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// LoadForProvision loads configuration for a provisioning run.
// Precedence is flags, then env, then the build directory's config file, then defaults.
func (l *Loader) LoadForProvision(cmd *cobra.Command, buildDir string, env envdir.Env) (*Config, error) {
	l.setupViperDefaults()

	if err := l.loadLocalConfig(buildDir); err != nil {
		return nil, err
	}

	if err := l.mergeEnv(env); err != nil {
		return nil, err
	}

	l.bindCommandFlags(cmd)

	return Load(l.v)
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	l.v.SetDefault(KeyInstallerURL, DefaultInstallerURL)
	l.v.SetDefault(KeyDistServer, DefaultDistServer)
	l.v.SetDefault(KeyDocsServer, DefaultDocsServer)
	l.v.SetDefault(KeyVerbose, DefaultVerbose)
}

// loadLocalConfig loads the optional config file committed with the application
func (l *Loader) loadLocalConfig(buildDir string) error {
	path := FindLocalConfig(buildDir)
	if path == "" {
		return nil
	}

	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return eris.Wrapf(err, "failed to read %s", path)
	}

	return nil
}

// mergeEnv overlays variables whose lower-cased name is a config key
func (l *Loader) mergeEnv(env envdir.Env) error {
	values := map[string]interface{}{}

	for _, key := range []string{KeyChannel, KeyRevision, KeyDate, KeyInstallerURL, KeyDistServer, KeyDocsServer} {
		if value, ok := env.Lookup(strings.ToUpper(key)); ok && value != "" {
			values[key] = value
		}
	}

	if len(values) == 0 {
		return nil
	}

	return l.v.MergeConfigMap(values)
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	for key, flag := range map[string]string{
		KeyChannel:      FlagChannel,
		KeyInstallerURL: FlagInstallerURL,
		KeyVerbose:      FlagVerbose,
	} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			_ = l.v.BindPFlag(key, f)
		}
	}
}
