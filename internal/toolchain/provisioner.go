/*
Package toolchain provisions a Rust toolchain into a buildpack cache directory
and builds the application with it.

A run inspects the cached compiler, reinstalls it when it no longer matches the
configured channel and pin, and then delegates to cargo. Every external
command failure ends the run with that command's exit status.
*/
package toolchain

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/Norgate-AV/rustpack/internal/codes"
	"github.com/Norgate-AV/rustpack/internal/config"
	"github.com/Norgate-AV/rustpack/internal/envdir"
	"github.com/Norgate-AV/rustpack/internal/ledger"
	"github.com/Norgate-AV/rustpack/internal/upstream"
)

// Upstream resolves the newest published toolchain on a channel
type Upstream interface {
	LatestVersion(ctx context.Context, channel string) (string, error)
	LatestHash(ctx context.Context, channel string) (string, error)
}

// Ledger remembers past installs
type Ledger interface {
	Last() (*ledger.Entry, error)
	Record(entry ledger.Entry) error
}

var (
	_ Upstream = (*upstream.Client)(nil)
	_ Ledger   = (*ledger.Ledger)(nil)
)

// Provisioner ensures a usable toolchain in the cache and runs the build
type Provisioner struct {
	Layout Layout
	Config *config.Config
	// Env is the complete environment handed to child processes
	Env      envdir.Env
	Fetcher  upstream.Fetcher
	Upstream Upstream
	Runner   Runner
	// Ledger is optional
	Ledger Ledger
	Log    zerolog.Logger
	// Stdout and Stderr receive build output, and installer output when verbose
	Stdout io.Writer
	Stderr io.Writer
}

// Provision makes sure the toolchain is current and builds buildDir with it
func (p *Provisioner) Provision(ctx context.Context, buildDir string) error {
	if _, ok := config.KindOf(p.Config.Channel); !ok {
		return codes.New(codes.KindConfiguration, eris.Errorf("unrecognized channel %q", p.Config.Channel))
	}

	if err := purgeBuildOutput(buildDir); err != nil {
		return codes.New(codes.KindBuild, err)
	}

	if err := os.MkdirAll(p.Layout.Root, 0o755); err != nil {
		return codes.New(codes.KindInstall, eris.Wrap(err, "failed to create cache directory"))
	}

	for _, warning := range p.Config.Warnings {
		p.Log.Warn().Msg(warning)
	}

	if err := p.bootstrap(ctx); err != nil {
		return err
	}

	if p.Config.ChannelDefaulted {
		p.Log.Warn().Msgf("RUSTC_CHANNEL is not set, defaulting to %s.", p.Config.Channel)
	}

	if err := p.ensureToolchain(ctx); err != nil {
		return err
	}

	p.confirmVersion(ctx)

	return p.build(ctx, buildDir)
}

func (p *Provisioner) ensureToolchain(ctx context.Context) error {
	state, err := p.Inspect(ctx)
	if err != nil {
		return codes.New(codes.KindNetwork, err)
	}

	switch state {
	case CachedFresh:
		p.Log.Info().Msg("Using cached Rust toolchain.")
		return nil
	case CachedStale:
		p.Log.Info().Msg("Cached Rust toolchain is out of date, removing it.")

		if err := p.evict(); err != nil {
			return err
		}
	}

	return p.install(ctx)
}

// confirmVersion logs the compiler version. Failure is only reported.
func (p *Provisioner) confirmVersion(ctx context.Context) {
	out, err := p.Runner.Output(ctx, p.versionCommand())
	if err != nil {
		p.Log.Warn().Err(err).Msg("rustc --version failed.")
		return
	}

	p.Log.Info().Msg(strings.TrimSpace(string(out)))
}

// BuildCommand returns the cargo invocation for buildDir
func (p *Provisioner) BuildCommand(buildDir string) *ShellCommand {
	env := p.toolEnv()
	env["CARGO_HOME"] = p.Layout.CargoHome()

	return &ShellCommand{
		Path:   p.Layout.Cargo(),
		Args:   []string{"build", "--release"},
		Dir:    buildDir,
		Env:    env.Environ(),
		Stdout: p.Stdout,
		Stderr: p.Stderr,
	}
}

func (p *Provisioner) build(ctx context.Context, buildDir string) error {
	p.Log.Info().Msg("Compiling Application.")

	cmd := p.BuildCommand(buildDir)
	p.Log.Debug().Msg(cmd.String())

	if err := p.Runner.Run(ctx, cmd); err != nil {
		return codes.New(codes.KindBuild, err)
	}

	return nil
}

func (p *Provisioner) versionCommand() *ShellCommand {
	return &ShellCommand{
		Path: p.Layout.Compiler(),
		Args: []string{"--version"},
		Env:  p.toolEnv().Environ(),
	}
}

// toolEnv is Env with the cached toolchain on the search paths
func (p *Provisioner) toolEnv() envdir.Env {
	env := p.Env.Clone()
	env.PrependPath("PATH", p.Layout.BinDir())
	env.PrependPath("LD_LIBRARY_PATH", p.Layout.LibDir())

	return env
}

// purgeBuildOutput removes artifacts left by a previous build
func purgeBuildOutput(buildDir string) error {
	if err := os.RemoveAll(filepath.Join(buildDir, "target")); err != nil {
		return eris.Wrap(err, "failed to remove previous build output")
	}

	return nil
}
