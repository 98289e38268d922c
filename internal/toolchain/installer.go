package toolchain

import (
	"context"
	"io"
	"os"

	"github.com/docker/go-units"
	"github.com/rotisserie/eris"

	"github.com/Norgate-AV/rustpack/internal/codes"
	"github.com/Norgate-AV/rustpack/internal/config"
	"github.com/Norgate-AV/rustpack/internal/ledger"
)

// bootstrap downloads the installer into the cache unless it is already there
func (p *Provisioner) bootstrap(ctx context.Context) error {
	path := p.Layout.Installer()
	if fileExists(path) {
		return nil
	}

	p.Log.Info().Msg("Installing Rustup.")

	n, err := p.Fetcher.Download(ctx, p.Config.InstallerURL, path)
	if err != nil {
		return codes.New(codes.KindNetwork, err)
	}

	p.Log.Debug().Str("url", p.Config.InstallerURL).Str("size", units.HumanSize(float64(n))).Msg("Downloaded installer")

	if err := os.Chmod(path, 0o755); err != nil {
		return codes.New(codes.KindInstall, eris.Wrap(err, "failed to make installer executable"))
	}

	return nil
}

// InstallCommand returns the installer invocation for the configured channel.
// Exactly one of channel, channel+revision or channel+date is requested.
func (p *Provisioner) InstallCommand() *ShellCommand {
	args := []string{
		"--prefix=" + p.Layout.Toolchain(),
		"--channel=" + p.Config.Channel,
	}

	switch p.Config.Kind() {
	case config.FixedRelease:
		if p.Config.Revision != "" {
			args = append(args, "--revision="+p.Config.Revision)
		}
	case config.Rolling:
		if p.Config.Date != "" {
			args = append(args, "--date="+p.Config.Date)
		}
	}

	args = append(args, "--yes", "--disable-sudo")

	return &ShellCommand{
		Path:   p.Layout.Installer(),
		Args:   args,
		Env:    p.toolEnv().Environ(),
		Stdout: p.verboseOutput(p.Stdout),
		Stderr: p.verboseOutput(p.Stderr),
	}
}

// install runs the installer and records the result
func (p *Provisioner) install(ctx context.Context) error {
	p.Log.Info().Str("channel", p.Config.Channel).Str("pin", p.Config.Pin()).Msg("Installing Rust toolchain.")

	cmd := p.InstallCommand()
	p.Log.Debug().Msg(cmd.String())

	if err := p.Runner.Run(ctx, cmd); err != nil {
		return codes.New(codes.KindInstall, err)
	}

	if !fileExists(p.Layout.Compiler()) {
		return codes.New(codes.KindInstall, eris.Errorf("installer finished but %s is missing", p.Layout.Compiler()))
	}

	p.record(ctx)

	return nil
}

// evict removes the cached toolchain and cargo home
func (p *Provisioner) evict() error {
	for _, dir := range []string{p.Layout.Toolchain(), p.Layout.CargoHome()} {
		if err := os.RemoveAll(dir); err != nil {
			return codes.New(codes.KindInstall, eris.Wrapf(err, "failed to remove %s", dir))
		}
	}

	return nil
}

// record appends the install to the ledger. Ledger problems never fail a build.
func (p *Provisioner) record(ctx context.Context) {
	if p.Ledger == nil {
		return
	}

	entry := ledger.Entry{
		Channel: p.Config.Channel,
		Pin:     p.Config.Pin(),
	}

	if reported, err := p.reportedVersion(ctx); err == nil {
		entry.Version = reported.Version
		entry.Hash = reported.Hash
		entry.Date = reported.Date
	}

	if sum, err := ledger.HashFile(p.Layout.Installer()); err == nil {
		entry.InstallerSHA256 = sum
	}

	if err := p.Ledger.Record(entry); err != nil {
		p.Log.Warn().Err(err).Msg("Could not record the install.")
	}
}

func (p *Provisioner) verboseOutput(w io.Writer) io.Writer {
	if p.Config.Verbose && w != nil {
		return w
	}

	return io.Discard
}
