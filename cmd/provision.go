package cmd

import (
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/rustpack/internal/codes"
	"github.com/Norgate-AV/rustpack/internal/config"
	"github.com/Norgate-AV/rustpack/internal/envdir"
	"github.com/Norgate-AV/rustpack/internal/ledger"
	"github.com/Norgate-AV/rustpack/internal/logging"
	"github.com/Norgate-AV/rustpack/internal/toolchain"
	"github.com/Norgate-AV/rustpack/internal/upstream"
)

const flagEnvWhitelist = "env-whitelist"

// Replaced in tests
var (
	environ = os.Environ

	newRunner = func() toolchain.Runner {
		return toolchain.NewExecRunner()
	}

	newFetcher = func(cfg *config.Config, progress io.Writer) upstream.Fetcher {
		f := upstream.NewHTTPFetcher(nil)
		if cfg.Verbose {
			f.Progress = progress
		}

		return f
	}
)

func runProvision(cmd *cobra.Command, args []string) error {
	dirs := make([]string, len(args))
	for i, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return codes.New(codes.KindConfiguration, eris.Wrapf(err, "failed to resolve %s", arg))
		}

		dirs[i] = abs
	}

	buildDir, cacheDir, envDir := dirs[0], dirs[1], dirs[2]

	opts, err := envOptions(cmd)
	if err != nil {
		return codes.New(codes.KindConfiguration, err)
	}

	imported, importErr := envdir.Load(envDir, opts)

	env := envdir.FromEnviron(environ()).Merge(imported)

	cfg, err := config.NewLoader().LoadForProvision(cmd, buildDir, env)
	if err != nil {
		return codes.New(codes.KindConfiguration, err)
	}

	log := logging.New(cmd.OutOrStdout(), cfg.Verbose)
	if importErr != nil {
		log.Warn().Err(importErr).Msg("Env directory could not be imported, continuing without it.")
	}

	log.Debug().Int("count", len(imported)).Str("dir", envDir).Msg("Imported environment")

	fetcher := newFetcher(cfg, cmd.ErrOrStderr())

	p := &toolchain.Provisioner{
		Layout: toolchain.NewLayout(cacheDir),
		Config: cfg,
		Env:    env,
		Upstream: &upstream.Client{
			Fetcher:    fetcher,
			DistServer: cfg.DistServer,
			DocsServer: cfg.DocsServer,
		},
		Fetcher: fetcher,
		Runner:  newRunner(),
		Log:     log,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	}

	if l, err := ledger.Open(cacheDir); err != nil {
		log.Warn().Err(err).Msg("Install ledger unavailable.")
	} else {
		defer l.Close()
		p.Ledger = l
	}

	return p.Provision(cmd.Context(), buildDir)
}

func envOptions(cmd *cobra.Command) (envdir.Options, error) {
	pattern, _ := cmd.Flags().GetString(flagEnvWhitelist)
	if pattern == "" {
		return envdir.Options{}, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return envdir.Options{}, eris.Wrapf(err, "invalid --%s", flagEnvWhitelist)
	}

	return envdir.Options{Whitelist: re}, nil
}
