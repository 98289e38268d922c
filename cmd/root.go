package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/rustpack/internal/codes"
	"github.com/Norgate-AV/rustpack/internal/config"
	"github.com/Norgate-AV/rustpack/internal/logging"
	"github.com/Norgate-AV/rustpack/internal/version"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision <build-dir> <cache-dir> <env-dir>",
		Short: "Rust buildpack compile step",
		Long: `Provision a Rust toolchain into the buildpack cache, reinstalling it when
it no longer matches RUSTC_CHANNEL, RUSTC_REVISION or RUSTC_DATE, then run
cargo build --release in the build directory.`,
		Args:          cobra.ExactArgs(3),
		RunE:          runProvision,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)

	cmd.PersistentFlags().BoolP(config.FlagVerbose, "v", false, "Verbose output")
	cmd.Flags().String(config.FlagChannel, "", "Release channel (stable, beta, nightly); overrides RUSTC_CHANNEL")
	cmd.Flags().String(config.FlagInstallerURL, "", "URL the rustup installer is downloaded from")
	cmd.Flags().String(flagEnvWhitelist, "", "Only import env dir variables matching this regular expression")

	cmd.AddCommand(newHistoryCmd())

	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		log := logging.New(os.Stderr, false)
		log.Error().Msg(err.Error())

		stop()
		os.Exit(codes.ExitCode(err))
	}
}
