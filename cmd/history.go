package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/rustpack/internal/ledger"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "history <cache-dir>",
		Short:        "List toolchain installs recorded in a cache directory",
		Args:         cobra.ExactArgs(1),
		RunE:         runHistory,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("clear", false, "Forget all recorded installs")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cacheDir := args[0]
	if info, err := os.Stat(cacheDir); err != nil || !info.IsDir() {
		return eris.Errorf("no cache directory at %s", cacheDir)
	}

	l, err := ledger.Open(cacheDir)
	if err != nil {
		return err
	}
	defer l.Close()

	out := cmd.OutOrStdout()

	if clear, _ := cmd.Flags().GetBool("clear"); clear {
		if err := l.Clear(); err != nil {
			return err
		}

		fmt.Fprintln(out, "Install history cleared.")
		return nil
	}

	entries, err := l.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INSTALLED\tCHANNEL\tPIN\tVERSION\tHASH")

	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Format(time.RFC3339), e.Channel, orDash(e.Pin), orDash(e.Version), orDash(e.Hash))
	}

	if err := w.Flush(); err != nil {
		return err
	}

	count, size, err := l.Stats()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d installs recorded (%s)\n", count, units.HumanSize(float64(size)))

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
