package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kamusis/brewq/internal/config"
	"github.com/kamusis/brewq/internal/pipeline"
)

var (
	flagSearchJSON  bool
	flagSearchFuzzy bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search Homebrew casks and formulae",
	Long: `Search the cached cask and formula names and stream details for the best
matches, ten at a time. With no query, offers the update shortcut.

Press Ctrl-C to stop; the running brew process is terminated.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&flagSearchJSON, "json", false, "Print one JSON object per batch (NDJSON)")
	searchCmd.Flags().BoolVar(&flagSearchFuzzy, "fuzzy", false, "Tolerate typos in the query")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(func(cfg *config.Config) {
		if cmd.Flags().Changed("fuzzy") {
			cfg.Fuzzy = flagSearchFuzzy
		}
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return streamSearch(ctx, a.handler, strings.Join(args, " "), cmd.OutOrStdout(), flagSearchJSON)
}

// streamSearch writes every batch of query to w as soon as it arrives.
func streamSearch(ctx context.Context, h *pipeline.Handler, query string, w io.Writer, asJSON bool) error {
	bw := newBatchWriter(w, asJSON)
	s := h.Search(ctx, query)
	for items := range s.All() {
		if err := bw.write(items); err != nil {
			return err
		}
	}

	if err := s.Err(); err != nil {
		slog.DebugContext(ctx, "search finished with skipped batches", "reason", err)
		printWarn("", "some results were skipped because brew info failed (run with --debug for details)")
	}
	if ctx.Err() != nil {
		printInfo("", "search cancelled")
		return nil
	}
	if bw.count() == 0 && !asJSON {
		printMiss("", fmt.Sprintf("no packages match %q", query))
	}
	return nil
}
