package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamusis/brewq/internal/pipeline"
)

var flagUpdateNames bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Run brew update && brew upgrade",
	Long: `Run the update shortcut offered for an empty query: 'brew update && brew
upgrade' in the configured terminal.

With --names, refresh the cached cask and formula names instead.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&flagUpdateNames, "names", false, "Refresh the cached package names instead of upgrading")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if flagUpdateNames {
		return refreshNames(cmd.Context(), a)
	}
	return openItem(cmd.Context(), a.handler, pipeline.UpdateItemID, "update")
}

// refreshNames forces a relisting and persists it when a store is configured.
func refreshNames(ctx context.Context, a *app) error {
	a.cache.Invalidate()
	var n int
	a.cache.WithNames(ctx, func(names []string) { n = len(names) })
	if err := ctx.Err(); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("brew listed no packages (run with --debug for details)")
	}
	printOK("", fmt.Sprintf("%d package names cached", n))
	if a.store != nil {
		printInfo("", fmt.Sprintf("snapshot: %s", a.store.Path()))
	}
	return nil
}
