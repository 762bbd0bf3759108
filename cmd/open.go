package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamusis/brewq/internal/pipeline"
)

var openCmd = &cobra.Command{
	Use:   "open <id> [action]",
	Short: "Run an action on a search result",
	Long: `Resolve a result ID printed by 'brewq search' (f.<formula>, c.<cask> or
update) and run one of its actions. Without an action, list the available ones.

  brewq open f.wget install
  brewq open c.firefox homepage`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	action := ""
	if len(args) == 2 {
		action = args[1]
	}
	return openItem(cmd.Context(), a.handler, args[0], action)
}

func openItem(ctx context.Context, h *pipeline.Handler, id, action string) error {
	it, err := h.Resolve(ctx, id)
	if err != nil {
		return err
	}

	if action == "" {
		printSection(fmt.Sprintf("%s  %s", it.Text, it.Subtext))
		for _, a := range it.Actions {
			printInfo(a.ID, a.Label)
		}
		return nil
	}

	act, ok := it.Action(action)
	if !ok {
		return fmt.Errorf("%s has no action %q (run 'brewq open %s' to list them)", id, action, id)
	}
	if err := act.Run(); err != nil {
		return err
	}
	printOK(it.ID, act.Label)
	return nil
}
