package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/brewq/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default brewq configuration",
	Long: `Create ~/.brewq/ with a default brewq.yaml and a .env template.

Existing files are left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var flagInitForce bool

func init() {
	initCmd.Flags().BoolVar(&flagInitForce, "force", false, "Overwrite an existing brewq.yaml with defaults")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Resolve and create ~/.brewq ────────────────────────────────────────
	dir, err := config.BrewqDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	printOK("", fmt.Sprintf("brewq directory ready: %s", dir))

	// ── 2. Write brewq.yaml if missing ────────────────────────────────────────
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	_, statErr := os.Stat(cfgPath)
	switch {
	case os.IsNotExist(statErr) || flagInitForce:
		if err := config.Save(config.DefaultConfig()); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	case statErr != nil:
		return fmt.Errorf("cannot stat %s: %w", cfgPath, statErr)
	default:
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 3. .env template ──────────────────────────────────────────────────────
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	envPath, _ := config.DotEnvPath()
	printOK("", fmt.Sprintf("Overrides file ready: %s", envPath))

	// ── 4. Validate what we wrote ─────────────────────────────────────────────
	if _, err := config.Load(); err != nil {
		return err
	}
	printInfo("", "Run 'brewq doctor' to check your Homebrew setup.")
	return nil
}
