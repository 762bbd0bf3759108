package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/brewq/internal/brew"
	"github.com/kamusis/brewq/internal/config"
	"github.com/kamusis/brewq/internal/namecache"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that Homebrew, the configuration and the name snapshot are usable.
Run this command when something seems wrong, or before filing a bug report.`,
	RunE: runDoctor,
}

var doctorFixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Automatically fix detected issues",
	Long: `Fix detected issues in the brewq environment.

Currently fixes:
  - Unreadable name snapshot: deletes ~/.brewq/names.json so it is rebuilt

Run 'brewq doctor' first to see what will be fixed.`,
	RunE: runDoctorFix,
}

func init() {
	doctorCmd.AddCommand(doctorFixCmd)
	rootCmd.AddCommand(doctorCmd)
}

func runDoctorFix(_ *cobra.Command, _ []string) error {
	printSection("brewq doctor fix")

	p, err := config.NamesPath()
	if err != nil {
		return err
	}
	_, err = namecache.NewFileStore(p).Load()
	switch {
	case err == nil:
		printOK("", "name snapshot is readable — nothing to fix")
		return nil
	case errors.Is(err, os.ErrNotExist):
		printSkip("", "no name snapshot yet — nothing to fix")
		return nil
	}

	if err := os.Remove(p); err != nil {
		return fmt.Errorf("cannot delete %s: %w", p, err)
	}
	printOK("", fmt.Sprintf("deleted %s; it is rebuilt on the next search", p))
	return nil
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("brewq doctor")
	fmt.Fprintln(statusOut)

	// ── Check 1: brewq.yaml ───────────────────────────────────────────────────
	fmt.Fprintln(statusOut, "[ brewq.yaml ]")
	cfgPath, _ := config.ConfigPath()
	cfg, err := config.Load()
	switch {
	case errors.Is(err, os.ErrNotExist):
		printMiss("", fmt.Sprintf("%s not found — using defaults (run 'brewq init' to create it)", cfgPath))
		cfg, err = config.LoadOrDefault()
		if err != nil {
			failD("cannot apply overrides: %v", err)
			cfg = config.DefaultConfig()
		}
	case err != nil:
		failD("%v", err)
		cfg = config.DefaultConfig()
	default:
		printOK("", fmt.Sprintf("valid config: %s", cfgPath))
	}
	fmt.Fprintln(statusOut)

	// ── Check 2: Homebrew ─────────────────────────────────────────────────────
	fmt.Fprintln(statusOut, "[ Homebrew ]")
	client, err := brew.New(cfg.BrewPath, brew.WithRunner(brewRunner))
	if err != nil {
		failD("%v — install Homebrew from https://brew.sh or set brew_path", err)
	} else {
		printOK("", fmt.Sprintf("brew found: %s", client.Path()))
	}
	fmt.Fprintln(statusOut)

	// ── Check 3: Launcher commands ────────────────────────────────────────────
	fmt.Fprintln(statusOut, "[ Launcher ]")
	if len(cfg.Terminal) == 0 {
		printSkip("", "no terminal configured — actions run in the current shell")
	} else if _, err := exec.LookPath(cfg.Terminal[0]); err != nil {
		failD("terminal %q not found on PATH", cfg.Terminal[0])
	} else {
		printOK("", fmt.Sprintf("terminal: %s", cfg.Terminal[0]))
	}
	if len(cfg.Opener) > 0 {
		if _, err := exec.LookPath(cfg.Opener[0]); err != nil {
			failD("opener %q not found on PATH", cfg.Opener[0])
		} else {
			printOK("", fmt.Sprintf("opener: %s", cfg.Opener[0]))
		}
	}
	fmt.Fprintln(statusOut)

	// ── Check 4: Name snapshot ────────────────────────────────────────────────
	fmt.Fprintln(statusOut, "[ Name snapshot ]")
	if !cfg.PersistNames {
		printSkip("", "persist_names is off")
	} else if p, err := config.NamesPath(); err != nil {
		failD("%v", err)
	} else {
		snap, err := namecache.NewFileStore(p).Load()
		switch {
		case errors.Is(err, os.ErrNotExist):
			printMiss("", "no snapshot yet — it is written on the first search")
		case err != nil:
			failD("unreadable snapshot %s: %v (run 'brewq doctor fix')", p, err)
		default:
			age := time.Since(snap.RefreshedAt).Round(time.Second)
			printOK("", fmt.Sprintf("%d names, refreshed %s ago", len(snap.Names), age))
			if age > cfg.Staleness {
				printInfo("", "stale; the next search relists")
			}
		}
	}
	fmt.Fprintln(statusOut)

	// ── Summary ───────────────────────────────────────────────────────────────
	fmt.Fprintln(statusOut, "===================")
	if allOK {
		fmt.Fprintln(statusOut, "✓  All checks passed. brewq is ready to use.")
		return nil
	}
	fmt.Fprintln(statusErr, "✗  One or more checks failed. See details above.")
	return fmt.Errorf("doctor found issues")
}
