package cmd

import (
	"fmt"
	"io"
	"os"
)

// ── Unified output helpers ────────────────────────────────────────────────────
// Status output of init, doctor, update and open goes through these so icons
// and indentation stay consistent. Search results are rendered in render.go.
//
// Icon semantics:
//   ✓  success / healthy
//   ✗  error / failure          (written to stderr)
//   ⚠  warning
//   ○  skipped / not applicable
//   -  not found / missing
//   ~  neutral info / state change

// statusOut and statusErr are swapped by tests.
var (
	statusOut io.Writer = os.Stdout
	statusErr io.Writer = os.Stderr
)

// printSection prints a top-level section header, e.g. "=== brewq doctor ===".
func printSection(title string) {
	fmt.Fprintf(statusOut, "\n=== %s ===\n", title)
}

// printLine writes one status line.
//   name = "" → "  ✓  msg"
//   name set  → "  ✓  [name] msg"
func printLine(w io.Writer, icon, name, msg string) {
	if name == "" {
		fmt.Fprintf(w, "  %s  %s\n", icon, msg)
	} else {
		fmt.Fprintf(w, "  %s  [%s] %s\n", icon, name, msg)
	}
}

func printOK(name, msg string)   { printLine(statusOut, "✓", name, msg) }
func printErr(name, msg string)  { printLine(statusErr, "✗", name, msg) }
func printWarn(name, msg string) { printLine(statusOut, "⚠", name, msg) }
func printSkip(name, msg string) { printLine(statusOut, "○", name, msg) }
func printMiss(name, msg string) { printLine(statusOut, "-", name, msg) }
func printInfo(name, msg string) { printLine(statusOut, "~", name, msg) }
