package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set via -ldflags at release time.
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show brewq version and build information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	v, c, d := buildVersion()
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Version:    %s\n", v)
	fmt.Fprintf(w, "Commit:     %s\n", emptyAsNA(c))
	fmt.Fprintf(w, "Build Date: %s\n", emptyAsNA(d))
	fmt.Fprintf(w, "Go Version: %s\n", runtime.Version())
	fmt.Fprintf(w, "OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}

// buildVersion falls back to the module and VCS stamps of `go install` builds
// when ldflags were not set.
func buildVersion() (v, c, d string) {
	v, c, d = version, commit, buildDate
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v, c, d
	}
	if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && c == "":
			c = s.Value
		case s.Key == "vcs.time" && d == "":
			d = s.Value
		}
	}
	return v, c, d
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
