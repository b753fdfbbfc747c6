package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "webbrowser %s (built %s, %s %s/%s)\n",
			resolvedVersion(), buildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

// resolvedVersion falls back to the module version for `go install` builds,
// which carry no -ldflags
func resolvedVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}
