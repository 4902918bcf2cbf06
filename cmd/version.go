package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/spigell/jobfit/cmd.version=...".
var (
	version = "unknown"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Println(version)
			return
		}
		fmt.Printf("%s version: %s (commit %s, %s %s/%s)\n", app, version, commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().Bool("short", false, "print the version number only")
}
