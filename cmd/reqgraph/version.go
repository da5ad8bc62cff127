package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"pdx-hq/reqgraph/pkg/cli"
)

// Set with -ldflags "-X main.Version=..." at release time.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionFlags struct {
	format string
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the reqgraph version with its commit, build date and Go toolchain.
Use --format json or yaml for machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion(cmd.OutOrStdout(), versionFlags.format)
	},
}

func init() {
	versionCmd.Flags().StringVarP(&versionFlags.format, "format", "f", "text", "output format: text, json, yaml")
	rootCmd.AddCommand(versionCmd)
}

// versionInfo describes the running binary. The same values are served at
// /version by the watch command.
type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (v versionInfo) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "reqgraph %s\nGit Commit: %s\nBuild Date: %s\nGo Version: %s\nOS/Arch: %s\n",
		v.Version, v.GitCommit, v.BuildDate, v.GoVersion, v.Platform)
	return err
}

func runVersion(w io.Writer, format string) error {
	f, err := cli.ParseFormat(format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}
	formatter, err := cli.NewFormatter(f, true)
	if err != nil {
		return err
	}
	return formatter.FormatTo(w, currentVersion())
}
