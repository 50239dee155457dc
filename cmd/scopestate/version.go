package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisheknishant138/scope/pkg/urlcodec"
)

// buildInfo describes the running binary and the URL format it speaks.
type buildInfo struct {
	Version     string `json:"version" yaml:"version"`
	Commit      string `json:"commit" yaml:"commit"`
	Date        string `json:"date" yaml:"date"`
	Modified    bool   `json:"modified,omitempty" yaml:"modified,omitempty"`
	GoVersion   string `json:"goVersion" yaml:"goVersion"`
	Platform    string `json:"platform" yaml:"platform"`
	StatePrefix string `json:"statePrefix" yaml:"statePrefix"`
}

// currentBuildInfo starts from the linker-set variables and fills whatever
// they leave at their defaults from the module and VCS data that the Go
// toolchain embeds (go install, go build in a checkout).
func currentBuildInfo() buildInfo {
	info := buildInfo{
		Version:     version,
		Commit:      commit,
		Date:        date,
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		StatePrefix: urlcodec.StatePrefix,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "none" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

func (b buildInfo) writeText(w io.Writer) {
	commit := b.Commit
	if b.Modified {
		commit += " (modified)"
	}
	fmt.Fprintf(w, "  Version:      %s\n", b.Version)
	fmt.Fprintf(w, "  Commit:       %s\n", commit)
	fmt.Fprintf(w, "  Built:        %s\n", b.Date)
	fmt.Fprintf(w, "  Go version:   %s\n", b.GoVersion)
	fmt.Fprintf(w, "  OS/Arch:      %s\n", b.Platform)
	fmt.Fprintf(w, "  State prefix: %s\n", b.StatePrefix)
}

func versionCmd() *cobra.Command {
	var (
		short  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the scopestate version, the commit and build date it was built
from, and the state path prefix it reads and writes.

Values not set at link time are taken from the build information embedded
by the Go toolchain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentBuildInfo()
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, info.Version)
				return nil
			}

			switch output {
			case "text":
				info.writeText(out)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case "yaml":
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(info)
			default:
				return fmt.Errorf("unknown output format %q (want text, json or yaml)", output)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")

	return cmd
}
