// Command scopestate encodes and decodes scope view states and serves the
// view-state API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisheknishant138/scope/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scopestate",
		Short: "Encode, decode and serve scope view states",
		Long: `scopestate converts scope application states to the canonical,
URL-safe view-state form used in /state/<encoded> paths and back.

It can also run the view-state server, which exposes the codec over HTTP
and keeps browser sessions in step over WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		encodeCmd(),
		decodeCmd(),
		serveCmd(),
		versionCmd(),
	)
	return cmd
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
