package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisheknishant138/scope/internal/errors"
	"github.com/abhisheknishant138/scope/pkg/appstate"
	"github.com/abhisheknishant138/scope/pkg/urlcodec"
	"github.com/abhisheknishant138/scope/pkg/viewstate"
)

func encodeCmd() *cobra.Command {
	var (
		escaped   bool
		showState bool
	)

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode an application state into a state path",
		Long: `Read an application state as JSON from file (or stdin) and print
the /state/<encoded> path of its minimal view state. Fields missing from
the input keep their initial value.

Examples:
  scopestate encode app.json
  echo '{"selectedNodeId":"n1"}' | scopestate encode --escaped`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runEncode(in, cmd.OutOrStdout(), escaped, showState)
		},
	}

	cmd.Flags().BoolVarP(&escaped, "escaped", "e", false, "Percent-escape the path as a browser would send it")
	cmd.Flags().BoolVar(&showState, "state", false, "Print the reduced view state before the path")

	return cmd
}

func runEncode(in io.Reader, out io.Writer, escaped, showState bool) error {
	st := appstate.Initial()
	if err := json.NewDecoder(in).Decode(st); err != nil {
		return errors.New("E102").
			WithDetail("The input is not an application state JSON object.").
			Wrap(err)
	}

	vs, err := appstate.URLState(st)
	if err != nil {
		return err
	}
	encoded, err := urlcodec.Encode(vs)
	if err != nil {
		return err
	}

	if showState {
		data, err := urlcodec.Marshal(vs)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	}
	if escaped {
		fmt.Fprintln(out, urlcodec.EscapedStatePath(encoded))
	} else {
		fmt.Fprintln(out, urlcodec.StatePath(encoded))
	}
	return nil
}

func decodeCmd() *cobra.Command {
	var restore bool

	cmd := &cobra.Command{
		Use:   "decode <path|hash|encoded>",
		Short: "Decode a state path, hash fragment or encoded state",
		Long: `Decode the view state carried by a /state/<encoded> path, a legacy
#!/state/<encoded> or #!/<encoded> fragment, or a bare encoded state, and
print it as canonical JSON.

Examples:
  scopestate decode '/state/{"topologyId":"hosts"}'
  scopestate decode '#!/state/%7B%22selectedNodeId%22:%22n1%22%7D'
  scopestate decode --app '{"searchQuery":"a<SLASH>b"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(args[0], cmd.OutOrStdout(), restore)
		},
	}

	cmd.Flags().BoolVarP(&restore, "app", "a", false, "Print the application state restored over the initial state")

	return cmd
}

func runDecode(arg string, out io.Writer, restore bool) error {
	var (
		m   map[string]any
		err error
	)
	if strings.HasPrefix(arg, "/") || strings.HasPrefix(arg, "#") {
		m, err = urlcodec.ParseLocation(arg)
	} else {
		m, err = urlcodec.Decode(arg)
	}
	if err != nil {
		return err
	}

	if restore {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(appstate.Restore(appstate.Initial(), viewstate.ViewState(m)))
	}

	data, err := urlcodec.Marshal(m)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}
