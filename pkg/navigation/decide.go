// Package navigation decides, for every application state change, whether
// history gains a new entry or has its top entry replaced, and mirrors the
// encoded view state into a persistent store.
//
// Decide is the pure decision. Router wraps it with the collaborators of a
// running application: the current location, a Navigator and a Store.
package navigation

import (
	"github.com/abhisheknishant138/scope/internal/errors"
	"github.com/abhisheknishant138/scope/pkg/urlcodec"
	"github.com/abhisheknishant138/scope/pkg/viewstate"
)

// Mode is how a navigation updates history.
type Mode int

const (
	// ModeNone means the encoded state did not change.
	ModeNone Mode = iota

	// ModePush adds a new history entry.
	ModePush

	// ModeReplace replaces the current history entry.
	ModeReplace
)

func (m Mode) String() string {
	switch m {
	case ModePush:
		return "push"
	case ModeReplace:
		return "replace"
	default:
		return "none"
	}
}

// Command is the outcome of a decision.
type Command struct {
	Mode Mode

	// Path is the history path, "/state/<URL>".
	Path string

	// URL is the encoded view state.
	URL string

	// State is the reduced view state that URL encodes.
	State viewstate.ViewState
}

// Navigator performs history updates. dispatch reports whether route
// handlers should run for the new entry; the Router always passes false.
type Navigator interface {
	Show(path string, state any, dispatch bool) error
	Replace(path string, state any, dispatch bool) error
}

// Location reports the current location, either a path or a hash fragment.
type Location interface {
	Current() string
}

// LocationFunc adapts a function to Location.
type LocationFunc func() string

func (f LocationFunc) Current() string { return f() }

// ShouldReplace reports whether moving from prev to next replaces the
// current entry instead of pushing. Switching between terminals and closing
// a terminal both replace, so Back never reopens a closed terminal.
func ShouldReplace(prev, next viewstate.ViewState) bool {
	prevTerminal := viewstate.Truthy(prev[viewstate.FieldControlPipe])
	nextTerminal := viewstate.Truthy(next[viewstate.FieldControlPipe])

	terminalToTerminal := prevTerminal && nextTerminal
	closingTerminal := prevTerminal && !nextTerminal
	return terminalToTerminal || closingTerminal
}

// Decide compares the canonical encodings of prev and next. Equal encodings
// yield ModeNone; otherwise the mode follows ShouldReplace.
func Decide(prev, next viewstate.ViewState) (Command, error) {
	prevURL, err := urlcodec.Encode(prev)
	if err != nil {
		return Command{}, err
	}
	nextURL, err := urlcodec.Encode(next)
	if err != nil {
		return Command{}, err
	}

	cmd := Command{
		Mode:  ModePush,
		Path:  urlcodec.StatePath(nextURL),
		URL:   nextURL,
		State: next,
	}
	switch {
	case prevURL == nextURL:
		cmd.Mode = ModeNone
	case ShouldReplace(prev, next):
		cmd.Mode = ModeReplace
	}
	return cmd, nil
}

// Apply performs cmd on nav. ModeNone does nothing.
func Apply(cmd Command, nav Navigator) error {
	var err error
	switch cmd.Mode {
	case ModePush:
		err = nav.Show(cmd.Path, cmd.State, false)
	case ModeReplace:
		err = nav.Replace(cmd.Path, cmd.State, false)
	default:
		return nil
	}
	if err != nil {
		return errors.New("E120").WithDetail(cmd.Mode.String() + " " + cmd.Path).Wrap(err)
	}
	return nil
}
