// Package errors provides structured, coded errors for the scope view-state
// router.
//
// Every error carries a stable code (e.g. "E100") that maps to a registered
// template with a category, a short message and a longer explanation. Callers
// add a suggestion or wrap the underlying cause:
//
//	err := errors.New("E100").
//	    WithDetail("unexpected end of JSON input").
//	    Wrap(cause)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E100: Malformed view state
//	//
//	//   unexpected end of JSON input
//
// # Error Categories
//
//   - state: view-state encoding and decoding
//   - storage: persistent store reads and writes
//   - navigation: history push/replace failures
//   - config: configuration loading and validation
//   - transport: HTTP and websocket sessions
//
// ScopeError implements Unwrap, so errors.Is and errors.As see through it to
// the wrapped cause.
package errors
