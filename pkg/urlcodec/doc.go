// Package urlcodec converts view state to and from the compact string that is
// stored in the URL path and in the persistent store.
//
// An encoded state is the canonical JSON rendering of a value (map keys sorted
// at every level, '<' written as \u003c) with two characters replaced so the
// result survives as a single URL path segment:
//
//	%  ->  <PERCENT>   (first)
//	/  ->  <SLASH>     (second)
//
// Decoding runs the inverse in the opposite order: <SLASH> is restored, the
// text is percent-decoded, then <PERCENT> is restored. The order is an
// invariant: percent-decoding may itself produce '%' or '/' characters that
// must survive untouched. Because no encoded string contains a raw '<', a
// string value that spells a placeholder is never mistaken for one.
//
// The encoded form is free of '/' and '%' but not ASCII-only: non-ASCII text
// and JSON punctuation stay raw, and a browser percent-escapes them when the
// path goes on the wire. EscapedStatePath returns that escaped form and
// ParseLocation accepts both.
//
// Example:
//
//	enc, _ := urlcodec.Encode(map[string]any{"selectedNodeId": "n1"})
//	// enc == `{"selectedNodeId":"n1"}`
//	path := urlcodec.StatePath(enc)
//	// path == `/state/{"selectedNodeId":"n1"}`
//	state, _ := urlcodec.ParseLocation(path)
package urlcodec
