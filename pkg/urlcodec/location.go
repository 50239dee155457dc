package urlcodec

import (
	"net/url"
	"strings"
)

// Legacy hash-fragment prefixes, longest first.
var hashPrefixes = []string{"#!" + StatePrefix, "#!/"}

// StatePath returns the history path for an encoded state.
func StatePath(encoded string) string {
	return StatePrefix + encoded
}

// EscapedStatePath returns StatePath with the encoded state percent-escaped
// as a path segment, as a browser would put it on the wire.
func EscapedStatePath(encoded string) string {
	return StatePrefix + url.PathEscape(encoded)
}

// ParseHash decodes a legacy hash fragment of the form "#!/state/<enc>" or
// "#!/<enc>". An empty or unmatched fragment decodes to the empty object.
func ParseHash(hash string) (map[string]any, error) {
	for _, prefix := range hashPrefixes {
		if rest, ok := strings.CutPrefix(hash, prefix); ok {
			return Decode(unescapeSegment(rest))
		}
	}
	return map[string]any{}, nil
}

// ParseLocation decodes the state carried by a location, which may be a path
// ("/state/<enc>", optionally browser-escaped) or a legacy hash fragment.
// Any other location carries no state and decodes to the empty object.
func ParseLocation(loc string) (map[string]any, error) {
	if strings.HasPrefix(loc, "#") {
		return ParseHash(loc)
	}
	if rest, ok := strings.CutPrefix(loc, StatePrefix); ok {
		return Decode(unescapeSegment(rest))
	}
	return map[string]any{}, nil
}

// unescapeSegment removes one layer of browser path escaping. An encoded
// state never contains a raw '%', so for unescaped input this is the
// identity; input that does not unescape cleanly is passed on as is.
func unescapeSegment(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	u, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return u
}
