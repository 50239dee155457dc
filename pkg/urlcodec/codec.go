package urlcodec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/abhisheknishant138/scope/internal/errors"
)

const (
	// PercentPlaceholder replaces every '%' in an encoded state.
	PercentPlaceholder = "<PERCENT>"

	// SlashPlaceholder replaces every '/' in an encoded state.
	SlashPlaceholder = "<SLASH>"

	// StatePrefix is the path prefix under which encoded states are routed.
	StatePrefix = "/state/"
)

// ErrMalformedState matches (via errors.Is) every decoding failure. It is
// declared as a plain error so callers cannot chain builders onto the shared
// value.
var ErrMalformedState error = errors.New("E100")

// Marshal renders v as canonical JSON: object keys are sorted at every level
// regardless of the order they were inserted in and there is no trailing
// newline. '<' is written as \u003c so string content can never spell a
// placeholder; '>' and '&' are left as is. Non-ASCII text stays raw UTF-8.
func Marshal(v any) ([]byte, error) {
	first, err := encodeJSON(v)
	if err != nil {
		return nil, errors.New("E101").Wrap(err)
	}

	// Re-decode into the generic model so struct fields are sorted like map
	// keys. UseNumber keeps numeric literals byte-identical.
	dec := json.NewDecoder(bytes.NewReader(first))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, errors.New("E101").Wrap(err)
	}

	out, err := encodeJSON(generic)
	if err != nil {
		return nil, errors.New("E101").Wrap(err)
	}
	// '<' only occurs inside JSON strings, so the escape is lossless.
	return bytes.ReplaceAll(out, []byte("<"), []byte(`\u003c`)), nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EncodeURL escapes the two reserved characters of s. '%' is replaced before
// '/'. Other characters, including non-ASCII UTF-8, are left for the browser
// to percent-escape; EscapedStatePath gives that wire form.
func EncodeURL(s string) string {
	s = strings.ReplaceAll(s, "%", PercentPlaceholder)
	return strings.ReplaceAll(s, "/", SlashPlaceholder)
}

// DecodeURL reverses EncodeURL: the slash placeholder is restored, the result
// is percent-decoded with path semantics ('+' stays literal), then the
// percent placeholder is restored.
func DecodeURL(s string) (string, error) {
	s = strings.ReplaceAll(s, SlashPlaceholder, "/")
	s, err := url.PathUnescape(s)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(s, PercentPlaceholder, "%"), nil
}

// Encode returns the transport-safe canonical form of v.
func Encode(v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return EncodeURL(string(data)), nil
}

// MustEncode is like Encode but panics if v cannot be serialized. Values
// built from the view-state field set are always serializable, so a panic
// here is a bug in the caller.
func MustEncode(v any) string {
	s, err := Encode(v)
	if err != nil {
		panic(fmt.Sprintf("urlcodec: %v", err))
	}
	return s
}

// Decode parses an encoded state. An empty string decodes to the empty
// object. Text that cannot be percent-decoded, is not valid JSON, or whose
// top level is not an object yields an error matching ErrMalformedState.
func Decode(s string) (map[string]any, error) {
	if s == "" {
		return map[string]any{}, nil
	}

	text, err := DecodeURL(s)
	if err != nil {
		return nil, malformed(err)
	}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, malformed(err)
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, malformed(fmt.Errorf("top-level value is %s, want object", jsonKind(v)))
	}
	return m, nil
}

func malformed(cause error) error {
	return errors.New("E100").Wrap(cause)
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
