package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var reCodeFence = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// StripFences removes a surrounding markdown code fence from model output.
// Models occasionally wrap JSON in ```json blocks despite the
// application/json response MIME type.
func StripFences(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if m := reCodeFence.FindSubmatch(trimmed); m != nil {
		return m[1]
	}
	return trimmed
}

// UnmarshalRaw accepts json.RawMessage directly.
func UnmarshalRaw(raw json.RawMessage, v any) error {
	return UnmarshalFlex([]byte(raw), v)
}

// UnmarshalFlex tries to unmarshal model JSON into v with best effort:
// 1) direct unmarshal, 2) strip code fences, 3) normalize double-escaped
// unicode sequences and try again.
func UnmarshalFlex(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	stripped := StripFences(raw)
	if err := json.Unmarshal(stripped, v); err == nil {
		return nil
	}
	norm, err := normalizeUnicode(stripped)
	if err != nil {
		return err
	}
	return json.Unmarshal(norm, v)
}

// MarshalNoEscape encodes v into JSON with HTML escaping disabled, so
// angle brackets and ampersands survive as-is.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// normalizeUnicode parses JSON bytes and recursively unescapes any remaining
// double-escaped unicode sequences inside string values. Handles the case
// where the whole payload arrives as a quoted JSON string.
func normalizeUnicode(raw []byte) ([]byte, error) {
	var anyVal any
	if err := json.Unmarshal(raw, &anyVal); err != nil {
		return nil, err
	}
	// A payload that arrives as one quoted JSON string needs a second decode.
	if s, ok := anyVal.(string); ok {
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			return nil, errors.New("jsonutil: cannot parse JSON payload")
		}
		anyVal = inner
	}
	return MarshalNoEscape(deepUnescape(anyVal))
}

func deepUnescape(v any) any {
	switch x := v.(type) {
	case string:
		if s, err := unescapeUnicodeString(x); err == nil {
			return s
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = deepUnescape(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = deepUnescape(vv)
		}
		return out
	default:
		return v
	}
}

// unescapeUnicodeString converts leftover escape sequences (a literal
// backslash-u-0-0-3-e and the like) into actual characters by re-quoting
// through the JSON decoder. Strings with no valid escapes fail the decode
// and are kept as-is by the caller.
func unescapeUnicodeString(s string) (string, error) {
	esc := strings.ReplaceAll(s, `"`, `\"`)
	var out string
	if err := json.Unmarshal([]byte(`"`+esc+`"`), &out); err != nil {
		return "", err
	}
	return out, nil
}
