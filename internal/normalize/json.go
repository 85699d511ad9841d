package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/titanous/json5"

	"bookmap/pkg/models"
)

// ErrParseFailure means a provider body could not be read as JSON even after
// the tolerant recovery steps.
var ErrParseFailure = errors.New("unparseable provider body")

// LooseJSON decodes a provider body that is meant to be a JSON object but may
// be wrapped in script noise, end with a semicolon, or use single-quoted
// strings.
//
// Order: strict decode of the whole body, then the span between the first
// '{' and the last '}' as JSON5, then that span with single-quoted literals
// rewritten to double quotes.
func LooseJSON(body []byte) (map[string]any, error) {
	if m, err := strictObject(body); err == nil {
		return m, nil
	}

	start := bytes.IndexByte(body, '{')
	end := bytes.LastIndexByte(body, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no object found", ErrParseFailure)
	}
	span := body[start : end+1]

	var m map[string]any
	if err := json5.Unmarshal(span, &m); err == nil && m != nil {
		return m, nil
	}

	m, err := strictObject([]byte(requoteSingle(string(span))))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return m, nil
}

func strictObject(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data")
	}
	if m == nil {
		return nil, errors.New("not an object")
	}
	return m, nil
}

// requoteSingle rewrites 'single quoted' literals into "double quoted" ones.
// Double quotes inside a single-quoted literal are escaped and \' becomes a
// bare apostrophe. Double-quoted literals pass through untouched.
func requoteSingle(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	const (
		outside = iota
		inDouble
		inSingle
	)
	state := outside
	escaped := false

	for _, r := range s {
		switch state {
		case outside:
			switch r {
			case '\'':
				state = inSingle
				b.WriteRune('"')
			case '"':
				state = inDouble
				b.WriteRune(r)
			default:
				b.WriteRune(r)
			}
		case inDouble:
			b.WriteRune(r)
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == '"' {
				state = outside
			}
		case inSingle:
			if escaped {
				escaped = false
				if r == '\'' {
					b.WriteRune('\'')
				} else {
					b.WriteRune('\\')
					b.WriteRune(r)
				}
				continue
			}
			switch r {
			case '\\':
				escaped = true
			case '\'':
				state = outside
				b.WriteRune('"')
			case '"':
				b.WriteString(`\"`)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			default:
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// ProviderError reports the errorCode/errorMessage pair embedded in a decoded
// body. Key casing varies between endpoints, so keys match case-insensitively.
func ProviderError(m map[string]any) (code, message string, ok bool) {
	for k, v := range m {
		switch strings.ToLower(k) {
		case "errorcode":
			code = models.Stringify(v)
		case "errormessage":
			message = models.Stringify(v)
		}
	}
	return code, message, code != "" || message != ""
}

// Records returns the object elements of the array stored under key.
func Records(m map[string]any, key string) []map[string]any {
	arr, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if rec, ok := v.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Field returns a record value as trimmed text, "" when absent.
func Field(rec map[string]any, key string) string {
	return strings.TrimSpace(models.Stringify(rec[key]))
}
