package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoJSON is returned when a response contains no parseable JSON document.
var ErrNoJSON = eris.New("llm: no valid JSON found in response")

var thinkTagPattern = regexp.MustCompile(`(?s)^\s*<think>.*?</think>\s*`)

// ExtractJSON returns the first valid JSON object embedded in a model
// response. A leading <think> block is dropped and every '{' is tried in
// order, so fences, prose and stray braces before the payload are skipped.
func ExtractJSON(response string) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")

	for offset := 0; offset < len(cleaned); {
		i := strings.IndexByte(cleaned[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i
		if doc, ok := balancedObject(cleaned[start:]); ok && json.Valid([]byte(doc)) {
			return doc, nil
		}
		offset = start + 1
	}
	return "", eris.Wrapf(ErrNoJSON, "scanned %d bytes", len(cleaned))
}

// DecodeJSON extracts the JSON object from a response and decodes it into T.
func DecodeJSON[T any](response string) (T, error) {
	var out T
	raw, err := ExtractJSON(response)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, eris.Wrapf(err, "llm: decode %d byte object", len(raw))
	}
	return out, nil
}

// balancedObject returns the prefix of s, which starts with '{', up to its
// matching '}'. Braces inside strings are ignored.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
