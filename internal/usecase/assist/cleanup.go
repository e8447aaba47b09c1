package assist

import (
	"encoding/json"
	"errors"
	"strings"
)

// CleanJSON extracts a JSON document from a model reply. It strips Markdown
// code fences, cuts to the outermost object or array and, if that still does
// not parse, drops trailing commas.
func CleanJSON(text string) (json.RawMessage, error) {
	s := stripFences(strings.TrimSpace(text))

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return nil, errors.New("no JSON object or array in reply")
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end < start {
		return nil, errors.New("unterminated JSON in reply")
	}
	s = s[start : end+1]

	if json.Valid([]byte(s)) {
		return json.RawMessage(s), nil
	}

	s = dropTrailingCommas(s)
	if json.Valid([]byte(s)) {
		return json.RawMessage(s), nil
	}
	return nil, errors.New("reply does not parse as JSON")
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// dropTrailingCommas removes commas that directly precede a closing brace or
// bracket, ignoring anything inside string literals.
func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == ',' && closesNext(s[i+1:]):
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// closesNext reports whether the first non-space byte of s is } or ].
func closesNext(s string) bool {
	t := strings.TrimLeft(s, " \t\r\n")
	return t != "" && (t[0] == '}' || t[0] == ']')
}
