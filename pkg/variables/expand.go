package variables

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxExpandPasses bounds re-expansion of self-referencing values.
const MaxExpandPasses = 32

// Expand replaces $name and $name.field tokens with their values.
//
// A token ends at whitespace, ';' or the end of the text. The ';' terminator
// of a resolved token is consumed, so "$app;/menu" can glue a value to the
// following text. Unresolved tokens are kept literally. Expansion repeats on
// its own output until a pass makes no substitution.
func (s *Store) Expand(text string) string {
	for i := 0; i < MaxExpandPasses; i++ {
		out, changed := s.expandOnce(text)
		if !changed {
			return out
		}
		text = out
	}
	return text
}

func (s *Store) expandOnce(text string) (string, bool) {
	if !strings.Contains(text, "$") {
		return text, false
	}

	var sb strings.Builder
	changed := false
	for i := 0; i < len(text); {
		if text[i] != '$' {
			sb.WriteByte(text[i])
			i++
			continue
		}

		end := i + 1
		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			if isTerminator(r) {
				break
			}
			end += size
		}
		token := text[i+1 : end]

		value, ok := s.resolve(token)
		if !ok {
			sb.WriteString(text[i:end])
			i = end
			continue
		}

		sb.WriteString(value)
		changed = true
		i = end
		if i < len(text) && text[i] == ';' {
			i++
		}
	}
	return sb.String(), changed
}

func (s *Store) resolve(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	if name, field, ok := strings.Cut(token, "."); ok {
		if v, found := s.GetDotted(name, field); found {
			return v, true
		}
	}
	return s.Get(token)
}

func isTerminator(r rune) bool {
	return r == ';' || unicode.IsSpace(r)
}
