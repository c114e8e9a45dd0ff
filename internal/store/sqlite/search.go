package sqlite

import (
	"strings"
	"unicode"
)

// convertWebsearchToFTS5 rewrites a websearch-style query (quoted phrases,
// -negation, OR, trailing *) into FTS5 MATCH syntax. Bare terms are ANDed.
func convertWebsearchToFTS5(query string) string {
	var result strings.Builder
	var inQuote bool
	var current strings.Builder

	flushToken := func() {
		token := current.String()
		current.Reset()
		if token == "" {
			return
		}

		upper := strings.ToUpper(token)
		switch upper {
		case "AND", "OR", "NOT":
			if result.Len() > 0 {
				result.WriteString(" ")
			}
			result.WriteString(upper)
			return
		}

		// FTS5 NOT is binary, so a negated term attaches to what precedes it
		// and is dropped when nothing does.
		if strings.HasPrefix(token, "-") && len(token) > 1 {
			if result.Len() == 0 {
				return
			}
			result.WriteString(" NOT ")
			result.WriteString(quoteTerm(token[1:]))
			return
		}

		if result.Len() > 0 {
			lastWord := lastWord(result.String())
			if lastWord != "AND" && lastWord != "OR" && lastWord != "NOT" && lastWord != "" {
				result.WriteString(" AND ")
			} else {
				result.WriteString(" ")
			}
		}

		result.WriteString(quoteTerm(token))
	}

	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '"':
			if inQuote {
				inQuote = false
				token := current.String()
				current.Reset()
				if token != "" {
					if result.Len() > 0 {
						result.WriteString(" AND ")
					}
					result.WriteString(`"`)
					result.WriteString(token)
					result.WriteString(`"`)
				}
			} else {
				flushToken()
				inQuote = true
			}
		case inQuote:
			current.WriteByte(ch)
		case ch == ' ' || ch == '\t':
			flushToken()
		default:
			current.WriteByte(ch)
		}
	}

	flushToken()

	return result.String()
}

func lastWord(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}

// quoteTerm wraps terms that are not FTS5 barewords (such as "deep-work")
// in quotes so they match literally. A trailing * stays a prefix operator.
func quoteTerm(token string) string {
	prefix := strings.HasSuffix(token, "*")
	bare := strings.TrimSuffix(token, "*")
	if bare == "" || isBareword(bare) {
		return token
	}
	quoted := `"` + strings.ReplaceAll(bare, `"`, `""`) + `"`
	if prefix {
		quoted += " *"
	}
	return quoted
}

func isBareword(s string) bool {
	for _, r := range s {
		if r == '_' || r > unicode.MaxASCII || unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
