// pkg/shell/token.go
package shell

import (
	"strings"
)

// Split tokenizes one command line. Tokens are whitespace separated;
// single or double quoted segments stay one token; a backslash escapes
// the next character. An empty or all-whitespace line yields no tokens.
func Split(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	var inQuote rune
	escaped := false
	pending := false

	for _, ch := range line {
		if escaped {
			current.WriteRune(ch)
			pending = true
			escaped = false
			continue
		}

		if ch == '\\' {
			escaped = true
			continue
		}

		if inQuote != 0 {
			if ch == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(ch)
			}
			continue
		}

		if ch == '"' || ch == '\'' {
			inQuote = ch
			pending = true
			continue
		}

		if ch == ' ' || ch == '\t' {
			if pending || current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
				pending = false
			}
			continue
		}

		current.WriteRune(ch)
		pending = true
	}

	if escaped {
		return nil, &SyntaxError{Reason: "trailing escape character"}
	}
	if inQuote != 0 {
		return nil, &SyntaxError{Reason: "unclosed quote in command"}
	}

	if pending || current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens, nil
}
