package util

import (
	"regexp"
	"strings"
)

var legalIdentifierRe = regexp.MustCompile(`(?i)^[$A-Z_][0-9A-Z_$]*$`)

// quoteEscapeRe matches the characters that need escaping inside a
// single-quoted JavaScript string literal.
var quoteEscapeRe = regexp.MustCompile(`['\\\n\r]`)

// Dedent strips the common leading indentation from a multi-line code
// template. Blank lines are ignored when computing the indentation, CRLF
// line endings are normalized to LF, and leading/trailing blank lines are
// removed. Single-line input is returned unchanged.
func Dedent(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	prefix := ""
	found := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := leadingWhitespace(line)
		if !found {
			prefix = indent
			found = true
		} else {
			prefix = commonPrefix(prefix, indent)
		}
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
		} else {
			lines[i] = strings.TrimPrefix(line, prefix)
		}
	}

	// Trim leading and trailing blank lines so templates can be written as
	// raw strings starting with a newline.
	start := 0
	for start < len(lines) && lines[start] == "" {
		start++
	}
	end := len(lines)
	for end > start && lines[end-1] == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// Indent prefixes every non-empty line of text with the given indentation.
func Indent(text string, with string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = with + line
		}
	}
	return strings.Join(lines, "\n")
}

// QuoteJS returns text as a single-quoted JavaScript string literal.
func QuoteJS(text string) string {
	body := quoteEscapeRe.ReplaceAllStringFunc(text, func(match string) string {
		switch match {
		case "\n":
			return `\n`
		case "\r":
			return `\r`
		default:
			return `\` + match
		}
	})
	return "'" + body + "'"
}

// IsLegalIdentifier checks whether name can be emitted as a bare JavaScript
// identifier.
func IsLegalIdentifier(name string) bool {
	return legalIdentifierRe.MatchString(name)
}

func leadingWhitespace(line string) string {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return line[:i]
		}
	}
	return line
}

func commonPrefix(a, b string) string {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for i := 0; i < max; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:max]
}
