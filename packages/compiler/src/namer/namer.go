// Package namer allocates unique JavaScript identifiers within one compiled
// unit.
package namer

import (
	"strconv"

	"weftc-go/packages/compiler/src/core"
)

// reservedWords are identifiers the allocator never hands out: ECMAScript
// keywords, literals and strict-mode restricted names.
var reservedWords = []string{
	"arguments", "await", "break", "case", "catch", "class", "const",
	"continue", "debugger", "default", "delete", "do", "else", "enum",
	"eval", "export", "extends", "false", "finally", "for", "function",
	"if", "implements", "import", "in", "instanceof", "interface", "let",
	"new", "null", "package", "private", "protected", "public", "return",
	"static", "super", "switch", "this", "throw", "true", "try", "typeof",
	"undefined", "var", "void", "while", "with", "yield",
}

// Namer hands out identifiers that are unique within a compiled unit. It is
// deterministic: the same sequence of calls produces the same names.
type Namer struct {
	taken    map[string]bool
	suffixes map[string]int
}

// NewNamer returns an allocator with the JavaScript reserved words and the
// given names pre-claimed.
func NewNamer(reserved ...string) *Namer {
	n := &Namer{
		taken:    make(map[string]bool),
		suffixes: make(map[string]int),
	}
	for _, word := range reservedWords {
		n.taken[word] = true
	}
	for _, name := range reserved {
		n.taken[name] = true
	}
	return n
}

// Allocate returns a fresh identifier derived from hint: the hint itself if
// free, otherwise the hint with the lowest unused numeric suffix. The hint is
// sanitized into a legal identifier first. Allocate never returns the same
// name twice.
func (n *Namer) Allocate(hint string) string {
	hint = sanitize(hint)
	if !n.taken[hint] {
		n.taken[hint] = true
		return hint
	}
	for i := n.suffixes[hint] + 1; ; i++ {
		candidate := hint + strconv.Itoa(i)
		if !n.taken[candidate] {
			n.suffixes[hint] = i
			n.taken[candidate] = true
			return candidate
		}
	}
}

// Claim marks an externally chosen name as taken so Allocate will avoid it.
// Claiming the same name twice is a no-op.
func (n *Namer) Claim(name string) {
	n.taken[name] = true
}

// sanitize rewrites hint into a legal identifier: illegal runes become
// underscores, a leading digit is prefixed and the empty hint becomes a bare
// underscore.
func sanitize(hint string) string {
	if hint == "" {
		return "_"
	}
	out := make([]rune, 0, len(hint))
	for _, r := range hint {
		if isIdentifierRune(r) {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	if core.IsDigit(int(out[0])) {
		out = append([]rune{'_'}, out...)
	}
	return string(out)
}

func isIdentifierRune(r rune) bool {
	c := int(r)
	return core.IsAsciiLetter(c) || core.IsDigit(c) || c == core.CharUnderscore || c == core.CharDollar
}
