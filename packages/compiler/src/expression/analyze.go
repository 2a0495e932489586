package expression

import (
	"sort"
	"strings"

	"weftc-go/packages/compiler/src/core"
)

// Dependencies returns the sorted, duplicate-free set of reactive-state names
// a template expression reads. Identifiers in value position count as
// dependencies unless they are loop indexes (block-local, contribute
// nothing); a loop-context name expands to the outer dependency list of its
// source expression, supplied in contexts.
func Dependencies(contexts map[string][]string, indexes map[string]string, text string) ([]string, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	for i, token := range tokens {
		if !token.IsIdentifier() || !isValuePosition(tokens, i) {
			continue
		}
		name := token.StrValue
		if _, isIndex := indexes[name]; isIndex {
			continue
		}
		if outer, isContext := contexts[name]; isContext {
			for _, dep := range outer {
				set[dep] = true
			}
			continue
		}
		set[name] = true
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Contextualize rewrites a template expression against a block's context:
// a loop-context name becomes its mapped source expression, a loop index
// becomes its mapped index variable and every other value-position
// identifier is namespaced onto the state parameter. Property accesses,
// object-literal keys and literals pass through untouched.
func Contextualize(contexts map[string]string, indexes map[string]string, state string, text string) (string, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	last := 0
	for i, token := range tokens {
		if !token.IsIdentifier() || !isValuePosition(tokens, i) {
			continue
		}
		name := token.StrValue
		var replacement string
		if source, isContext := contexts[name]; isContext {
			replacement = source
		} else if index, isIndex := indexes[name]; isIndex {
			replacement = index
		} else {
			replacement = state + "." + name
		}
		out.WriteString(text[last:token.Index])
		out.WriteString(replacement)
		last = token.End
	}
	out.WriteString(text[last:])
	return out.String(), nil
}

// isValuePosition reports whether the identifier token at position i reads a
// value: it is not a property name following '.' or '?.' and not an
// object-literal key. An identifier directly before ':' is a key only when
// preceded by '{' or ','; the ':' of a ternary is preceded by an expression,
// so ternary branches stay in value position. Shorthand properties ({ foo })
// have no ':' and are treated as reads.
func isValuePosition(tokens []Token, i int) bool {
	if i > 0 {
		prev := tokens[i-1]
		if prev.IsCharacter(core.CharPERIOD) || prev.IsOperator("?.") {
			return false
		}
	}
	if i > 0 && i+1 < len(tokens) && tokens[i+1].IsCharacter(core.CharCOLON) {
		prev := tokens[i-1]
		if prev.IsCharacter(core.CharLBRACE) || prev.IsCharacter(core.CharCOMMA) {
			return false
		}
	}
	return true
}
