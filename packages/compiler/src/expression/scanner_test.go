package expression_test

import (
	"errors"
	"testing"

	"weftc-go/packages/compiler/src/expression"
)

func lex(t *testing.T, text string) []expression.Token {
	t.Helper()
	tokens, err := expression.Tokenize(text)
	if err != nil {
		t.Fatalf("Tokenize(%q) returned error: %v", text, err)
	}
	return tokens
}

func expectToken(t *testing.T, token expression.Token, index, end int) {
	t.Helper()
	if token.Index != index {
		t.Errorf("Expected token.Index = %d, got %d", index, token.Index)
	}
	if token.End != end {
		t.Errorf("Expected token.End = %d, got %d", end, token.End)
	}
}

func expectCharacterToken(t *testing.T, token expression.Token, index, end int, character string) {
	t.Helper()
	if len(character) != 1 {
		t.Fatalf("Character must be single character, got %q", character)
	}
	expectToken(t, token, index, end)
	if !token.IsCharacter(int(character[0])) {
		t.Errorf("Expected character token %q, got %q", character, token.String())
	}
}

func expectOperatorToken(t *testing.T, token expression.Token, index, end int, operator string) {
	t.Helper()
	expectToken(t, token, index, end)
	if !token.IsOperator(operator) {
		t.Errorf("Expected operator token %q, got %q", operator, token.String())
	}
}

func expectNumberToken(t *testing.T, token expression.Token, index, end int, n float64) {
	t.Helper()
	expectToken(t, token, index, end)
	if !token.IsNumber() {
		t.Errorf("Expected number token, got type %v", token.Type)
	}
	if token.ToNumber() != n {
		t.Errorf("Expected number %f, got %f", n, token.ToNumber())
	}
}

func expectStringToken(t *testing.T, token expression.Token, index, end int, str string) {
	t.Helper()
	expectToken(t, token, index, end)
	if !token.IsString() {
		t.Errorf("Expected string token, got type %v", token.Type)
	}
	if token.String() != str {
		t.Errorf("Expected string %q, got %q", str, token.String())
	}
}

func expectIdentifierToken(t *testing.T, token expression.Token, index, end int, identifier string) {
	t.Helper()
	expectToken(t, token, index, end)
	if !token.IsIdentifier() {
		t.Errorf("Expected identifier token, got type %v", token.Type)
	}
	if token.String() != identifier {
		t.Errorf("Expected identifier %q, got %q", identifier, token.String())
	}
}

func expectKeywordToken(t *testing.T, token expression.Token, index, end int, keyword string) {
	t.Helper()
	expectToken(t, token, index, end)
	if !token.IsKeyword() {
		t.Errorf("Expected keyword token, got type %v", token.Type)
	}
	if token.String() != keyword {
		t.Errorf("Expected keyword %q, got %q", keyword, token.String())
	}
}

func expectScanError(t *testing.T, text string, pos int, msg string) {
	t.Helper()
	_, err := expression.Tokenize(text)
	if err == nil {
		t.Fatalf("Expected Tokenize(%q) to fail", text)
	}
	var scanErr *expression.ScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("Expected a *ScanError, got %T: %v", err, err)
	}
	if scanErr.Pos != pos {
		t.Errorf("Expected error position %d, got %d", pos, scanErr.Pos)
	}
	if scanErr.Msg != msg {
		t.Errorf("Expected error message %q, got %q", msg, scanErr.Msg)
	}
	if scanErr.Expression != text {
		t.Errorf("Expected error expression %q, got %q", text, scanErr.Expression)
	}
}

func TestTokenize(t *testing.T) {
	t.Run("should tokenize a simple identifier", func(t *testing.T) {
		tokens := lex(t, "j")
		if len(tokens) != 1 {
			t.Fatalf("Expected 1 token, got %d", len(tokens))
		}
		expectIdentifierToken(t, tokens[0], 0, 1, "j")
	})

	t.Run("should tokenize \"this\"", func(t *testing.T) {
		tokens := lex(t, "this")
		if len(tokens) != 1 {
			t.Fatalf("Expected 1 token, got %d", len(tokens))
		}
		expectKeywordToken(t, tokens[0], 0, 4, "this")
	})

	t.Run("should tokenize a dotted identifier", func(t *testing.T) {
		tokens := lex(t, "j.k")
		if len(tokens) != 3 {
			t.Fatalf("Expected 3 tokens, got %d", len(tokens))
		}
		expectIdentifierToken(t, tokens[0], 0, 1, "j")
		expectCharacterToken(t, tokens[1], 1, 2, ".")
		expectIdentifierToken(t, tokens[2], 2, 3, "k")
	})

	t.Run("should tokenize an operator", func(t *testing.T) {
		tokens := lex(t, "j-k")
		if len(tokens) != 3 {
			t.Fatalf("Expected 3 tokens, got %d", len(tokens))
		}
		expectOperatorToken(t, tokens[1], 1, 2, "-")
	})

	t.Run("should tokenize an indexed operator", func(t *testing.T) {
		tokens := lex(t, "j[k]")
		if len(tokens) != 4 {
			t.Fatalf("Expected 4 tokens, got %d", len(tokens))
		}
		expectCharacterToken(t, tokens[1], 1, 2, "[")
		expectCharacterToken(t, tokens[3], 3, 4, "]")
	})

	t.Run("should tokenize numbers", func(t *testing.T) {
		tokens := lex(t, "88")
		if len(tokens) != 1 {
			t.Fatalf("Expected 1 token, got %d", len(tokens))
		}
		expectNumberToken(t, tokens[0], 0, 2, 88)
	})

	t.Run("should tokenize numbers within index ops", func(t *testing.T) {
		tokens := lex(t, "a[22]")
		expectNumberToken(t, tokens[2], 2, 4, 22)
	})

	t.Run("should tokenize numbers with exponents", func(t *testing.T) {
		tokens := lex(t, "0.5E-10")
		if len(tokens) != 1 {
			t.Fatalf("Expected 1 token, got %d", len(tokens))
		}
		expectNumberToken(t, tokens[0], 0, 7, 0.5e-10)
	})

	t.Run("should tokenize numbers with separators", func(t *testing.T) {
		tokens := lex(t, "1_000_000")
		if len(tokens) != 1 {
			t.Fatalf("Expected 1 token, got %d", len(tokens))
		}
		expectNumberToken(t, tokens[0], 0, 9, 1000000)
	})

	t.Run("should tokenize a number starting with a dot", func(t *testing.T) {
		tokens := lex(t, ".5")
		if len(tokens) != 1 {
			t.Fatalf("Expected 1 token, got %d", len(tokens))
		}
		expectNumberToken(t, tokens[0], 0, 2, 0.5)
	})

	t.Run("should tokenize a single-quoted string", func(t *testing.T) {
		tokens := lex(t, "'foo'")
		if len(tokens) != 1 {
			t.Fatalf("Expected 1 token, got %d", len(tokens))
		}
		expectStringToken(t, tokens[0], 0, 5, "foo")
	})

	t.Run("should tokenize a double-quoted string with escapes", func(t *testing.T) {
		tokens := lex(t, `"a\"b\n"`)
		if len(tokens) != 1 {
			t.Fatalf("Expected 1 token, got %d", len(tokens))
		}
		expectStringToken(t, tokens[0], 0, 8, "a\"b\n")
	})

	t.Run("should tokenize unicode escapes", func(t *testing.T) {
		tokens := lex(t, `'\u00a0'`)
		if len(tokens) != 1 {
			t.Fatalf("Expected 1 token, got %d", len(tokens))
		}
		expectStringToken(t, tokens[0], 0, 8, "\u00a0")
	})

	t.Run("should tokenize relational operators", func(t *testing.T) {
		tokens := lex(t, "a <= b >= c")
		expectOperatorToken(t, tokens[1], 2, 4, "<=")
		expectOperatorToken(t, tokens[3], 7, 9, ">=")
	})

	t.Run("should tokenize statements", func(t *testing.T) {
		tokens := lex(t, "j + k")
		expectIdentifierToken(t, tokens[0], 0, 1, "j")
		expectOperatorToken(t, tokens[1], 2, 3, "+")
		expectIdentifierToken(t, tokens[2], 4, 5, "k")
	})

	t.Run("should tokenize a ternary", func(t *testing.T) {
		tokens := lex(t, "a ? b : c")
		if len(tokens) != 5 {
			t.Fatalf("Expected 5 tokens, got %d", len(tokens))
		}
		expectOperatorToken(t, tokens[1], 2, 3, "?")
		expectCharacterToken(t, tokens[3], 6, 7, ":")
	})

	t.Run("should tokenize optional chaining and nullish coalescing", func(t *testing.T) {
		tokens := lex(t, "a?.b ?? c")
		expectOperatorToken(t, tokens[1], 1, 3, "?.")
		expectOperatorToken(t, tokens[3], 5, 7, "??")
	})

	t.Run("should tokenize triple equals and exponentiation", func(t *testing.T) {
		tokens := lex(t, "a === b ** c")
		expectOperatorToken(t, tokens[1], 2, 5, "===")
		expectOperatorToken(t, tokens[3], 8, 10, "**")
	})

	t.Run("should tokenize logical operators", func(t *testing.T) {
		tokens := lex(t, "a && b || c")
		expectOperatorToken(t, tokens[1], 2, 4, "&&")
		expectOperatorToken(t, tokens[3], 7, 9, "||")
	})

	t.Run("should tokenize an object literal", func(t *testing.T) {
		tokens := lex(t, "{ foo: bar }")
		if len(tokens) != 5 {
			t.Fatalf("Expected 5 tokens, got %d", len(tokens))
		}
		expectCharacterToken(t, tokens[0], 0, 1, "{")
		expectIdentifierToken(t, tokens[1], 2, 5, "foo")
		expectCharacterToken(t, tokens[2], 5, 6, ":")
		expectIdentifierToken(t, tokens[3], 7, 10, "bar")
		expectCharacterToken(t, tokens[4], 11, 12, "}")
	})

	t.Run("should skip tabs and newlines", func(t *testing.T) {
		tokens := lex(t, "a\t+\nb")
		if len(tokens) != 3 {
			t.Fatalf("Expected 3 tokens, got %d", len(tokens))
		}
		expectIdentifierToken(t, tokens[0], 0, 1, "a")
		expectOperatorToken(t, tokens[1], 2, 3, "+")
		expectIdentifierToken(t, tokens[2], 4, 5, "b")
	})

	t.Run("should skip non-breaking spaces", func(t *testing.T) {
		tokens := lex(t, "a \xa0 b")
		if len(tokens) != 2 {
			t.Fatalf("Expected 2 tokens, got %d", len(tokens))
		}
		expectIdentifierToken(t, tokens[0], 0, 1, "a")
		expectIdentifierToken(t, tokens[1], 4, 5, "b")
	})

	t.Run("should return an empty token list for blank input", func(t *testing.T) {
		tokens := lex(t, "  \t ")
		if len(tokens) != 0 {
			t.Fatalf("Expected 0 tokens, got %d", len(tokens))
		}
	})

	t.Run("should fail on an unterminated string", func(t *testing.T) {
		expectScanError(t, "'unterminated", 13, "Unterminated quote")
	})

	t.Run("should fail on an invalid exponent", func(t *testing.T) {
		expectScanError(t, "3e-", 2, "Invalid exponent")
	})

	t.Run("should fail on a dangling numeric separator", func(t *testing.T) {
		expectScanError(t, "1_", 1, "Invalid numeric separator")
	})

	t.Run("should fail on an unexpected character", func(t *testing.T) {
		expectScanError(t, "a # b", 3, "Unexpected character [#]")
	})

	t.Run("should fail on a template literal", func(t *testing.T) {
		expectScanError(t, "`nope`", 1, "Unexpected character [`]")
	})
}
