// Package expression analyzes template expressions: a scanner for the
// JavaScript expression subset allowed in templates, dependency extraction
// and contextualization against a block's loop context.
package expression

import (
	"fmt"
	"strconv"
	"strings"

	"weftc-go/packages/compiler/src/core"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenTypeCharacter TokenType = iota
	TokenTypeIdentifier
	TokenTypeKeyword
	TokenTypeString
	TokenTypeOperator
	TokenTypeNumber
)

var keywords = []string{
	"var",
	"let",
	"as",
	"null",
	"undefined",
	"true",
	"false",
	"if",
	"else",
	"this",
	"typeof",
	"void",
	"in",
}

// Token represents a token in the expression. Index and End are byte offsets
// into the scanned text so callers can splice rewritten source around it.
type Token struct {
	Index    int
	End      int
	Type     TokenType
	NumValue float64
	StrValue string
}

// IsCharacter checks if the token is a character with the given code
func (t Token) IsCharacter(code int) bool {
	return t.Type == TokenTypeCharacter && int(t.NumValue) == code
}

// IsNumber checks if the token is a number
func (t Token) IsNumber() bool {
	return t.Type == TokenTypeNumber
}

// IsString checks if the token is a string
func (t Token) IsString() bool {
	return t.Type == TokenTypeString
}

// IsOperator checks if the token is an operator with the given value
func (t Token) IsOperator(operator string) bool {
	return t.Type == TokenTypeOperator && t.StrValue == operator
}

// IsIdentifier checks if the token is an identifier
func (t Token) IsIdentifier() bool {
	return t.Type == TokenTypeIdentifier
}

// IsKeyword checks if the token is a keyword
func (t Token) IsKeyword() bool {
	return t.Type == TokenTypeKeyword
}

// ToNumber converts the token to a number
func (t Token) ToNumber() float64 {
	if t.Type == TokenTypeNumber {
		return t.NumValue
	}
	return -1
}

// String returns the string representation of the token
func (t Token) String() string {
	if t.Type == TokenTypeNumber {
		return strconv.FormatFloat(t.NumValue, 'f', -1, 64)
	}
	return t.StrValue
}

// ScanError reports a malformed expression. It is propagated unchanged by
// Dependencies and Contextualize.
type ScanError struct {
	Pos        int
	Msg        string
	Expression string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan error: %s at column %d in expression [%s]", e.Msg, e.Pos, e.Expression)
}

// Tokenize scans a template expression into tokens.
func Tokenize(text string) ([]Token, error) {
	s := newScanner(text)
	return s.scan()
}

type scanner struct {
	input  string
	length int
	peek   rune
	index  int
	tokens []Token
}

func newScanner(input string) *scanner {
	s := &scanner{
		input:  input,
		length: len(input),
		index:  -1,
	}
	s.advance()
	return s
}

func (s *scanner) advance() {
	s.index++
	if s.index >= s.length {
		s.peek = core.CharEOF
	} else {
		s.peek = rune(s.input[s.index])
	}
}

func (s *scanner) scan() ([]Token, error) {
	for {
		token, err := s.scanToken()
		if err != nil {
			return nil, err
		}
		if token == nil {
			return s.tokens, nil
		}
		s.tokens = append(s.tokens, *token)
	}
}

func (s *scanner) scanToken() (*Token, error) {
	input := s.input
	length := s.length
	peek := s.peek
	index := s.index

	// Skip whitespace
	for int(peek) <= core.CharSPACE {
		index++
		if index >= length {
			peek = core.CharEOF
			break
		}
		peek = rune(input[index])
	}

	s.peek = peek
	s.index = index

	if index >= length {
		return nil, nil
	}

	if isIdentifierStart(peek) {
		return s.scanIdentifier(), nil
	}

	if core.IsDigit(int(peek)) {
		return s.scanNumber(index)
	}

	start := index
	switch int(peek) {
	case core.CharPERIOD:
		s.advance()
		if core.IsDigit(int(s.peek)) {
			return s.scanNumber(start)
		}
		return newCharacterToken(start, s.index, core.CharPERIOD), nil
	case core.CharLPAREN, core.CharRPAREN, core.CharLBRACKET, core.CharRBRACKET,
		core.CharLBRACE, core.CharRBRACE, core.CharCOMMA, core.CharCOLON, core.CharSEMICOLON:
		return s.scanCharacter(start, peek), nil
	case core.CharSQ, core.CharDQ:
		return s.scanString()
	case core.CharPLUS:
		return s.scanComplexOperator(start, "+", core.CharEQ, "="), nil
	case core.CharMINUS:
		return s.scanComplexOperator(start, "-", core.CharEQ, "="), nil
	case core.CharSLASH:
		return s.scanComplexOperator(start, "/", core.CharEQ, "="), nil
	case core.CharPERCENT:
		return s.scanComplexOperator(start, "%", core.CharEQ, "="), nil
	case core.CharCARET:
		return s.scanOperator(start, "^"), nil
	case core.CharSTAR:
		return s.scanStar(start), nil
	case core.CharQUESTION:
		return s.scanQuestion(start), nil
	case core.CharLT, core.CharGT:
		return s.scanComplexOperator(start, string(peek), core.CharEQ, "="), nil
	case core.CharBANG, core.CharEQ:
		return s.scanComplexOperator(start, string(peek), core.CharEQ, "=", core.CharEQ), nil
	case core.CharAMPERSAND:
		return s.scanComplexOperator(start, "&", core.CharAMPERSAND, "&", core.CharEQ), nil
	case core.CharBAR:
		return s.scanComplexOperator(start, "|", core.CharBAR, "|", core.CharEQ), nil
	case core.CharNBSP:
		for core.IsWhitespace(int(s.peek)) {
			s.advance()
		}
		return s.scanToken()
	}

	s.advance()
	return nil, s.error("Unexpected character ["+string(peek)+"]", 0)
}

func (s *scanner) scanCharacter(start int, code rune) *Token {
	s.advance()
	return newCharacterToken(start, s.index, code)
}

func (s *scanner) scanOperator(start int, str string) *Token {
	s.advance()
	return newOperatorToken(start, s.index, str)
}

func (s *scanner) scanComplexOperator(start int, one string, twoCode int, two string, threeCode ...int) *Token {
	s.advance()
	str := one
	if int(s.peek) == twoCode {
		s.advance()
		str += two
	}
	if len(threeCode) > 0 && int(s.peek) == threeCode[0] {
		s.advance()
		str += string(rune(threeCode[0]))
	}
	return newOperatorToken(start, s.index, str)
}

func (s *scanner) scanIdentifier() *Token {
	start := s.index
	s.advance()
	for isIdentifierPart(s.peek) {
		s.advance()
	}
	str := s.input[start:s.index]
	for _, keyword := range keywords {
		if str == keyword {
			return newKeywordToken(start, s.index, str)
		}
	}
	return newIdentifierToken(start, s.index, str)
}

func (s *scanner) scanNumber(start int) (*Token, error) {
	simple := s.index == start
	hasSeparators := false
	s.advance() // Skip initial digit
	for {
		if core.IsDigit(int(s.peek)) {
			// Do nothing
		} else if s.peek == core.CharUnderscore {
			// Separators are only valid when they're surrounded by digits
			if s.index == 0 || s.index >= s.length-1 ||
				!core.IsDigit(int(rune(s.input[s.index-1]))) || !core.IsDigit(int(rune(s.input[s.index+1]))) {
				return nil, s.error("Invalid numeric separator", 0)
			}
			hasSeparators = true
		} else if s.peek == core.CharPERIOD {
			simple = false
		} else if isExponentStart(s.peek) {
			s.advance()
			if isExponentSign(s.peek) {
				s.advance()
			}
			if !core.IsDigit(int(s.peek)) {
				return nil, s.error("Invalid exponent", -1)
			}
			simple = false
		} else {
			break
		}
		s.advance()
	}

	str := s.input[start:s.index]
	if hasSeparators {
		str = strings.ReplaceAll(str, "_", "")
	}
	var value float64
	if simple {
		val, err := strconv.ParseInt(str, 0, 64)
		if err == nil {
			value = float64(val)
		}
	} else {
		val, err := strconv.ParseFloat(str, 64)
		if err == nil {
			value = val
		}
	}
	return newNumberToken(start, s.index, value), nil
}

func (s *scanner) scanString() (*Token, error) {
	start := s.index
	quote := s.peek
	s.advance() // Skip initial quote

	buffer := ""
	marker := s.index

	for s.peek != quote {
		if s.peek == core.CharBACKSLASH {
			unescaped, err := s.scanStringBackslash(buffer, marker)
			if err != nil {
				return nil, err
			}
			buffer = unescaped
			marker = s.index
		} else if s.peek == core.CharEOF {
			return nil, s.error("Unterminated quote", 0)
		} else {
			s.advance()
		}
	}

	last := s.input[marker:s.index]
	s.advance() // Skip terminating quote

	return newStringToken(start, s.index, buffer+last), nil
}

func (s *scanner) scanStringBackslash(buffer string, marker int) (string, error) {
	buffer += s.input[marker:s.index]
	var unescapedCode rune
	s.advance()
	if s.peek == core.CharLowerU {
		// 4 character hex code for unicode character
		if s.index+5 > s.length {
			return "", s.error("Invalid unicode escape", 0)
		}
		hex := s.input[s.index+1 : s.index+5]
		val, err := strconv.ParseInt(hex, 16, 32)
		if err != nil {
			return "", s.error("Invalid unicode escape [\\u"+hex+"]", 0)
		}
		unescapedCode = rune(val)
		for i := 0; i < 5; i++ {
			s.advance()
		}
	} else {
		unescapedCode = unescape(s.peek)
		s.advance()
	}
	return buffer + string(unescapedCode), nil
}

func (s *scanner) scanQuestion(start int) *Token {
	s.advance()
	operator := "?"
	// `a ?? b` or `a ??= b`
	if s.peek == core.CharQUESTION {
		operator += "?"
		s.advance()
		if s.peek == core.CharEQ {
			operator += "="
			s.advance()
		}
	} else if s.peek == core.CharPERIOD {
		// `a?.b`
		operator += "."
		s.advance()
	}
	return newOperatorToken(start, s.index, operator)
}

func (s *scanner) scanStar(start int) *Token {
	s.advance()
	operator := "*"
	// `*`, `**`, `**=` or `*=`
	if s.peek == core.CharSTAR {
		operator += "*"
		s.advance()
		if s.peek == core.CharEQ {
			operator += "="
			s.advance()
		}
	} else if s.peek == core.CharEQ {
		operator += "="
		s.advance()
	}
	return newOperatorToken(start, s.index, operator)
}

func (s *scanner) error(message string, offset int) error {
	return &ScanError{
		Pos:        s.index + offset,
		Msg:        message,
		Expression: s.input,
	}
}

func isIdentifierStart(code rune) bool {
	return (core.CharA <= code && code <= core.CharZ) ||
		(core.CharLowerA <= code && code <= core.CharLowerZ) ||
		code == core.CharUnderscore ||
		code == core.CharDollar
}

func isIdentifierPart(code rune) bool {
	return core.IsAsciiLetter(int(code)) || core.IsDigit(int(code)) || code == core.CharUnderscore || code == core.CharDollar
}

func isExponentStart(code rune) bool {
	return code == core.CharE || code == core.CharLowerE
}

func isExponentSign(code rune) bool {
	return code == core.CharMINUS || code == core.CharPLUS
}

func unescape(code rune) rune {
	switch code {
	case core.CharLowerN:
		return core.CharLF
	case core.CharLowerF:
		return core.CharFF
	case core.CharLowerR:
		return core.CharCR
	case core.CharLowerT:
		return core.CharTAB
	case core.CharLowerV:
		return core.CharVTAB
	default:
		return code
	}
}

// Helper functions to create tokens
func newCharacterToken(index, end int, code rune) *Token {
	return &Token{Index: index, End: end, Type: TokenTypeCharacter, NumValue: float64(code), StrValue: string(code)}
}

func newIdentifierToken(index, end int, text string) *Token {
	return &Token{Index: index, End: end, Type: TokenTypeIdentifier, StrValue: text}
}

func newKeywordToken(index, end int, text string) *Token {
	return &Token{Index: index, End: end, Type: TokenTypeKeyword, StrValue: text}
}

func newOperatorToken(index, end int, text string) *Token {
	return &Token{Index: index, End: end, Type: TokenTypeOperator, StrValue: text}
}

func newNumberToken(index, end int, n float64) *Token {
	return &Token{Index: index, End: end, Type: TokenTypeNumber, NumValue: n}
}

func newStringToken(index, end int, text string) *Token {
	return &Token{Index: index, End: end, Type: TokenTypeString, StrValue: text}
}
