package expression

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	tokEOF tokenType = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
	tokComma
)

type tokenType int

func (t tokenType) String() string {
	return []string{
		"end of expression", "number", "identifier", "'+'", "'-'", "'*'", "'/'", "'^'", "'('", "')'", "','",
	}[t]
}

type token struct {
	typ    tokenType
	text   string
	offset int
}

// tokenize breaks the expression text into tokens. The returned slice always ends with tokEOF.
func tokenize(src string) ([]token, error) {
	var tokens []token
	pos := 0
	for pos < len(src) {
		r, width := utf8.DecodeRuneInString(src[pos:])
		switch {
		case unicode.IsSpace(r):
			pos += width
			continue
		case isDigit(r) || (r == '.' && pos+1 < len(src) && isDigit(rune(src[pos+1]))):
			end := scanNumber(src, pos)
			tokens = append(tokens, token{typ: tokNumber, text: src[pos:end], offset: pos})
			pos = end
			continue
		case r == '_' || unicode.IsLetter(r):
			end := pos + width
			for end < len(src) {
				next, w := utf8.DecodeRuneInString(src[end:])
				if next != '_' && !unicode.IsLetter(next) && !isDigit(next) {
					break
				}
				end += w
			}
			tokens = append(tokens, token{typ: tokIdent, text: src[pos:end], offset: pos})
			pos = end
			continue
		}

		var typ tokenType
		switch r {
		case '+':
			typ = tokPlus
		case '-':
			typ = tokMinus
		case '*':
			typ = tokStar
			if pos+1 < len(src) && src[pos+1] == '*' {
				tokens = append(tokens, token{typ: tokCaret, text: "**", offset: pos})
				pos += 2
				continue
			}
		case '/':
			typ = tokSlash
		case '^':
			typ = tokCaret
		case '(':
			typ = tokLParen
		case ')':
			typ = tokRParen
		case ',':
			typ = tokComma
		default:
			return nil, &ParseError{Text: src, Offset: pos, Message: fmt.Sprintf("unexpected character %q", r)}
		}
		tokens = append(tokens, token{typ: typ, text: src[pos : pos+width], offset: pos})
		pos += width
	}
	return append(tokens, token{typ: tokEOF, offset: len(src)}), nil
}

// scanNumber returns the end offset of the decimal literal starting at pos. An exponent is only
// consumed when digits follow it, so "2e" lexes as the number 2 followed by the constant e.
func scanNumber(src string, pos int) int {
	end := pos
	for end < len(src) && isDigit(rune(src[end])) {
		end++
	}
	if end < len(src) && src[end] == '.' {
		end++
		for end < len(src) && isDigit(rune(src[end])) {
			end++
		}
	}
	if end < len(src) && (src[end] == 'e' || src[end] == 'E') {
		exp := end + 1
		if exp < len(src) && (src[exp] == '+' || src[exp] == '-') {
			exp++
		}
		if exp < len(src) && isDigit(rune(src[exp])) {
			end = exp
			for end < len(src) && isDigit(rune(src[end])) {
				end++
			}
		}
	}
	return end
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
