package filter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/quillsearch/quill/internal/domain"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenString
	tokenNumber
	tokenOp      // = != > >= < <=
	tokenLParen  // (
	tokenRParen  // )
	tokenLBrack  // [
	tokenRBrack  // ]
	tokenComma   // ,
	tokenKeyword // AND OR NOT IN (case-insensitive)
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

// lex splits a filter expression into tokens. Strings may be single or
// double quoted. Keywords are matched case-insensitively.
func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '(':
			tokens = append(tokens, token{tokenLParen, "(", i})
			i++
		case r == ')':
			tokens = append(tokens, token{tokenRParen, ")", i})
			i++
		case r == '[':
			tokens = append(tokens, token{tokenLBrack, "[", i})
			i++
		case r == ']':
			tokens = append(tokens, token{tokenRBrack, "]", i})
			i++
		case r == ',':
			tokens = append(tokens, token{tokenComma, ",", i})
			i++
		case r == '=':
			tokens = append(tokens, token{tokenOp, "=", i})
			i++
		case r == '!':
			if !strings.HasPrefix(input[i:], "!=") {
				return nil, domain.NewFilterParseError(i, "expected != after !")
			}
			tokens = append(tokens, token{tokenOp, "!=", i})
			i += 2
		case r == '>' || r == '<':
			op := string(r)
			if strings.HasPrefix(input[i+1:], "=") {
				op += "="
			}
			tokens = append(tokens, token{tokenOp, op, i})
			i += len(op)
		case r == '\'' || r == '"':
			text, next, err := lexString(input, i, byte(r))
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{tokenString, text, i})
			i = next
		case isWordRune(r):
			start := i
			for i < len(input) {
				wr, wsize := utf8.DecodeRuneInString(input[i:])
				if !isWordRune(wr) {
					break
				}
				i += wsize
			}
			word := input[start:i]
			kind := tokenIdent
			switch strings.ToUpper(word) {
			case "AND", "OR", "NOT", "IN":
				kind = tokenKeyword
				word = strings.ToUpper(word)
			default:
				if isNumber(word) {
					kind = tokenNumber
				}
			}
			tokens = append(tokens, token{kind, word, start})
		default:
			return nil, domain.NewFilterParseError(i, "unexpected character %q", r)
		}
	}
	tokens = append(tokens, token{tokenEOF, "", len(input)})
	return tokens, nil
}

func lexString(input string, start int, quote byte) (string, int, error) {
	var b strings.Builder
	i := start + 1
	for i < len(input) {
		c := input[i]
		switch c {
		case quote:
			return b.String(), i + 1, nil
		case '\\':
			if i+1 >= len(input) {
				return "", 0, domain.NewFilterParseError(i, "dangling escape")
			}
			b.WriteByte(input[i+1])
			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, domain.NewFilterParseError(start, "unterminated string")
}

// isWordRune reports whether r can appear in a bare word (attribute names,
// unquoted values, numbers).
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		r == '_' || r == '-' || r == '.' || r == '+'
}

func isNumber(word string) bool {
	dot := false
	for i, c := range word {
		switch {
		case c >= '0' && c <= '9':
		case (c == '-' || c == '+') && i == 0:
		case c == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return word != "" && word != "-" && word != "+" && word != "."
}
