package covpt

import (
	"fmt"
	"strings"
	"unicode"
)

type TokenKind int

const (
	TokLParen TokenKind = iota
	TokRParen
	TokKeyword
	TokRel
	TokFragment
)

var tokenKinds = [...]string{
	TokLParen:   "lparen",
	TokRParen:   "rparen",
	TokKeyword:  "keyword",
	TokRel:      "rel",
	TokFragment: "fragment",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenKinds) {
		return tokenKinds[k]
	}
	return fmt.Sprintf("TokenKind<%d>", int(k))
}

// Token is one lexeme of a coverage point. Pos and End are byte offsets into
// the source, so src[Pos:End] == Text.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
	End  int
}

var keywords = map[string]bool{"not": true, "and": true, "or": true}

// Two-byte operators are tried before single bytes.
var operators2 = []string{"**", "//", "<<", ">>", "<=", ">=", "==", "!="}

const operators1 = "+-*/%&|^~<>,.[]{}:@"

// Lex splits a coverage point into tokens. Whitespace and line terminators are
// dropped.
func Lex(src string) ([]Token, error) {
	l := lexer{s: src}
	var toks []Token
	for {
		tok, ok, err := l.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

type lexer struct {
	s string
	i int
}

func (l *lexer) next() (Token, bool, error) {
	for l.i < len(l.s) {
		if unicode.IsSpace(rune(l.s[l.i])) {
			l.i++
			continue
		}
		// line continuation
		if l.s[l.i] == '\\' && l.i+1 < len(l.s) && l.s[l.i+1] == '\n' {
			l.i += 2
			continue
		}
		break
	}
	if l.i >= len(l.s) {
		return Token{}, false, nil
	}
	start := l.i
	ch := l.s[l.i]
	switch {
	case ch == '(':
		l.i++
		return l.emit(TokLParen, start), true, nil
	case ch == ')':
		l.i++
		return l.emit(TokRParen, start), true, nil
	case isIdentStart(ch):
		l.i++
		for l.i < len(l.s) && isIdentPart(l.s[l.i]) {
			l.i++
		}
		if keywords[l.s[start:l.i]] {
			return l.emit(TokKeyword, start), true, nil
		}
		return l.emit(TokFragment, start), true, nil
	case isDigit(ch):
		l.i++
		for l.i < len(l.s) && (isIdentPart(l.s[l.i]) || l.s[l.i] == '.') {
			l.i++
		}
		return l.emit(TokFragment, start), true, nil
	case ch == '\'' || ch == '"':
		end := strings.IndexByte(l.s[l.i+1:], ch)
		if end < 0 {
			return Token{}, false, lexError(l.s, start, "unterminated string")
		}
		l.i += end + 2
		return l.emit(TokFragment, start), true, nil
	}
	for _, op := range operators2 {
		if strings.HasPrefix(l.s[l.i:], op) {
			l.i += len(op)
			if op == "==" {
				return l.emit(TokRel, start), true, nil
			}
			return l.emit(TokFragment, start), true, nil
		}
	}
	if strings.IndexByte(operators1, ch) >= 0 {
		l.i++
		return l.emit(TokFragment, start), true, nil
	}
	return Token{}, false, lexError(l.s, start, fmt.Sprintf("unexpected character %q", ch))
}

func (l *lexer) emit(kind TokenKind, start int) Token {
	return Token{Kind: kind, Text: l.s[start:l.i], Pos: start, End: l.i}
}

func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
