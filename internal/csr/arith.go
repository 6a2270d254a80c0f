package csr

import (
	"fmt"
	"strconv"

	"github.com/pborges/csrcomb/internal/covpt"
)

// Mask and value text is integer arithmetic with the usual operator table:
//
//	|  ^  &  << >>  + -  * // %  unary - + ~  **
//
// from loosest to tightest, ** grouping to the right. translate rewrites it
// into an expr-lang program, turning the bit operators into bitor, bitxor,
// bitand, bitshl, bitshr and bitnot calls.

var binaryPower = map[string]int{
	"|":  1,
	"^":  2,
	"&":  3,
	"<<": 4, ">>": 4,
	"+": 5, "-": 5,
	"*": 6, "//": 6, "%": 6,
}

var bitFuncs = map[string]string{
	"|":  "bitor",
	"^":  "bitxor",
	"&":  "bitand",
	"<<": "bitshl",
	">>": "bitshr",
}

func translate(src string) (string, error) {
	toks, err := covpt.Lex(src)
	if err != nil {
		return "", err
	}
	if len(toks) == 0 {
		return "", fmt.Errorf("empty expression")
	}
	t := translator{toks: toks}
	out, err := t.expr(1)
	if err != nil {
		return "", err
	}
	if tok, ok := t.peek(); ok {
		return "", fmt.Errorf("unexpected %q at offset %d", tok.Text, tok.Pos)
	}
	return out, nil
}

type translator struct {
	toks []covpt.Token
	i    int
}

func (t *translator) peek() (covpt.Token, bool) {
	if t.i >= len(t.toks) {
		return covpt.Token{}, false
	}
	return t.toks[t.i], true
}

func (t *translator) next() (covpt.Token, error) {
	tok, ok := t.peek()
	if !ok {
		return tok, fmt.Errorf("unexpected end of expression")
	}
	t.i++
	return tok, nil
}

func (t *translator) expect(text string) error {
	tok, err := t.next()
	if err != nil {
		return err
	}
	if tok.Text != text {
		return fmt.Errorf("expected %q at offset %d, found %q", text, tok.Pos, tok.Text)
	}
	return nil
}

// expr parses binary operators binding at least as tightly as min.
func (t *translator) expr(min int) (string, error) {
	lhs, err := t.unary()
	if err != nil {
		return "", err
	}
	for {
		tok, ok := t.peek()
		if !ok || tok.Kind != covpt.TokFragment {
			return lhs, nil
		}
		if tok.Text == "/" {
			return "", fmt.Errorf("'/' at offset %d yields a fraction; use '//'", tok.Pos)
		}
		power, ok := binaryPower[tok.Text]
		if !ok || power < min {
			return lhs, nil
		}
		t.i++
		rhs, err := t.expr(power + 1)
		if err != nil {
			return "", err
		}
		lhs = binary(tok.Text, lhs, rhs)
	}
}

func binary(op, a, b string) string {
	if fn, ok := bitFuncs[op]; ok {
		return fn + "(" + a + ", " + b + ")"
	}
	if op == "//" {
		return "int(floor(" + a + " / " + b + "))"
	}
	return "(" + a + " " + op + " " + b + ")"
}

func (t *translator) unary() (string, error) {
	tok, ok := t.peek()
	if ok && tok.Kind == covpt.TokFragment {
		switch tok.Text {
		case "-", "+", "~":
			t.i++
			x, err := t.unary()
			if err != nil {
				return "", err
			}
			switch tok.Text {
			case "-":
				return "(-" + x + ")", nil
			case "~":
				return "bitnot(" + x + ")", nil
			}
			return x, nil
		}
	}
	return t.power()
}

// power binds tighter than a unary operator on its left but takes one on its
// right, so -2 ** 2 is -(2 ** 2) and 2 ** -1 is valid.
func (t *translator) power() (string, error) {
	base, err := t.primary()
	if err != nil {
		return "", err
	}
	if tok, ok := t.peek(); ok && tok.Text == "**" {
		t.i++
		exp, err := t.unary()
		if err != nil {
			return "", err
		}
		return "int(" + base + " ** " + exp + ")", nil
	}
	return base, nil
}

func (t *translator) primary() (string, error) {
	tok, err := t.next()
	if err != nil {
		return "", err
	}
	switch {
	case tok.Kind == covpt.TokLParen:
		x, err := t.expr(1)
		if err != nil {
			return "", err
		}
		if err := t.expect(")"); err != nil {
			return "", err
		}
		return "(" + x + ")", nil
	case tok.Kind != covpt.TokFragment:
		return "", fmt.Errorf("unexpected %q at offset %d", tok.Text, tok.Pos)
	case isDigit(tok.Text[0]):
		n, err := strconv.ParseInt(tok.Text, 0, 64)
		if err != nil {
			return "", fmt.Errorf("bad number %q: %w", tok.Text, err)
		}
		return strconv.FormatInt(n, 10), nil
	case isIdent(tok.Text):
		if next, ok := t.peek(); ok && next.Kind == covpt.TokLParen {
			t.i++
			return t.call(tok.Text)
		}
		return tok.Text, nil
	}
	return "", fmt.Errorf("unexpected %q at offset %d", tok.Text, tok.Pos)
}

// call copies a function call through, translating each argument.
func (t *translator) call(name string) (string, error) {
	out := name + "("
	if tok, ok := t.peek(); ok && tok.Kind == covpt.TokRParen {
		t.i++
		return out + ")", nil
	}
	for n := 0; ; n++ {
		arg, err := t.expr(1)
		if err != nil {
			return "", err
		}
		if n > 0 {
			out += ", "
		}
		out += arg
		tok, err := t.next()
		if err != nil {
			return "", err
		}
		switch {
		case tok.Kind == covpt.TokRParen:
			return out + ")", nil
		case tok.Text != ",":
			return "", fmt.Errorf("expected ',' or ')' at offset %d, found %q", tok.Pos, tok.Text)
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdent(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if !(b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (i > 0 && isDigit(b))) {
			return false
		}
	}
	return s != ""
}
