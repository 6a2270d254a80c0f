package covpt

import "strings"

// Parse builds the boolean expression tree of a coverage point.
func Parse(covpt string) (Expr, error) {
	toks, err := Lex(covpt)
	if err != nil {
		return nil, err
	}
	return Build(covpt, toks)
}

// ClauseDepths returns, for every relational marker in toks, the number of
// open parens still unmatched when the marker is reached.
func ClauseDepths(toks []Token) []int {
	depth := 0
	depths := make([]int, 0, len(toks)/4)
	for _, tok := range toks {
		switch tok.Kind {
		case TokLParen:
			depth++
		case TokRParen:
			depth--
		case TokRel:
			depths = append(depths, depth)
		}
	}
	return depths
}

// Build assembles the expression tree from the tokens of src.
//
// A paren belongs to a clause when it sits deeper than the depth recorded for
// that clause's relational marker; any other paren groups logic. Keywords bind
// not > and > or.
func Build(src string, toks []Token) (Expr, error) {
	if len(toks) == 0 {
		return nil, structError(src, 0, "empty coverpoint")
	}
	depths := ClauseDepths(toks)
	if len(depths) == 0 {
		// No relational marker to delimit anything: the whole text is one clause.
		return ExprLiteral{Clause: strings.TrimSpace(src[toks[0].Pos:toks[len(toks)-1].End])}, nil
	}
	b := builder{src: src, depths: depths}
	for _, tok := range toks {
		var err error
		switch tok.Kind {
		case TokLParen:
			err = b.openParen(tok)
		case TokRParen:
			err = b.closeParen(tok)
		case TokKeyword:
			err = b.keyword(tok)
		default:
			err = b.fragment(tok)
		}
		if err != nil {
			return nil, err
		}
	}
	return b.finish()
}

type opKind int

// Ordered by binding strength; opGroup is a paren marker, not a keyword.
const (
	opGroup opKind = iota
	opOr
	opAnd
	opNot
)

var opKinds = map[string]opKind{"or": opOr, "and": opAnd, "not": opNot}

type operator struct {
	kind opKind
	tok  Token
}

type builder struct {
	src     string
	depths  []int
	cursor  int // index into depths of the clause being accumulated
	depth   int
	ops     []operator
	results []Expr
	clause  []Token
}

func (b *builder) openParen(tok Token) error {
	b.depth++
	if b.cursor < len(b.depths) && b.depth > b.depths[b.cursor] {
		b.clause = append(b.clause, tok)
		return nil
	}
	if len(b.clause) > 0 {
		return structError(b.src, tok.Pos, "grouping paren inside clause %q", b.clauseText())
	}
	b.ops = append(b.ops, operator{kind: opGroup, tok: tok})
	return nil
}

func (b *builder) closeParen(tok Token) error {
	b.depth--
	if b.depth < 0 {
		return structError(b.src, tok.Pos, "unmatched ')'")
	}
	if len(b.clause) > 0 {
		if b.depth >= b.depths[b.cursor] {
			b.clause = append(b.clause, tok)
			return nil
		}
		if err := b.finishClause(); err != nil {
			return err
		}
	}
	return b.closeGroup(tok)
}

func (b *builder) keyword(tok Token) error {
	if len(b.clause) > 0 {
		if err := b.finishClause(); err != nil {
			return err
		}
	}
	kind := opKinds[tok.Text]
	for len(b.ops) > 0 {
		top := b.ops[len(b.ops)-1]
		if top.kind == opGroup || top.kind <= kind {
			break
		}
		b.ops = b.ops[:len(b.ops)-1]
		if err := b.apply(top); err != nil {
			return err
		}
	}
	b.ops = append(b.ops, operator{kind: kind, tok: tok})
	return nil
}

func (b *builder) fragment(tok Token) error {
	if b.cursor >= len(b.depths) {
		return structError(b.src, tok.Pos, "clause starting at %q has no relational marker", tok.Text)
	}
	b.clause = append(b.clause, tok)
	return nil
}

func (b *builder) finish() (Expr, error) {
	if len(b.clause) > 0 {
		if err := b.finishClause(); err != nil {
			return nil, err
		}
	}
	for len(b.ops) > 0 {
		op := b.ops[len(b.ops)-1]
		b.ops = b.ops[:len(b.ops)-1]
		if op.kind == opGroup {
			return nil, structError(b.src, op.tok.Pos, "unclosed '('")
		}
		if err := b.apply(op); err != nil {
			return nil, err
		}
	}
	switch len(b.results) {
	case 0:
		return nil, structError(b.src, 0, "no clause found")
	case 1:
		return b.results[0], nil
	default:
		return nil, structError(b.src, 0, "%d expressions without an operator between them", len(b.results))
	}
}

// finishClause turns the buffered tokens into a literal and moves the cursor
// past every relational marker the clause used.
func (b *builder) finishClause() error {
	first := b.clause[0]
	markers := 0
	for _, tok := range b.clause {
		if tok.Kind == TokRel {
			markers++
		}
	}
	if markers == 0 {
		return structError(b.src, first.Pos, "clause %q has no relational marker", b.clauseText())
	}
	b.results = append(b.results, ExprLiteral{Clause: b.clauseText()})
	b.clause = b.clause[:0]
	b.cursor += markers
	return nil
}

func (b *builder) clauseText() string {
	return b.src[b.clause[0].Pos:b.clause[len(b.clause)-1].End]
}

// closeGroup applies pending operators down to the nearest group marker and
// drops the marker.
func (b *builder) closeGroup(tok Token) error {
	for {
		if len(b.ops) == 0 {
			return structError(b.src, tok.Pos, "unmatched ')'")
		}
		op := b.ops[len(b.ops)-1]
		b.ops = b.ops[:len(b.ops)-1]
		if op.kind == opGroup {
			return nil
		}
		if err := b.apply(op); err != nil {
			return err
		}
	}
}

func (b *builder) apply(op operator) error {
	if op.kind == opNot {
		if len(b.results) < 1 {
			return structError(b.src, op.tok.Pos, "'not' has no operand")
		}
		x := b.results[len(b.results)-1]
		b.results[len(b.results)-1] = ExprNot{X: x}
		return nil
	}
	if len(b.results) < 2 {
		return structError(b.src, op.tok.Pos, "%q needs two operands", op.tok.Text)
	}
	rhs := b.results[len(b.results)-1]
	lhs := b.results[len(b.results)-2]
	b.results = b.results[:len(b.results)-2]
	if op.kind == opAnd {
		b.results = append(b.results, ExprAnd{A: lhs, B: rhs})
	} else {
		b.results = append(b.results, ExprOr{A: lhs, B: rhs})
	}
	return nil
}
