package covpt

// Expr AST

// Expr is a boolean formula over clauses. The variants are ExprLiteral,
// ExprNot, ExprAnd and ExprOr; nothing else implements it.
type Expr interface {
	isExpr()
	String() string
}

// ExprLiteral is a leaf holding one relational clause, verbatim from the source.
type ExprLiteral struct{ Clause string }

func (ExprLiteral) isExpr() {}

func (e ExprLiteral) String() string { return e.Clause }

type ExprNot struct{ X Expr }

func (ExprNot) isExpr() {}

func (e ExprNot) String() string { return "not (" + e.X.String() + ")" }

type ExprAnd struct{ A, B Expr }

func (ExprAnd) isExpr() {}

func (e ExprAnd) String() string { return "(" + e.A.String() + ") and (" + e.B.String() + ")" }

type ExprOr struct{ A, B Expr }

func (ExprOr) isExpr() {}

func (e ExprOr) String() string { return "(" + e.A.String() + ") or (" + e.B.String() + ")" }

// Atoms returns the clause of every leaf in left-to-right order. Repeated
// clause text is reported once per occurrence.
func Atoms(e Expr) []string {
	var out []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch e := e.(type) {
		case ExprLiteral:
			out = append(out, e.Clause)
		case ExprNot:
			walk(e.X)
		case ExprAnd:
			walk(e.A)
			walk(e.B)
		case ExprOr:
			walk(e.A)
			walk(e.B)
		}
	}
	walk(e)
	return out
}
