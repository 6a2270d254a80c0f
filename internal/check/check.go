package check

// Strict consistency checking for enumerated models.
//
// The enumerator treats every clause occurrence as its own atom. Checker
// instead gives identical clause text one SAT variable, encodes the formula
// as a gini circuit, and asks whether a model can hold together with the
// formula under that unification.

import (
	"errors"
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/pborges/csrcomb/internal/covpt"
)

var (
	ErrUnknownClause = errors.New("clause not in formula")
	ErrUnsatisfiable = errors.New("formula is unsatisfiable with equal clauses unified")
)

// Checker answers consistency queries for one formula.
type Checker struct {
	c    *logic.C
	g    *gini.Gini
	vars map[string]z.Lit // clause text → variable
	root z.Lit
}

// New encodes e. Identical clause text shares a variable.
func New(e covpt.Expr) *Checker {
	ch := &Checker{
		c:    logic.NewC(),
		vars: make(map[string]z.Lit),
	}
	ch.root = ch.build(e)
	ch.g = gini.New()
	ch.c.ToCnf(ch.g)
	return ch
}

func (ch *Checker) build(e covpt.Expr) z.Lit {
	switch e := e.(type) {
	case covpt.ExprLiteral:
		if lit, ok := ch.vars[e.Clause]; ok {
			return lit
		}
		lit := ch.c.Lit()
		ch.vars[e.Clause] = lit
		return lit
	case covpt.ExprNot:
		return ch.build(e.X).Not()
	case covpt.ExprAnd:
		return ch.c.And(ch.build(e.A), ch.build(e.B))
	case covpt.ExprOr:
		return ch.c.Or(ch.build(e.A), ch.build(e.B))
	default:
		panic(fmt.Sprintf("check: unknown expression %T", e))
	}
}

// Satisfiable reports whether the formula can hold at all once repeated
// clauses are unified.
func (ch *Checker) Satisfiable() bool {
	ch.g.Assume(ch.root)
	return ch.g.Solve() == 1
}

// Consistent reports whether every clause of m can take its assigned value
// while the formula holds. A model naming the same clause as both true and
// false is never consistent.
func (ch *Checker) Consistent(m covpt.Model) (bool, error) {
	assumptions := make([]z.Lit, 0, 1+len(m.True)+len(m.False))
	assumptions = append(assumptions, ch.root)
	for _, c := range m.True {
		lit, ok := ch.vars[c]
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrUnknownClause, c)
		}
		assumptions = append(assumptions, lit)
	}
	for _, c := range m.False {
		lit, ok := ch.vars[c]
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrUnknownClause, c)
		}
		assumptions = append(assumptions, lit.Not())
	}
	ch.g.Assume(assumptions...)
	return ch.g.Solve() == 1, nil
}

// Filter splits models into the consistent ones, in order, and the indices of
// the rest.
func (ch *Checker) Filter(models []covpt.Model) (kept []covpt.Model, dropped []int, err error) {
	for i, m := range models {
		ok, err := ch.Consistent(m)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			kept = append(kept, m)
		} else {
			dropped = append(dropped, i)
		}
	}
	return kept, dropped, nil
}
