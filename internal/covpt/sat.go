package covpt

import (
	"fmt"
	"math/bits"
)

// DefaultModelLimit bounds Enumerate when the caller passes a zero limit.
const DefaultModelLimit = 4096

// Model is one satisfying assignment: every clause in True must hold and every
// clause in False must not.
type Model struct {
	True  []string
	False []string
}

// SAT returns every model of e.
//
//	literal a   [([a], [])]
//	not X       each model of X with True and False swapped
//	A and B     the product of the models of A and B
//	A or B      for each pair: (A true, B false), (A false, B true), (both true)
//
// Clauses are never unified, so the same text at two positions is two atoms.
// The result size is ModelCount(e); use Enumerate to bound it.
func SAT(e Expr) []Model {
	switch e := e.(type) {
	case ExprLiteral:
		return []Model{{True: []string{e.Clause}, False: []string{}}}
	case ExprNot:
		xs := SAT(e.X)
		out := make([]Model, len(xs))
		for i, m := range xs {
			out[i] = Model{True: m.False, False: m.True}
		}
		return out
	case ExprAnd:
		as, bs := SAT(e.A), SAT(e.B)
		out := make([]Model, 0, len(as)*len(bs))
		for _, a := range as {
			for _, b := range bs {
				out = append(out, Model{True: concat(a.True, b.True), False: concat(a.False, b.False)})
			}
		}
		return out
	case ExprOr:
		as, bs := SAT(e.A), SAT(e.B)
		out := make([]Model, 0, 3*len(as)*len(bs))
		for _, a := range as {
			for _, b := range bs {
				out = append(out,
					Model{True: concat(a.True, b.False), False: concat(a.False, b.True)},
					Model{True: concat(a.False, b.True), False: concat(a.True, b.False)},
					Model{True: concat(a.True, b.True), False: concat(a.False, b.False)},
				)
			}
		}
		return out
	default:
		panic(fmt.Sprintf("covpt: unknown expression %T", e))
	}
}

// ModelCount returns len(SAT(e)) without enumerating. ok is false when the
// count does not fit in a uint64.
func ModelCount(e Expr) (n uint64, ok bool) {
	switch e := e.(type) {
	case ExprLiteral:
		return 1, true
	case ExprNot:
		return ModelCount(e.X)
	case ExprAnd:
		return productCount(e.A, e.B, 1)
	case ExprOr:
		return productCount(e.A, e.B, 3)
	default:
		panic(fmt.Sprintf("covpt: unknown expression %T", e))
	}
}

func productCount(a, b Expr, factor uint64) (uint64, bool) {
	na, ok := ModelCount(a)
	if !ok {
		return 0, false
	}
	nb, ok := ModelCount(b)
	if !ok {
		return 0, false
	}
	hi, n := bits.Mul64(na, nb)
	if hi != 0 {
		return 0, false
	}
	hi, n = bits.Mul64(n, factor)
	if hi != 0 {
		return 0, false
	}
	return n, true
}

// Enumerate is SAT with a bound on the number of models. A zero limit means
// DefaultModelLimit and a negative limit disables the check. The count is
// computed first, so an oversized formula fails before anything is allocated.
func Enumerate(e Expr, limit int) ([]Model, error) {
	if limit == 0 {
		limit = DefaultModelLimit
	}
	if limit > 0 {
		n, ok := ModelCount(e)
		if !ok {
			return nil, fmt.Errorf("%w: model count overflows for %s", ErrTooManyModels, e)
		}
		if n > uint64(limit) {
			return nil, fmt.Errorf("%w: %d models exceed limit %d", ErrTooManyModels, n, limit)
		}
	}
	return SAT(e), nil
}

// concat always allocates, so models never share backing arrays.
func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
