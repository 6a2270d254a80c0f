package covpt

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, src string) Expr {
	t.Helper()
	e, err := Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return e
}

func TestSAT_Scenarios(t *testing.T) {
	const (
		ms  = "mstatus & 0x8 == 0x8"
		mie = "mie & 0x2 == 0x2"
	)
	cases := []struct {
		name string
		src  string
		want []Model
	}{
		{
			name: "Literal",
			src:  ms,
			want: []Model{{True: []string{ms}, False: []string{}}},
		},
		{
			name: "Not",
			src:  "not (" + ms + ")",
			want: []Model{{True: []string{}, False: []string{ms}}},
		},
		{
			name: "And",
			src:  "(" + ms + ") and (" + mie + ")",
			want: []Model{{True: []string{ms, mie}, False: []string{}}},
		},
		{
			name: "Or",
			src:  "(" + ms + ") or (" + mie + ")",
			want: []Model{
				{True: []string{ms}, False: []string{mie}},
				{True: []string{mie}, False: []string{ms}},
				{True: []string{ms, mie}, False: []string{}},
			},
		},
		{
			name: "AndUnderOr",
			src:  "(A==1 and B==2) or C==3",
			want: []Model{
				{True: []string{"A==1", "B==2"}, False: []string{"C==3"}},
				{True: []string{"C==3"}, False: []string{"A==1", "B==2"}},
				{True: []string{"A==1", "B==2", "C==3"}, False: []string{}},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SAT(mustParse(t, tc.src))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("models mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

var propertyExprs = []string{
	"A==1",
	"not A==1",
	"A==1 and B==2",
	"A==1 or B==2",
	"not (A==1 or B==2) and C==3",
	"(A==1 or B==2) and (C==3 or not D==4)",
	"A==1 or B==2 or C==3",
	"not (A==1 and (B==2 or C==3)) or D==4",
}

func modelKey(m Model) string {
	return strings.Join(m.True, ",") + "|" + strings.Join(m.False, ",")
}

func sortedKeys(ms []Model) []string {
	keys := make([]string, len(ms))
	for i, m := range ms {
		keys[i] = modelKey(m)
	}
	sort.Strings(keys)
	return keys
}

func TestSAT_Not(t *testing.T) {
	for _, src := range propertyExprs {
		t.Run(src, func(t *testing.T) {
			e := mustParse(t, src)
			ms := SAT(e)
			neg := SAT(ExprNot{X: e})
			if len(neg) != len(ms) {
				t.Fatalf("got %d models, want %d", len(neg), len(ms))
			}
			for i := range neg {
				swapped := Model{True: neg[i].False, False: neg[i].True}
				if diff := cmp.Diff(ms[i], swapped); diff != "" {
					t.Fatalf("model %d not a swap (-want +got):\n%s", i, diff)
				}
			}
			twice := SAT(ExprNot{X: ExprNot{X: e}})
			if diff := cmp.Diff(sortedKeys(ms), sortedKeys(twice)); diff != "" {
				t.Fatalf("double negation changed models (-want +got):\n%s", diff)
			}
		})
	}
}

// prefixed renames every clause so two operands never share atom text.
func prefixed(e Expr, p string) Expr {
	switch e := e.(type) {
	case ExprLiteral:
		return ExprLiteral{Clause: p + e.Clause}
	case ExprNot:
		return ExprNot{X: prefixed(e.X, p)}
	case ExprAnd:
		return ExprAnd{A: prefixed(e.A, p), B: prefixed(e.B, p)}
	case ExprOr:
		return ExprOr{A: prefixed(e.A, p), B: prefixed(e.B, p)}
	}
	return e
}

func truthOf(m Model) map[string]bool {
	truth := make(map[string]bool)
	for _, c := range m.True {
		truth[c] = true
	}
	return truth
}

func TestSAT_AndOrCardinality(t *testing.T) {
	for _, a := range propertyExprs {
		for _, b := range propertyExprs {
			l := prefixed(mustParse(t, a), "l.")
			r := prefixed(mustParse(t, b), "r.")
			nl, nr := len(SAT(l)), len(SAT(r))

			and := ExprAnd{A: l, B: r}
			ms := SAT(and)
			if len(ms) != nl*nr {
				t.Errorf("%s AND %s: got %d models, want %d", a, b, len(ms), nl*nr)
			}
			for _, m := range ms {
				if len(m.True)+len(m.False) != len(Atoms(and)) {
					t.Errorf("%s AND %s: model %v does not cover every atom", a, b, m)
				}
				if !eval(and, truthOf(m)) {
					t.Errorf("%s AND %s: model %v does not satisfy", a, b, m)
				}
			}

			or := ExprOr{A: l, B: r}
			ms = SAT(or)
			if len(ms) != 3*nl*nr {
				t.Errorf("%s OR %s: got %d models, want %d", a, b, len(ms), 3*nl*nr)
			}
			for _, m := range ms {
				// Never both operands false.
				if !eval(or, truthOf(m)) {
					t.Errorf("%s OR %s: model %v does not satisfy", a, b, m)
				}
			}
		}
	}
}

// eval reports whether e holds when exactly the clauses in truth hold. Atoms are
// matched by text, so callers avoid repeated clauses.
func eval(e Expr, truth map[string]bool) bool {
	switch e := e.(type) {
	case ExprLiteral:
		return truth[e.Clause]
	case ExprNot:
		return !eval(e.X, truth)
	case ExprAnd:
		return eval(e.A, truth) && eval(e.B, truth)
	case ExprOr:
		return eval(e.A, truth) || eval(e.B, truth)
	}
	return false
}

func TestSAT_ModelsSatisfyFormula(t *testing.T) {
	for _, src := range propertyExprs {
		t.Run(src, func(t *testing.T) {
			e := mustParse(t, src)
			for _, m := range SAT(e) {
				if !eval(e, truthOf(m)) {
					t.Errorf("model %v does not satisfy %s", m, src)
				}
			}
		})
	}
}

func TestSAT_RepeatedClauseNotUnified(t *testing.T) {
	ms := SAT(mustParse(t, "X==1 or X==1"))
	if len(ms) != 3 {
		t.Fatalf("got %d models, want 3", len(ms))
	}
	want := Model{True: []string{"X==1"}, False: []string{"X==1"}}
	if diff := cmp.Diff(want, ms[0]); diff != "" {
		t.Fatalf("first model (-want +got):\n%s", diff)
	}
}

func TestSAT_NoAliasing(t *testing.T) {
	ms := SAT(mustParse(t, "(A==1 or B==2) and not C==3"))
	for i := range ms[0].True {
		ms[0].True[i] = "clobbered"
	}
	for i := range ms[0].False {
		ms[0].False[i] = "clobbered"
	}
	for i, m := range ms[1:] {
		for _, c := range append(append([]string{}, m.True...), m.False...) {
			if c == "clobbered" {
				t.Fatalf("model %d shares storage with model 0: %v", i+1, m)
			}
		}
	}
}

func TestModelCount(t *testing.T) {
	for _, src := range propertyExprs {
		e := mustParse(t, src)
		n, ok := ModelCount(e)
		if !ok || n != uint64(len(SAT(e))) {
			t.Errorf("%s: ModelCount = %d, %v; SAT has %d", src, n, ok, len(SAT(e)))
		}
	}
}

func TestModelCount_Overflow(t *testing.T) {
	var e Expr = lit("A==1")
	for i := 0; i < 64; i++ {
		e = ExprOr{A: e, B: lit("B==2")}
	}
	if _, ok := ModelCount(e); ok {
		t.Fatal("expected overflow for 3^64 models")
	}
	if _, err := Enumerate(e, 0); !errors.Is(err, ErrTooManyModels) {
		t.Fatalf("got %v, want ErrTooManyModels", err)
	}
}

func TestEnumerate_Limit(t *testing.T) {
	e := mustParse(t, "(A==1 or B==2) or (C==3 or D==4)") // 3 * 3 * 3 = 27
	if _, err := Enumerate(e, 26); !errors.Is(err, ErrTooManyModels) {
		t.Fatalf("limit 26: got %v, want ErrTooManyModels", err)
	}
	ms, err := Enumerate(e, 27)
	if err != nil {
		t.Fatalf("limit 27: %v", err)
	}
	if len(ms) != 27 {
		t.Fatalf("got %d models, want 27", len(ms))
	}
	if ms, err := Enumerate(e, -1); err != nil || len(ms) != 27 {
		t.Fatalf("unbounded: got %d, %v", len(ms), err)
	}
}
