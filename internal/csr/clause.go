package csr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
)

var (
	ErrClauseShape   = errors.New("unrecognized clause")
	ErrUnsatisfiable = errors.New("clause cannot take the requested value")
)

// <csr> & <mask> == <val>; the mask runs up to the last "==".
var clauseRe = regexp.MustCompile(`^(\w+) *& *([^ ].*)== *([^ ].*)$`)

// Field is a masked register field test taken from one clause.
type Field struct {
	Clause string
	CSR    string
	Mask   uint64
	Val    uint64
}

// ParseClause extracts the register, mask and value of a clause of the form
// "csr & mask == val". Mask and value are integer expressions over | ^ & << >>
// + - * // % ~ and **; xlen is visible to them as a variable and expr-lang
// builtins such as bitshl may be called.
func ParseClause(clause string, xlen int) (Field, error) {
	m := clauseRe.FindStringSubmatch(strings.TrimSpace(clause))
	if m == nil {
		return Field{}, fmt.Errorf("%w: %q", ErrClauseShape, clause)
	}
	if !IsRegister(m[1]) {
		return Field{}, fmt.Errorf("%w: %q: unknown CSR %q", ErrClauseShape, clause, m[1])
	}
	mask, err := evalUint(m[2], xlen)
	if err != nil {
		return Field{}, fmt.Errorf("%w: %q: mask: %w", ErrClauseShape, clause, err)
	}
	val, err := evalUint(m[3], xlen)
	if err != nil {
		return Field{}, fmt.Errorf("%w: %q: value: %w", ErrClauseShape, clause, err)
	}
	if xlen > 0 && xlen < 64 {
		limit := uint64(1) << uint(xlen)
		if mask >= limit || val >= limit {
			return Field{}, fmt.Errorf("%w: %q: does not fit in %d bits", ErrClauseShape, clause, xlen)
		}
	}
	return Field{Clause: clause, CSR: m[1], Mask: mask, Val: val}, nil
}

func evalUint(src string, xlen int) (uint64, error) {
	env := map[string]any{"xlen": xlen}
	code, err := translate(src)
	if err != nil {
		return 0, err
	}
	program, err := expr.Compile(code, expr.Env(env), expr.AsInt64())
	if err != nil {
		return 0, err
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return 0, err
	}
	v, ok := out.(int64)
	if !ok {
		return 0, fmt.Errorf("%q is %T, not an integer", src, out)
	}
	if v < 0 {
		return 0, fmt.Errorf("%q is negative", src)
	}
	return uint64(v), nil
}

// Satisfy returns the register value that makes the clause hold.
func (f Field) Satisfy() (uint64, error) {
	if f.Val&^f.Mask != 0 {
		return 0, fmt.Errorf("%w: %q sets bits outside its mask", ErrUnsatisfiable, f.Clause)
	}
	return f.Val, nil
}

// Falsify returns a register value, within the mask, that makes the clause
// fail.
func (f Field) Falsify() (uint64, error) {
	v := ^f.Val & f.Mask
	if v&f.Mask == f.Val {
		return 0, fmt.Errorf("%w: %q holds for every register value", ErrUnsatisfiable, f.Clause)
	}
	return v, nil
}
