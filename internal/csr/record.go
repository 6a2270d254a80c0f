package csr

import (
	"fmt"

	"github.com/pborges/csrcomb/internal/covpt"
)

// Registers used by the generated snippets.
const (
	DestReg  = "x23"
	TempReg1 = "x28" // t3
	TempReg2 = "x29" // t4
)

// Record is one CSR field write in a generated test.
type Record struct {
	CSR      string
	Mask     uint64
	Val      uint64
	DestReg  string
	TempReg1 string
	TempReg2 string
	Offset   int // signature byte offset

	Clause  string
	Negated bool // Val falsifies Clause
}

func (r Record) MaskHex() string { return fmt.Sprintf("%#x", r.Mask) }
func (r Record) ValHex() string  { return fmt.Sprintf("%#x", r.Val) }

func newRecord(f Field, val uint64, negated bool) Record {
	return Record{
		CSR:      f.CSR,
		Mask:     f.Mask,
		Val:      val,
		DestReg:  DestReg,
		TempReg1: TempReg1,
		TempReg2: TempReg2,
		Clause:   f.Clause,
		Negated:  negated,
	}
}

// RecordsForModel derives the writes that realise a model: every true clause
// writes its value and every false clause writes a value outside it. Offsets
// are left at zero; see Layout.
func RecordsForModel(m covpt.Model, xlen int) ([]Record, error) {
	recs := make([]Record, 0, len(m.True)+len(m.False))
	for _, c := range m.True {
		f, err := ParseClause(c, xlen)
		if err != nil {
			return nil, err
		}
		v, err := f.Satisfy()
		if err != nil {
			return nil, err
		}
		recs = append(recs, newRecord(f, v, false))
	}
	for _, c := range m.False {
		f, err := ParseClause(c, xlen)
		if err != nil {
			return nil, err
		}
		v, err := f.Falsify()
		if err != nil {
			return nil, err
		}
		recs = append(recs, newRecord(f, v, true))
	}
	return recs, nil
}

// Layout assigns signature offsets so that consecutive records occupy
// consecutive XLEN-wide slots.
func Layout(recs []Record, xlen int) {
	step := xlen / 8
	if step <= 0 {
		step = 4
	}
	for i := range recs {
		recs[i].Offset = i * step
	}
}
