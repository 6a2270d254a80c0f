package csr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/pborges/csrcomb/internal/covpt"
)

func TestRecordsForModel(t *testing.T) {
	m := covpt.Model{
		True:  []string{"mstatus & 0x8 == 0x8"},
		False: []string{"mie & 0x2 == 0x2"},
	}
	recs, err := RecordsForModel(m, 64)
	if err != nil {
		t.Fatal(err)
	}
	Layout(recs, 64)
	want := []Record{
		{CSR: "mstatus", Mask: 0x8, Val: 0x8, Offset: 0, Clause: "mstatus & 0x8 == 0x8"},
		{CSR: "mie", Mask: 0x2, Val: 0x0, Offset: 8, Clause: "mie & 0x2 == 0x2", Negated: true},
	}
	opts := cmpopts.IgnoreFields(Record{}, "DestReg", "TempReg1", "TempReg2")
	if diff := cmp.Diff(want, recs, opts); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	for _, r := range recs {
		if r.DestReg != "x23" || r.TempReg1 != "x28" || r.TempReg2 != "x29" {
			t.Fatalf("unexpected registers in %+v", r)
		}
	}
	if recs[0].MaskHex() != "0x8" || recs[1].ValHex() != "0x0" {
		t.Fatalf("hex: got %s %s", recs[0].MaskHex(), recs[1].ValHex())
	}
}

func TestRecordsForModel_Errors(t *testing.T) {
	cases := []struct {
		name string
		m    covpt.Model
		want error
	}{
		{"BadShape", covpt.Model{True: []string{"A==1"}}, ErrClauseShape},
		{"CannotHold", covpt.Model{True: []string{"mie & 0x1 == 0x2"}}, ErrUnsatisfiable},
		{"CannotFail", covpt.Model{False: []string{"mie & 0 == 0"}}, ErrUnsatisfiable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := RecordsForModel(tc.m, 32); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLayout(t *testing.T) {
	recs := make([]Record, 3)
	Layout(recs, 32)
	for i, r := range recs {
		if r.Offset != 4*i {
			t.Errorf("record %d: offset %d, want %d", i, r.Offset, 4*i)
		}
	}
}
