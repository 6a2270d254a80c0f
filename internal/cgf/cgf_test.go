package cgf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sample = `
datasets:
  regs: &regs [x1, x2]

csr_comb_machine:
  config:
    - check ISA:=regex(.*I.*Zicsr.*)
  csr_comb:
    'mstatus & 0x8 == 0x8': 0
    '(mstatus & 0x8 == 0x8) or (mie & 0x2 == 0x2)': 0
    'not (mip & 0x80 == 0x80)': 0

addi:
  config:
    - check ISA:=regex(.*I.*)
  rs1: *regs

csr_comb_supervisor:
  config:
    - check ISA:=regex(.*I.*S.*)
    - check ISA:=regex(.*I.*Zicsr.*)
  csr_comb:
    'sstatus & 0x2 == 0x2': 0
`

func TestLoad(t *testing.T) {
	got, err := Load([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	want := []Node{
		{
			Label:  "csr_comb_machine",
			Config: []string{"check ISA:=regex(.*I.*Zicsr.*)"},
			Covpts: []string{
				"mstatus & 0x8 == 0x8",
				"(mstatus & 0x8 == 0x8) or (mie & 0x2 == 0x2)",
				"not (mip & 0x80 == 0x80)",
			},
		},
		{
			Label:  "csr_comb_supervisor",
			Config: []string{"check ISA:=regex(.*I.*S.*)", "check ISA:=regex(.*I.*Zicsr.*)"},
			Covpts: []string{"sstatus & 0x2 == 0x2"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	for name, src := range map[string]string{
		"Syntax":      "a: [b",
		"ConfigShape": "lbl:\n  config: nope\n  csr_comb:\n    'x': 0\n",
		"CovptShape":  "lbl:\n  csr_comb: [a, b]\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Load([]byte(src)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoad_Empty(t *testing.T) {
	got, err := Load(nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
}
