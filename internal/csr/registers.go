package csr

import "slices"

// registers is the closed catalogue of CSRs a coverpoint may name.
var registers = []string{
	"mvendorid", "marchid", "mimpid", "mhartid",
	"mstatus", "misa", "medeleg", "mideleg", "mie", "mtvec", "mcounteren",
	"mscratch", "mepc", "mcause", "mtval", "mip",
	"pmpcfg0", "pmpcfg1", "pmpcfg2", "pmpcfg3",
	"mcycle", "minstret", "mcycleh", "minstreth", "mcountinhibit",
	"tselect", "tdata1", "tdata2", "tdata3",
	"dcsr", "dpc", "dscratch0", "dscratch1",
	"sstatus", "sedeleg", "sideleg", "sie", "stvec", "scounteren",
	"sscratch", "sepc", "scause", "stval", "sip", "satp",
	"vxsat", "fflags", "frm", "fcsr",
}

// Registers returns the catalogue in its canonical order.
func Registers() []string { return slices.Clone(registers) }

func IsRegister(name string) bool { return slices.Contains(registers, name) }
