package asm

import (
	"fmt"
	"strings"

	"github.com/pborges/csrcomb/internal/csr"
)

// FileSuffix is appended to the output prefix of every generated test.
const FileSuffix = "_csr-comb.S"

// BaseReg holds the signature pointer in generated code.
const BaseReg = "x8"

type Config struct {
	ISA        string
	XLEN       int
	Label      string   // coverage label
	Conditions []string // one RVTEST_CASE per condition
	Header     []string // comment lines at the top of the file
}

// FileName returns the output file name for prefix.
func FileName(prefix string) string { return prefix + FileSuffix }

// MakeTest renders the assembly test for one coverage group.
func MakeTest(cfg Config, recs []csr.Record) string {
	var buf strings.Builder
	writeHeader(&buf, cfg.Header)

	buf.WriteString("#include \"model_test.h\"\n")
	buf.WriteString("#include \"arch_test.h\"\n")
	fmt.Fprintf(&buf, "RVTEST_ISA(\"%s\")\n\n", strings.ToUpper(cfg.ISA))
	buf.WriteString(".section .text.init\n")
	buf.WriteString(".globl rvtest_entry_point\n")
	buf.WriteString("rvtest_entry_point:\n")
	buf.WriteString("RVMODEL_BOOT\n")
	buf.WriteString("RVTEST_CODE_BEGIN\n\n")

	buf.WriteString("#ifdef TEST_CASE_1\n\n")
	for i, cond := range cfg.Conditions {
		fmt.Fprintf(&buf, "RVTEST_CASE(%d,\"//check ISA:=regex(.*%d.*);%s;def TEST_CASE_1=True;\",%s)\n", i, cfg.XLEN, cond, cfg.Label)
	}
	sigLabel := fmt.Sprintf("signature_%s_0", BaseReg)
	fmt.Fprintf(&buf, "\nRVTEST_SIGBASE(%s, %s)\n", BaseReg, sigLabel)
	for i, r := range recs {
		fmt.Fprintf(&buf, "\ninst_%d:\n", i)
		writeRecord(&buf, r)
	}
	buf.WriteString("\n#endif\n\n")

	buf.WriteString("RVTEST_CODE_END\n")
	buf.WriteString("RVMODEL_HALT\n\n")

	buf.WriteString("RVTEST_DATA_BEGIN\n")
	buf.WriteString(".align 4\n")
	buf.WriteString("rvtest_data:\n")
	for _, w := range []string{"0xbabecafe", "0xabecafeb", "0xbecafeba", "0xecafebab"} {
		fmt.Fprintf(&buf, ".word %s\n", w)
	}
	buf.WriteString("RVTEST_DATA_END\n\n")

	buf.WriteString("RVMODEL_DATA_BEGIN\n")
	buf.WriteString("rvtest_sig_begin:\n")
	buf.WriteString("sig_begin_canary:\n")
	buf.WriteString("CANARY;\n\n")
	fmt.Fprintf(&buf, "%s:\n", sigLabel)
	fmt.Fprintf(&buf, "    .fill %d*(XLEN/32),4,0xdeadbeef\n\n", len(recs))
	buf.WriteString("sig_end_canary:\n")
	buf.WriteString("CANARY;\n")
	buf.WriteString("rvtest_sig_end:\n")
	buf.WriteString("RVMODEL_DATA_END\n")
	return buf.String()
}

func writeHeader(buf *strings.Builder, lines []string) {
	if len(lines) == 0 {
		return
	}
	buf.WriteString("// -----------\n")
	for _, line := range lines {
		fmt.Fprintf(buf, "// %s\n", line)
	}
	buf.WriteString("// -----------\n\n")
}

// writeRecord emits the read-modify-write of one CSR field followed by a
// readback stored into the signature.
func writeRecord(buf *strings.Builder, r csr.Record) {
	if r.Clause != "" {
		verb := "holds"
		if r.Negated {
			verb = "fails"
		}
		fmt.Fprintf(buf, "// %s %s\n", r.Clause, verb)
	}
	fmt.Fprintf(buf, "LI(%s, %s)\n", r.TempReg1, r.MaskHex())
	fmt.Fprintf(buf, "LI(%s, %s)\n", r.TempReg2, r.ValHex())
	fmt.Fprintf(buf, "csrrc %s, %s, %s\n", r.DestReg, r.CSR, r.TempReg1)
	fmt.Fprintf(buf, "and %s, %s, %s\n", r.TempReg2, r.TempReg2, r.TempReg1)
	fmt.Fprintf(buf, "csrrs %s, %s, %s\n", r.DestReg, r.CSR, r.TempReg2)
	fmt.Fprintf(buf, "csrr %s, %s\n", r.DestReg, r.CSR)
	fmt.Fprintf(buf, "RVTEST_SIGUPD(%s, %s, %d)\n", BaseReg, r.DestReg, r.Offset)
}
