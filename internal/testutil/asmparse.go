package testutil

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Inst is one inst_N block of a generated test.
type Inst struct {
	Label  string
	CSR    string
	Mask   uint64
	Val    uint64
	Offset int
}

type Test struct {
	ISA      string
	Cases    int
	Insts    []Inst
	SigWords int // the N of ".fill N*(XLEN/32)"
}

// ParseTest reads back the parts of a generated test that tests care about.
func ParseTest(data []byte) (Test, error) {
	var t Test
	var cur *Inst
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for line := 1; scanner.Scan(); line++ {
		s := strings.TrimSpace(scanner.Text())
		switch {
		case s == "" || strings.HasPrefix(s, "//"):
			continue
		case strings.HasPrefix(s, "RVTEST_ISA("):
			t.ISA = strings.Trim(strings.TrimSuffix(strings.TrimPrefix(s, "RVTEST_ISA("), ")"), `"`)
		case strings.HasPrefix(s, "RVTEST_CASE("):
			t.Cases++
		case strings.HasPrefix(s, "inst_") && strings.HasSuffix(s, ":"):
			t.Insts = append(t.Insts, Inst{Label: strings.TrimSuffix(s, ":")})
			cur = &t.Insts[len(t.Insts)-1]
		case strings.HasPrefix(s, "LI(") && cur != nil:
			args := splitArgs(s, "LI(")
			if len(args) != 2 {
				return t, fmt.Errorf("line %d: malformed LI", line)
			}
			v, err := strconv.ParseUint(args[1], 0, 64)
			if err != nil {
				return t, fmt.Errorf("line %d: %w", line, err)
			}
			if args[0] == "x28" {
				cur.Mask = v
			} else {
				cur.Val = v
			}
		case strings.HasPrefix(s, "csrr ") && cur != nil:
			f := strings.Split(strings.TrimPrefix(s, "csrr "), ",")
			if len(f) != 2 {
				return t, fmt.Errorf("line %d: malformed csrr", line)
			}
			cur.CSR = strings.TrimSpace(f[1])
		case strings.HasPrefix(s, "RVTEST_SIGUPD(") && cur != nil:
			args := splitArgs(s, "RVTEST_SIGUPD(")
			if len(args) != 3 {
				return t, fmt.Errorf("line %d: malformed RVTEST_SIGUPD", line)
			}
			off, err := strconv.Atoi(args[2])
			if err != nil {
				return t, fmt.Errorf("line %d: %w", line, err)
			}
			cur.Offset = off
		case strings.HasPrefix(s, ".fill "):
			n, _, ok := strings.Cut(strings.TrimPrefix(s, ".fill "), "*")
			if !ok {
				return t, fmt.Errorf("line %d: malformed .fill", line)
			}
			words, err := strconv.Atoi(n)
			if err != nil {
				return t, fmt.Errorf("line %d: %w", line, err)
			}
			t.SigWords = words
		}
	}
	return t, scanner.Err()
}

func splitArgs(s, prefix string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(s, prefix), ")")
	parts := strings.Split(inner, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
