package cgf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// Node is one coverage group of a CGF file that has csr_comb coverpoints.
type Node struct {
	Label  string
	Config []string
	Covpts []string // csr_comb keys in file order
}

// Load reads the coverage groups of a CGF document. Labels and coverpoints
// keep their order in the file; groups without csr_comb are left out.
func Load(data []byte) ([]Node, error) {
	var doc yaml.MapSlice
	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.UseOrderedMap())
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("cgf: %w", err)
	}
	var nodes []Node
	for _, item := range doc {
		group, ok := item.Value.(yaml.MapSlice)
		if !ok {
			continue
		}
		n := Node{Label: fmt.Sprint(item.Key)}
		hasCovpts := false
		for _, field := range group {
			switch fmt.Sprint(field.Key) {
			case "config":
				list, ok := field.Value.([]any)
				if !ok {
					return nil, fmt.Errorf("cgf: %s: config is %T, want a list", n.Label, field.Value)
				}
				for _, c := range list {
					n.Config = append(n.Config, fmt.Sprint(c))
				}
			case "csr_comb":
				covpts, ok := field.Value.(yaml.MapSlice)
				if !ok {
					return nil, fmt.Errorf("cgf: %s: csr_comb is %T, want a mapping", n.Label, field.Value)
				}
				hasCovpts = true
				for _, c := range covpts {
					n.Covpts = append(n.Covpts, fmt.Sprint(c.Key))
				}
			}
		}
		if hasCovpts {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}
