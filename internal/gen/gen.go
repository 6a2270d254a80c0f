package gen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pborges/csrcomb/internal/asm"
	"github.com/pborges/csrcomb/internal/cgf"
	"github.com/pborges/csrcomb/internal/check"
	"github.com/pborges/csrcomb/internal/covpt"
	"github.com/pborges/csrcomb/internal/csr"
)

// Generator turns csr_comb coverage groups into assembly tests.
type Generator struct {
	ISA        string
	XLEN       int
	ModelLimit int  // per coverpoint; see covpt.Enumerate
	Strict     bool // drop models that contradict themselves once clauses are unified
	Header     []string
	Log        *slog.Logger
}

// Skip records a coverpoint, or one model of it, that produced no code.
type Skip struct {
	Covpt string
	Model int // -1 when the whole coverpoint was skipped
	Err   error
}

var ErrConfig = errors.New("invalid generator configuration")

type Result struct {
	Label   string
	Text    string
	Records []csr.Record
	Skipped []Skip
}

var discard = slog.New(slog.DiscardHandler)

func (g *Generator) log() *slog.Logger {
	if g.Log == nil {
		return discard
	}
	return g.Log
}

// Generate renders the test for one group. A coverpoint that fails to parse,
// enumerate or map onto registers is logged and skipped; the rest of the
// group is still generated.
func (g *Generator) Generate(node cgf.Node) (Result, error) {
	if g.XLEN != 32 && g.XLEN != 64 {
		return Result{}, fmt.Errorf("%w: xlen %d", ErrConfig, g.XLEN)
	}
	if g.ISA == "" {
		return Result{}, fmt.Errorf("%w: empty isa", ErrConfig)
	}
	log := g.log().With("label", node.Label)
	log.Debug("generating csr_comb tests", "covpts", len(node.Covpts))

	res := Result{Label: node.Label}
	for _, src := range node.Covpts {
		recs, skips := g.coverpoint(log, src)
		res.Records = append(res.Records, recs...)
		res.Skipped = append(res.Skipped, skips...)
	}
	csr.Layout(res.Records, g.XLEN)

	res.Text = asm.MakeTest(asm.Config{
		ISA:        g.ISA,
		XLEN:       g.XLEN,
		Label:      node.Label,
		Conditions: node.Config,
		Header:     g.header(node.Label),
	}, res.Records)
	return res, nil
}

func (g *Generator) coverpoint(log *slog.Logger, src string) ([]csr.Record, []Skip) {
	expr, err := covpt.Parse(src)
	if err != nil {
		log.Error("invalid csr_comb coverpoint", "covpt", src, "err", err)
		return nil, []Skip{{Covpt: src, Model: -1, Err: err}}
	}
	models, err := covpt.Enumerate(expr, g.ModelLimit)
	if err != nil {
		log.Error("cannot enumerate coverpoint", "covpt", src, "err", err)
		return nil, []Skip{{Covpt: src, Model: -1, Err: err}}
	}
	log.Debug("enumerated coverpoint", "covpt", src, "tree", expr.String(), "models", len(models))

	var recs []csr.Record
	var skips []Skip
	dropped := make(map[int]bool)
	if g.Strict {
		ch := check.New(expr)
		if !ch.Satisfiable() {
			err := fmt.Errorf("%w: %s", check.ErrUnsatisfiable, expr)
			log.Error("cannot satisfy coverpoint", "covpt", src, "err", err)
			return nil, []Skip{{Covpt: src, Model: -1, Err: err}}
		}
		_, idx, err := ch.Filter(models)
		if err != nil {
			log.Error("cannot check coverpoint models", "covpt", src, "err", err)
			return nil, []Skip{{Covpt: src, Model: -1, Err: err}}
		}
		for _, i := range idx {
			m := models[i]
			err := fmt.Errorf("model contradicts itself: true %q, false %q", m.True, m.False)
			log.Warn("dropping model", "covpt", src, "model", i, "err", err)
			skips = append(skips, Skip{Covpt: src, Model: i, Err: err})
			dropped[i] = true
		}
	}
	for i, m := range models {
		if dropped[i] {
			continue
		}
		mr, err := csr.RecordsForModel(m, g.XLEN)
		if err != nil {
			log.Error("cannot map model onto registers", "covpt", src, "model", i, "err", err)
			skips = append(skips, Skip{Covpt: src, Model: i, Err: err})
			continue
		}
		recs = append(recs, mr...)
	}
	return recs, skips
}

func (g *Generator) header(label string) []string {
	lines := append([]string(nil), g.Header...)
	return append(lines, fmt.Sprintf("This assembly file tests csr_comb for label %s", label))
}

// GenerateAll runs Generate over nodes with at most workers groups in
// flight, calling emit for each result from the worker that produced it.
// Results come back in no particular order.
func (g *Generator) GenerateAll(ctx context.Context, nodes []cgf.Node, workers int, emit func(Result) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for _, n := range nodes {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := g.Generate(n)
			if err != nil {
				return err
			}
			return emit(res)
		})
	}
	return eg.Wait()
}

// Summary is a one-line account of a result for logs.
func (r Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d records", r.Label, len(r.Records))
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, ", %d skipped", len(r.Skipped))
	}
	return b.String()
}
