package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/valyala/fastjson"

	"github.com/pborges/csrcomb/internal/check"
	"github.com/pborges/csrcomb/internal/covpt"
)

type satConfig struct {
	*cli.Command
	JSON   bool `cli:"name=json desc='print models as json'"`
	Dump   bool `cli:"name=dump desc='dump the expression tree'"`
	Color  bool `cli:"name=color desc='colour output even when not on a terminal'"`
	Strict bool `cli:"name=strict desc='mark models that contradict themselves when equal clauses are one atom'"`
	Max    int  `cli:"name=max desc='model limit, negative for none (default 4096)'"`
}

func SatCommand() *cli.Command {
	cfg := &satConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "sat").
		WithSynopsis("sat [-json] [-dump] [-color] [-strict] [-max n] [coverpoint]").
		WithDescription("print the expression tree and every model of a coverpoint; reads stdin when no coverpoint is given").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *satConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	src := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cc.In)
		if err != nil {
			return err
		}
		src = string(data)
	}
	if strings.TrimSpace(src) == "" {
		return fmt.Errorf("%w: no coverpoint given", cli.ErrUsage)
	}

	e, err := covpt.Parse(src)
	if err != nil {
		return err
	}
	models, err := covpt.Enumerate(e, cfg.Max)
	if err != nil {
		return err
	}
	var consistent []bool
	if cfg.Strict {
		if consistent, err = consistency(e, models); err != nil {
			return err
		}
	}

	if cfg.Dump {
		fmt.Fprint(cc.Out, spew.Sdump(e))
	}
	if cfg.JSON {
		return writeJSON(cc.Out, e, models, consistent)
	}
	p := plain
	if cfg.Color || isTerminal(cc.Out) {
		p = colored()
	}
	return writeModels(cc.Out, e, models, consistent, p)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func consistency(e covpt.Expr, models []covpt.Model) ([]bool, error) {
	_, dropped, err := check.New(e).Filter(models)
	if err != nil {
		return nil, err
	}
	res := make([]bool, len(models))
	for i := range res {
		res[i] = true
	}
	for _, i := range dropped {
		res[i] = false
	}
	return res, nil
}

type palette struct {
	tree, hold, fail, note func(format string, a ...any) string
}

var plain = palette{tree: fmt.Sprintf, hold: fmt.Sprintf, fail: fmt.Sprintf, note: fmt.Sprintf}

// colored paints regardless of color.NoColor, which is decided from stdout
// alone.
func colored() palette {
	paint := func(c *color.Color) func(string, ...any) string {
		c.EnableColor()
		return c.SprintfFunc()
	}
	return palette{
		tree: paint(color.New(color.FgCyan)),
		hold: paint(color.New(color.FgGreen)),
		fail: paint(color.New(color.FgRed)),
		note: paint(color.RGB(96, 96, 96)),
	}
}

// writeModels prints the tree followed by one line per model.
func writeModels(w io.Writer, e covpt.Expr, models []covpt.Model, consistent []bool, p palette) error {
	if _, err := fmt.Fprintln(w, p.tree("%s", e)); err != nil {
		return err
	}
	for i, m := range models {
		line := fmt.Sprintf("%d: %s %s", i, p.hold("true %q", m.True), p.fail("false %q", m.False))
		if consistent != nil && !consistent[i] {
			line += " " + p.note("(inconsistent)")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, e covpt.Expr, models []covpt.Model, consistent []bool) error {
	var a fastjson.Arena
	strs := func(ss []string) *fastjson.Value {
		arr := a.NewArray()
		for i, s := range ss {
			arr.SetArrayItem(i, a.NewString(s))
		}
		return arr
	}
	ms := a.NewArray()
	for i, m := range models {
		o := a.NewObject()
		o.Set("true", strs(m.True))
		o.Set("false", strs(m.False))
		if consistent != nil {
			if consistent[i] {
				o.Set("consistent", a.NewTrue())
			} else {
				o.Set("consistent", a.NewFalse())
			}
		}
		ms.SetArrayItem(i, o)
	}
	root := a.NewObject()
	root.Set("tree", a.NewString(e.String()))
	root.Set("atoms", strs(covpt.Atoms(e)))
	root.Set("models", ms)
	_, err := w.Write(append(root.MarshalTo(nil), '\n'))
	return err
}
