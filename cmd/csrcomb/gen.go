package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/scott-cotton/cli"

	"github.com/pborges/csrcomb"
	"github.com/pborges/csrcomb/internal/asm"
	"github.com/pborges/csrcomb/internal/cgf"
	"github.com/pborges/csrcomb/internal/gen"
)

type genConfig struct {
	*cli.Command
	OutDir  string `cli:"name=o desc='output directory' default=."`
	XLEN    int    `cli:"name=xlen desc='register width, 32 or 64 (default 32)'"`
	ISA     string `cli:"name=isa desc='ISA string for RVTEST_ISA (default rv<xlen>i_Zicsr)'"`
	Max     int    `cli:"name=max desc='models per coverpoint before it is skipped, negative for no limit (default 4096)'"`
	Strict  bool   `cli:"name=strict desc='drop models that contradict themselves when equal clauses are one atom'"`
	Workers int    `cli:"name=j desc='coverage groups generated in parallel (default 1)'"`
	Verbose bool   `cli:"name=v desc='debug logging'"`
}

func GenCommand() *cli.Command {
	cfg := &genConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "gen").
		WithSynopsis("gen [-o dir] [-xlen n] [-isa isa] [-max n] [-strict] [-j n] <file.cgf>...").
		WithDescription("write one <label>_csr-comb.S test per csr_comb coverage group").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *genConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: gen requires at least one .cgf file", cli.ErrUsage)
	}
	g, err := cfg.generator()
	if err != nil {
		return err
	}

	var nodes []cgf.Node
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		ns, err := cgf.Load(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		nodes = append(nodes, ns...)
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var mu sync.Mutex
	return g.GenerateAll(ctx, nodes, cfg.Workers, func(res gen.Result) error {
		path := asm.FileName(filepath.Join(cfg.OutDir, res.Label))
		if err := os.WriteFile(path, []byte(res.Text), 0o644); err != nil {
			return err
		}
		g.Log.Info("wrote test", "path", path, "result", res.Summary())
		mu.Lock()
		defer mu.Unlock()
		_, err := fmt.Fprintln(cc.Out, path)
		return err
	})
}

func (cfg *genConfig) generator() (*gen.Generator, error) {
	xlen := cfg.XLEN
	if xlen == 0 {
		xlen = 32
	}
	if xlen != 32 && xlen != 64 {
		return nil, fmt.Errorf("%w: -xlen must be 32 or 64, got %d", cli.ErrUsage, xlen)
	}
	isa := cfg.ISA
	if isa == "" {
		isa = fmt.Sprintf("rv%di_Zicsr", xlen)
	}
	if cfg.Workers < 0 {
		return nil, errors.New("-j must not be negative")
	}
	return &gen.Generator{
		ISA:        isa,
		XLEN:       xlen,
		ModelLimit: cfg.Max,
		Strict:     cfg.Strict,
		Header:     []string{"Generated by csrcomb " + csrcomb.Version()},
		Log:        newLogger(cfg.Verbose),
	}, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
