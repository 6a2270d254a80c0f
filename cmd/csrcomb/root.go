package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/pborges/csrcomb"
	"github.com/pborges/csrcomb/internal/csr"
)

const usageText = `csrcomb - csr_comb coverage test generator

Usage:
  csrcomb gen [-o dir] [-xlen n] [-isa isa] <file.cgf>...   Write one test per coverage group
  csrcomb sat [-json] [-dump] <coverpoint>                  Print the models of a coverpoint
  csrcomb regs                                              List the supported CSRs
  csrcomb version                                           Print the version

Examples:
  csrcomb gen -o work -xlen 64 -isa rv64i_Zicsr dataset.cgf
  csrcomb sat '(mstatus & 0x8 == 0x8) or (mie & 0x2 == 0x2)'`

// Root returns the root command for csrcomb.
func Root() *cli.Command {
	return cli.NewCommand("csrcomb").
		WithSynopsis("csrcomb - csr_comb coverage test generator").
		WithDescription(usageText).
		WithSubs(
			GenCommand(),
			SatCommand(),
			RegsCommand(),
			VersionCommand(),
		)
}

func RegsCommand() *cli.Command {
	return cli.NewCommand("regs").
		WithSynopsis("regs - list the CSRs a clause may name").
		WithRun(func(cc *cli.Context, args []string) error {
			for _, r := range csr.Registers() {
				fmt.Fprintln(cc.Out, r)
			}
			return nil
		})
}

func VersionCommand() *cli.Command {
	return cli.NewCommand("version").
		WithSynopsis("version - print the version").
		WithRun(func(cc *cli.Context, args []string) error {
			fmt.Fprintln(cc.Out, csrcomb.Version())
			return nil
		})
}
