package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kr/pretty"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
	"tlog.app/go/tlog/ext/tlflag"

	"github.com/slowlang/kaleido/compiler"
	"github.com/slowlang/kaleido/compiler/format"
	"github.com/slowlang/kaleido/compiler/parse"
)

func main() {
	replCmd := &cli.Command{
		Name:   "repl",
		Action: replAct,
		Flags: []*cli.Flag{
			cli.NewFlag("history", "", "history file (default ~/"+historyFile+")"),
		},
	}

	parseCmd := &cli.Command{
		Name:   "parse",
		Action: parseAct,
		Args:   cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("pretty", false, "dump go structures"),
		},
	}

	compileCmd := &cli.Command{
		Name:   "compile",
		Action: compileAct,
		Args:   cli.Args{},
	}

	app := &cli.Command{
		Name:        "kaleido",
		Description: "kaleido is a front end for a tiny expression language",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("log", "stderr", "log output file (or stderr)"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.NewFlag("module", "", "module name"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			replCmd,
			parseCmd,
			compileCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	w, err := tlflag.OpenWriter(c.String("log"))
	if err != nil {
		return errors.Wrap(err, "open log file")
	}

	tlog.DefaultLogger = tlog.New(w)

	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func parseAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		l, err := parse.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		if c.Bool("pretty") {
			pretty.Println(l)
			continue
		}

		b, err := format.Format(ctx, nil, l)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		fmt.Printf("%s", b)
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	cfg := compiler.Config{
		ModuleName:    c.String("module"),
		KeepAnonymous: true,
	}

	for _, a := range c.Args {
		obj, err := compiler.CompileFileConfig(ctx, cfg, a)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		fmt.Printf("%s", obj)
	}

	return nil
}
