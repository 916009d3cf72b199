package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/kaleido/compiler"
)

const (
	historyFile = ".kaleido_history"
	prompt      = "ready> "
)

var headers = map[compiler.Kind]string{
	compiler.Definition: "Read function definition:",
	compiler.Extern:     "Read extern:",
	compiler.Expression: "Read top-level expression:",
}

func replAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	hist := c.String("history")
	if hist == "" {
		home, _ := os.UserHomeDir()
		hist = filepath.Join(home, historyFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()

	ln.SetCtrlCAborts(true)

	if f, err := os.Open(hist); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	defer func() {
		if f, err := os.Create(hist); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := compiler.New(compiler.Config{ModuleName: c.String("module")})
	defer s.Close()

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return errors.Wrap(err, "read line")
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		ln.AppendHistory(line)

		eval(ctx, os.Stderr, s, line)
	}

	fmt.Fprintf(os.Stderr, "\n%s", s.Module().AppendText(nil))

	return nil
}

func eval(ctx context.Context, w io.Writer, s *compiler.Session, line string) {
	rs, err := s.Eval(ctx, []byte(line))

	for _, r := range rs {
		fmt.Fprintf(w, "%s\n%s\n", headers[r.Kind], r.Text)
	}

	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}
