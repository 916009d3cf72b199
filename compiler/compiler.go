package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/kaleido/compiler/ast"
	"github.com/slowlang/kaleido/compiler/codegen"
	"github.com/slowlang/kaleido/compiler/ir"
	"github.com/slowlang/kaleido/compiler/lex"
	"github.com/slowlang/kaleido/compiler/parse"
)

type (
	Config struct {
		// ModuleName defaults to ir.DefaultModuleName.
		ModuleName string

		// KeepAnonymous keeps top-level expression functions in the module
		// after they are rendered.
		KeepAnonymous bool
	}

	Kind int

	Result struct {
		Kind Kind
		Node ast.TopLevel
		Func *ir.Function
		Text []byte
	}

	// Session lowers top-level forms one by one into a single module.
	Session struct {
		Config

		s  *ir.Session
		cg *codegen.Codegen

		forms int
	}

	positioner interface {
		Position() int
	}
)

const (
	Definition Kind = iota
	Extern
	Expression
)

func CompileFile(ctx context.Context, name string) (obj []byte, err error) {
	return CompileFileConfig(ctx, Config{KeepAnonymous: true}, name)
}

func CompileFileConfig(ctx context.Context, cfg Config, name string) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return CompileConfig(ctx, cfg, name, text)
}

// Compile lowers all forms of text and renders the resulting module.
func Compile(ctx context.Context, name string, text []byte) (obj []byte, err error) {
	return CompileConfig(ctx, Config{KeepAnonymous: true}, name, text)
}

func CompileConfig(ctx context.Context, cfg Config, name string, text []byte) (obj []byte, err error) {
	s := New(cfg)
	defer s.Close()

	err = s.Run(ctx, text, nil)
	if err != nil {
		if pos, ok := Position(err); ok {
			line, col := lex.LineCol(text, pos)

			return nil, errors.Wrap(err, "%v:%d:%d", name, line, col)
		}

		return nil, errors.Wrap(err, "%v", name)
	}

	return s.Module().AppendText(nil), nil
}

func New(cfg Config) *Session {
	s := ir.NewSession(cfg.ModuleName)

	return &Session{
		Config: cfg,
		s:      s,
		cg:     codegen.New(s),
	}
}

func (s *Session) Close() {
	s.s.Close()
}

func (s *Session) Module() *ir.Module { return s.s.Module }

// Run parses and lowers text form by form, calling emit after each one.
// It stops at the first error. Forms lowered before it stay in the module.
func (s *Session) Run(ctx context.Context, text []byte, emit func(Result) error) (err error) {
	p := parse.New(text)

	for !p.Done() {
		x, err := p.ParseTopLevel(ctx)
		if err != nil {
			return errors.Wrap(err, "parse form %d", s.forms)
		}

		if x == nil {
			continue
		}

		r, err := s.lower(ctx, x)
		if err != nil {
			return errors.Wrap(err, "lower form %d", s.forms)
		}

		s.forms++

		if emit == nil {
			continue
		}

		err = emit(r)
		if err != nil {
			return err
		}
	}

	return nil
}

// Eval runs one line of input and collects the results.
// An error aborts the rest of the line but leaves the session usable.
func (s *Session) Eval(ctx context.Context, line []byte) (rs []Result, err error) {
	err = s.Run(ctx, line, func(r Result) error {
		rs = append(rs, r)
		return nil
	})

	return rs, err
}

func (s *Session) lower(ctx context.Context, x ast.TopLevel) (r Result, err error) {
	r.Node = x

	switch x := x.(type) {
	case *ast.Prototype:
		r.Kind = Extern
	case *ast.Function:
		r.Kind = Definition

		if x.Anonymous() {
			r.Kind = Expression
		}
	}

	r.Func, err = s.cg.LowerTopLevel(ctx, x)
	if err != nil {
		return r, err
	}

	r.Text = ir.AppendFunction(nil, r.Func)

	if r.Kind == Expression && !s.KeepAnonymous {
		s.s.Module.Remove(r.Func)
	}

	tlog.SpanFromContext(ctx).Printw("form", "kind", r.Kind, "func", r.Func.Name, "form", s.forms)

	return r, nil
}

// Position extracts the input offset an error refers to.
func Position(err error) (int, bool) {
	var p positioner

	if !errors.As(err, &p) {
		return 0, false
	}

	return p.Position(), true
}

func (k Kind) String() string {
	switch k {
	case Definition:
		return "definition"
	case Extern:
		return "extern"
	case Expression:
		return "expression"
	default:
		return "unknown"
	}
}
