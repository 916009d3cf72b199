package codegen

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/kaleido/compiler/ast"
	"github.com/slowlang/kaleido/compiler/ir"
	"github.com/slowlang/kaleido/compiler/lex"
)

type (
	// Codegen lowers AST nodes into the session's module.
	Codegen struct {
		s *ir.Session

		// env maps parameter names of the function being lowered.
		env map[string]ir.Value
	}

	UnboundError struct {
		Name string
		Pos  int
	}

	UndeclaredError struct {
		Name string
		Pos  int
	}

	ArityError struct {
		Name string
		Want int
		Got  int
		Pos  int
	}
)

var binops = map[lex.Kind]struct {
	op   ir.Op
	name string
}{
	lex.Less:  {ir.CmpLT, "cmptmp"},
	lex.Plus:  {ir.Add, "addtmp"},
	lex.Minus: {ir.Sub, "subtmp"},
	lex.Star:  {ir.Mul, "multmp"},
}

func New(s *ir.Session) *Codegen {
	return &Codegen{
		s:   s,
		env: make(map[string]ir.Value),
	}
}

func (c *Codegen) Session() *ir.Session { return c.s }

func (c *Codegen) LowerTopLevel(ctx context.Context, x ast.TopLevel) (*ir.Function, error) {
	switch x := x.(type) {
	case *ast.Function:
		return c.LowerFunction(ctx, x)
	case *ast.Prototype:
		return c.LowerPrototype(ctx, x)
	default:
		return nil, errors.New("unsupported top-level node: %T", x)
	}
}

func (c *Codegen) LowerPrototype(ctx context.Context, p *ast.Prototype) (*ir.Function, error) {
	f, err := c.s.Module.Declare(p.Name, p.Params)
	if err != nil {
		return nil, errors.Wrap(err, "at pos 0x%x", p.Pos)
	}

	tlog.SpanFromContext(ctx).V("lower").Printw("prototype", "name", p.Name, "params", p.Params)

	return f, nil
}

// LowerFunction lowers a definition or top-level expression.
// On failure the module is left as it was before the call.
func (c *Codegen) LowerFunction(ctx context.Context, x *ast.Function) (f *ir.Function, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "lower function", "name", x.Proto.Name)
	defer tr.Finish("err", &err)

	m := c.s.Module
	b := c.s.Builder

	prev := m.Function(x.Proto.Name)

	var names []string
	if prev != nil {
		names = prev.ParamNames()
	}

	f, err = c.LowerPrototype(ctx, x.Proto)
	if err != nil {
		return nil, err
	}

	attached := false

	defer func() {
		if err == nil {
			return
		}

		b.Reset()

		// a function that already had a body was neither renamed nor touched
		switch {
		case prev == nil:
			m.Remove(f)
		case attached:
			f.DropBody()
			f.Rename(names)
		}

		tr.Printw("rolled back", "name", x.Proto.Name, "existed", prev != nil)

		f = nil
	}()

	err = b.AttachBody(f)
	if err != nil {
		return f, errors.Wrap(err, "at pos 0x%x", x.Proto.Pos)
	}

	attached = true

	clear(c.env)

	for i, p := range f.Params {
		c.env[x.Proto.Params[i]] = p
	}

	v, err := c.LowerExpr(ctx, x.Body)
	if err != nil {
		return f, err
	}

	b.Ret(v)
	b.Reset()

	if tr.If("lower") {
		tr.Printw("function", "ir", f)
	}

	return f, nil
}

// LowerExpr lowers e into the current block. Operands are lowered left to right.
func (c *Codegen) LowerExpr(ctx context.Context, e ast.Expr) (v ir.Value, err error) {
	b := c.s.Builder

	switch e := e.(type) {
	case *ast.Null:
		return c.s.Context.Float(0), nil
	case *ast.Number:
		return c.s.Context.Float(e.Value), nil
	case *ast.Variable:
		x, ok := c.env[e.Name]
		if !ok {
			return nil, UnboundError{Name: e.Name, Pos: e.Pos}
		}

		return x, nil
	case *ast.Binary:
		l, err := c.LowerExpr(ctx, e.Left)
		if err != nil {
			return nil, errors.Wrap(err, "lhs")
		}

		r, err := c.LowerExpr(ctx, e.Right)
		if err != nil {
			return nil, errors.Wrap(err, "rhs")
		}

		op, ok := binops[e.Op]
		if !ok {
			panic(fmt.Sprintf("unsupported binary operator: %v", e.Op))
		}

		v = b.Binary(op.op, l, r, op.name)

		if op.op == ir.CmpLT {
			v = b.UIToFP(v, "booltmp")
		}

		return v, nil
	case *ast.Call:
		f := c.s.Module.Function(e.Callee)
		if f == nil {
			return nil, UndeclaredError{Name: e.Callee, Pos: e.Pos}
		}

		if len(f.Params) != len(e.Args) {
			return nil, ArityError{Name: e.Callee, Want: len(f.Params), Got: len(e.Args), Pos: e.Pos}
		}

		args := make([]ir.Value, len(e.Args))

		for i, a := range e.Args {
			args[i], err = c.LowerExpr(ctx, a)
			if err != nil {
				return nil, errors.Wrap(err, "call %v: arg %d", e.Callee, i)
			}
		}

		return b.Call(f, args, "calltmp"), nil
	default:
		return nil, errors.New("unsupported expr: %T", e)
	}
}

func (e UnboundError) Error() string {
	return fmt.Sprintf("unknown variable name: %v at pos 0x%x", e.Name, e.Pos)
}

func (e UndeclaredError) Error() string {
	return fmt.Sprintf("unknown function referenced: %v at pos 0x%x", e.Name, e.Pos)
}

func (e ArityError) Error() string {
	return fmt.Sprintf("incorrect # arguments passed to %v: %d, want %d at pos 0x%x", e.Name, e.Got, e.Want, e.Pos)
}

func (e UnboundError) Position() int    { return e.Pos }
func (e UndeclaredError) Position() int { return e.Pos }
func (e ArityError) Position() int      { return e.Pos }
