package ir

import (
	"fmt"

	"tlog.app/go/errors"

	"github.com/slowlang/kaleido/compiler/tp"
)

type (
	// Builder appends instructions at the end of the current block.
	// Operations on constant operands are folded.
	Builder struct {
		ctx *Context
		blk *Block
	}
)

func NewBuilder(ctx *Context) *Builder {
	return &Builder{ctx: ctx}
}

// AttachBody creates the entry block of f and positions the builder there.
func (b *Builder) AttachBody(f *Function) error {
	if f.HasBody() {
		return errors.New("function %v cannot be redefined", f.Name)
	}

	blk := &Block{
		Name: f.localName("entry"),
		Func: f,
	}

	f.Blocks = append(f.Blocks, blk)
	b.blk = blk

	return nil
}

// Block returns the current insertion block.
func (b *Builder) Block() *Block { return b.blk }

// Reset detaches the builder from its block.
func (b *Builder) Reset() { b.blk = nil }

// Binary emits op applied to l and r. op is one of Add, Sub, Mul, CmpLT.
func (b *Builder) Binary(op Op, l, r Value, name string) Value {
	lc, lok := l.(*Const)
	rc, rok := r.(*Const)

	if lok && rok {
		switch op {
		case Add:
			return b.ctx.Float(lc.V + rc.V)
		case Sub:
			return b.ctx.Float(lc.V - rc.V)
		case Mul:
			return b.ctx.Float(lc.V * rc.V)
		case CmpLT:
			return b.ctx.Bool(lc.V < rc.V)
		}
	}

	var t tp.Type = tp.Double

	switch op {
	case Add, Sub, Mul:
	case CmpLT:
		t = tp.Bool
	default:
		panic(fmt.Sprintf("not a binary op: %v", op))
	}

	return b.insert(&Instr{
		Op:   op,
		Name: name,
		T:    t,
		Args: []Value{l, r},
	})
}

// UIToFP converts an i1 into a double 0.0 or 1.0.
func (b *Builder) UIToFP(v Value, name string) Value {
	if c, ok := v.(*Const); ok {
		return b.ctx.Float(c.V)
	}

	return b.insert(&Instr{
		Op:   UIToFP,
		Name: name,
		T:    tp.Double,
		Args: []Value{v},
	})
}

func (b *Builder) Call(f *Function, args []Value, name string) Value {
	if len(args) != len(f.Params) {
		panic(fmt.Sprintf("call %v: %d args, want %d", f.Name, len(args), len(f.Params)))
	}

	return b.insert(&Instr{
		Op:     Call,
		Name:   name,
		T:      f.Sig.Out,
		Args:   append([]Value{}, args...),
		Callee: f,
	})
}

func (b *Builder) Ret(v Value) *Instr {
	return b.insert(&Instr{
		Op:   Ret,
		Args: []Value{v},
	})
}

func (b *Builder) insert(x *Instr) *Instr {
	if b.blk == nil {
		panic("builder has no insertion block")
	}

	if x.T != nil {
		if x.Name == "" {
			x.Name = "tmp"
		}

		x.Name = b.blk.Func.localName(x.Name)
	}

	x.Block = b.blk
	b.blk.Code = append(b.blk.Code, x)

	return x
}
