package ast

import "github.com/slowlang/kaleido/compiler/lex"

type (
	// Expr is one of *Null, *Number, *Variable, *Binary, *Call.
	Expr interface {
		expr()
	}

	// TopLevel is one of *Function, *Prototype.
	TopLevel interface {
		topLevel()
	}

	Base struct {
		Pos int
	}

	Null struct {
		Base `tlog:",embed"`
	}

	Number struct {
		Base `tlog:",embed"`

		Value float64
	}

	Variable struct {
		Base `tlog:",embed"`

		Name string
	}

	Binary struct {
		Base `tlog:",embed"`

		Op lex.Kind

		Left  Expr
		Right Expr
	}

	Call struct {
		Base `tlog:",embed"`

		Callee string
		Args   []Expr
	}

	Prototype struct {
		Base `tlog:",embed"`

		Name   string
		Params []string
	}

	// Function is a definition or, when Proto.Name is empty,
	// a top-level expression wrapped to be lowered the same way.
	Function struct {
		Proto *Prototype
		Body  Expr
	}
)

func (*Null) expr()     {}
func (*Number) expr()   {}
func (*Variable) expr() {}
func (*Binary) expr()   {}
func (*Call) expr()     {}

func (*Prototype) topLevel() {}
func (*Function) topLevel()  {}

func (f *Function) Anonymous() bool {
	return f.Proto.Name == ""
}
