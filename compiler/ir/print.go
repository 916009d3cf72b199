package ir

import (
	"math"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/kaleido/compiler/tp"
)

// AppendValue renders v the way LLVM's Value::print does:
// constants and params as typed operands, instructions as a full line.
func AppendValue(b []byte, v Value) []byte {
	switch v := v.(type) {
	case *Instr:
		return appendInstr(b, v)
	case *Function:
		return AppendFunction(b, v)
	default:
		return appendOperand(b, v)
	}
}

// AppendFunction renders a declaration or a definition.
func AppendFunction(b []byte, f *Function) []byte {
	if !f.HasBody() {
		b = append(b, "declare "...)
		b = f.Sig.Out.AppendText(b)
		b = append(b, ' ')
		b = appendGlobal(b, f)
		b = append(b, '(')

		for i, t := range f.Sig.In {
			if i != 0 {
				b = append(b, ", "...)
			}

			b = t.AppendText(b)
		}

		return append(b, ")\n"...)
	}

	b = append(b, "define "...)
	b = f.Sig.Out.AppendText(b)
	b = append(b, ' ')
	b = appendGlobal(b, f)
	b = append(b, '(')

	for i, p := range f.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = appendOperand(b, p)
	}

	b = append(b, ") {\n"...)

	for i, blk := range f.Blocks {
		if i != 0 {
			b = append(b, '\n')
		}

		b = hfmt.Appendf(b, "%s:\n", blk.Name)

		for _, x := range blk.Code {
			b = append(b, "  "...)
			b = appendInstr(b, x)
			b = append(b, '\n')
		}
	}

	return append(b, "}\n"...)
}

// AppendText renders the whole module.
func (m *Module) AppendText(b []byte) []byte {
	b = hfmt.Appendf(b, "; ModuleID = '%s'\nsource_filename = %q\n", m.Name, m.Name)

	for _, f := range m.funcs {
		b = append(b, '\n')
		b = AppendFunction(b, f)
	}

	return b
}

func appendInstr(b []byte, x *Instr) []byte {
	if x.T != nil {
		b = hfmt.Appendf(b, "%%%s = ", x.Name)
	}

	switch x.Op {
	case Add, Sub, Mul, CmpLT:
		b = hfmt.Appendf(b, "%v ", x.Op)
		b = x.Args[0].Type().AppendText(b)
		b = append(b, ' ')
		b = appendRef(b, x.Args[0])
		b = append(b, ", "...)
		b = appendRef(b, x.Args[1])
	case UIToFP:
		b = append(b, "uitofp "...)
		b = appendOperand(b, x.Args[0])
		b = append(b, " to "...)
		b = x.T.AppendText(b)
	case Call:
		b = append(b, "call "...)
		b = x.T.AppendText(b)
		b = append(b, ' ')
		b = appendGlobal(b, x.Callee)
		b = append(b, '(')

		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b = appendOperand(b, a)
		}

		b = append(b, ')')
	case Ret:
		b = append(b, "ret "...)
		b = appendOperand(b, x.Args[0])
	default:
		b = hfmt.Appendf(b, "<%v>", x.Op)
	}

	return b
}

// appendOperand renders a typed operand: "double %a".
func appendOperand(b []byte, v Value) []byte {
	b = v.Type().AppendText(b)
	b = append(b, ' ')

	return appendRef(b, v)
}

func appendRef(b []byte, v Value) []byte {
	switch v := v.(type) {
	case *Const:
		return appendConst(b, v)
	case *Param:
		return hfmt.Appendf(b, "%%%s", v.Name)
	case *Instr:
		return hfmt.Appendf(b, "%%%s", v.Name)
	case *Function:
		return appendGlobal(b, v)
	default:
		return hfmt.Appendf(b, "<%T>", v)
	}
}

func appendGlobal(b []byte, f *Function) []byte {
	if f.Name == "" {
		return hfmt.Appendf(b, "@%d", f.Slot)
	}

	return hfmt.Appendf(b, "@%s", f.Name)
}

func appendConst(b []byte, c *Const) []byte {
	if _, ok := c.T.(tp.Int); ok {
		if c.V != 0 {
			return append(b, "true"...)
		}

		return append(b, "false"...)
	}

	return AppendFloat(b, c.V)
}

// AppendFloat prints v in LLVM's format: %e when it round-trips, hex otherwise.
func AppendFloat(b []byte, v float64) []byte {
	if !math.IsInf(v, 0) && !math.IsNaN(v) {
		s := strconv.FormatFloat(v, 'e', 6, 64)

		if r, err := strconv.ParseFloat(s, 64); err == nil && r == v {
			return append(b, s...)
		}
	}

	return hfmt.Appendf(b, "0x%016X", math.Float64bits(v))
}

func tlogAppend(b []byte, v Value) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, string(AppendValue(nil, v)))
}

func (x *Const) TlogAppend(b []byte) []byte    { return tlogAppend(b, x) }
func (x *Param) TlogAppend(b []byte) []byte    { return tlogAppend(b, x) }
func (x *Instr) TlogAppend(b []byte) []byte    { return tlogAppend(b, x) }
func (f *Function) TlogAppend(b []byte) []byte { return tlogAppend(b, f) }

func (x *Const) String() string    { return string(AppendValue(nil, x)) }
func (x *Param) String() string    { return string(AppendValue(nil, x)) }
func (x *Instr) String() string    { return string(AppendValue(nil, x)) }
func (f *Function) String() string { return string(AppendFunction(nil, f)) }
