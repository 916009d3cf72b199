package tp

import (
	"github.com/nikandfor/hacked/hfmt"
)

type (
	Type interface {
		Size() int
		AppendText(b []byte) []byte
	}

	Func struct {
		In  []Type
		Out Type
	}

	Int struct {
		Bits int16
	}

	Float struct {
		Bits int16
	}
)

var (
	Double = Float{Bits: 64}
	Bool   = Int{Bits: 1}
)

func (x Int) Size() int {
	return (int(x.Bits) + 7) / 8
}

func (x Float) Size() int {
	return int(x.Bits) / 8
}

func (x Func) Size() int {
	return 8
}

func (x Int) AppendText(b []byte) []byte {
	return hfmt.Appendf(b, "i%d", x.Bits)
}

func (x Float) AppendText(b []byte) []byte {
	switch x.Bits {
	case 32:
		return append(b, "float"...)
	case 64:
		return append(b, "double"...)
	default:
		return hfmt.Appendf(b, "f%d", x.Bits)
	}
}

func (x Func) AppendText(b []byte) []byte {
	b = x.Out.AppendText(b)
	b = append(b, " ("...)

	for i, t := range x.In {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = t.AppendText(b)
	}

	return append(b, ')')
}

func String(t Type) string {
	return string(t.AppendText(nil))
}
