package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinition(t *testing.T) {
	s := NewSession("")
	defer s.Close()

	f, err := s.Module.Declare("foo", []string{"a", "b"})
	require.NoError(t, err)

	require.NoError(t, s.Builder.AttachBody(f))

	a, b := f.Params[0], f.Params[1]

	sum := s.Builder.Binary(Add, a, b, "addtmp")
	prod := s.Builder.Binary(Mul, sum, s.Context.Float(2), "multmp")
	cmp := s.Builder.Binary(CmpLT, prod, a, "cmptmp")
	s.Builder.Ret(s.Builder.UIToFP(cmp, "booltmp"))

	assert.Equal(t, `define double @foo(double %a, double %b) {
entry:
  %addtmp = fadd double %a, %b
  %multmp = fmul double %addtmp, 2.000000e+00
  %cmptmp = fcmp olt double %multmp, %a
  %booltmp = uitofp i1 %cmptmp to double
  ret double %booltmp
}
`, f.String())

	assert.Equal(t, "%addtmp = fadd double %a, %b", sum.(*Instr).String())
}

func TestDeclaration(t *testing.T) {
	s := NewSession("test")
	defer s.Close()

	f, err := s.Module.Declare("sin", []string{"x"})
	require.NoError(t, err)

	assert.Equal(t, "declare double @sin(double)\n", f.String())
	assert.Same(t, f, s.Module.Function("sin"))
	assert.Nil(t, s.Module.Function("cos"))

	assert.Equal(t, `; ModuleID = 'test'
source_filename = "test"

declare double @sin(double)
`, string(s.Module.AppendText(nil)))
}

func TestConstantFolding(t *testing.T) {
	s := NewSession("")
	defer s.Close()

	c := s.Context
	bl := s.Builder

	v := bl.Binary(Add, c.Float(1), bl.Binary(Mul, c.Float(2), c.Float(3), "multmp"), "addtmp")
	assert.Same(t, c.Float(7), v)
	assert.Equal(t, "double 7.000000e+00", v.(*Const).String())

	lt := bl.Binary(CmpLT, c.Float(1), c.Float(2), "cmptmp")
	assert.Same(t, c.Bool(true), lt)
	assert.Equal(t, "i1 true", lt.(*Const).String())
	assert.Same(t, c.Float(1), bl.UIToFP(lt, "booltmp"))

	assert.Same(t, c.Float(-1), bl.Binary(Sub, c.Float(1), c.Float(2), "subtmp"))

	assert.Nil(t, bl.Block(), "folding must not need an insertion block")
}

func TestRedeclaration(t *testing.T) {
	s := NewSession("")
	defer s.Close()

	m := s.Module

	f, err := m.Declare("foo", []string{"x"})
	require.NoError(t, err)

	g, err := m.Declare("foo", []string{"y"})
	require.NoError(t, err)
	assert.Same(t, f, g)
	assert.Equal(t, []string{"y"}, f.ParamNames())

	_, err = m.Declare("foo", []string{"a", "b"})
	assert.Error(t, err)

	require.NoError(t, s.Builder.AttachBody(f))
	s.Builder.Ret(f.Params[0])

	assert.Error(t, s.Builder.AttachBody(f))

	_, err = m.Declare("foo", []string{"z"})
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, f.ParamNames(), "defined function keeps its names")

	assert.Len(t, m.Functions(), 1)
}

func TestAnonymousSlots(t *testing.T) {
	s := NewSession("")
	defer s.Close()

	f0, err := s.Module.Declare("", nil)
	require.NoError(t, err)

	f1, err := s.Module.Declare("", nil)
	require.NoError(t, err)

	assert.NotSame(t, f0, f1)

	require.NoError(t, s.Builder.AttachBody(f1))
	s.Builder.Ret(s.Context.Float(0.5))

	assert.Equal(t, `define double @1() {
entry:
  ret double 5.000000e-01
}
`, f1.String())

	s.Module.Remove(f0)
	assert.Equal(t, []*Function{f1}, s.Module.Functions())
}

func TestLocalNames(t *testing.T) {
	s := NewSession("")
	defer s.Close()

	f, err := s.Module.Declare("f", []string{"a", "a"})
	require.NoError(t, err)
	require.NoError(t, s.Builder.AttachBody(f))

	x := s.Builder.Binary(Add, f.Params[0], f.Params[1], "a")
	y := s.Builder.Binary(Add, x, x, "addtmp")
	z := s.Builder.Binary(Add, y, y, "addtmp")

	assert.Equal(t, []string{"a", "a1"}, f.ParamNames())
	assert.Equal(t, "a2", x.(*Instr).Name)
	assert.Equal(t, "addtmp", y.(*Instr).Name)
	assert.Equal(t, "addtmp1", z.(*Instr).Name)
}

func TestEntryShadowsParam(t *testing.T) {
	s := NewSession("")
	defer s.Close()

	f, err := s.Module.Declare("f", []string{"entry"})
	require.NoError(t, err)
	require.NoError(t, s.Builder.AttachBody(f))

	x := s.Builder.Binary(Add, f.Params[0], f.Params[0], "entry")
	s.Builder.Ret(x)

	assert.Equal(t, `define double @f(double %entry) {
entry1:
  %entry2 = fadd double %entry, %entry
  ret double %entry2
}
`, f.String())
}

func TestDropBody(t *testing.T) {
	s := NewSession("")
	defer s.Close()

	f, err := s.Module.Declare("f", []string{"a"})
	require.NoError(t, err)
	require.NoError(t, s.Builder.AttachBody(f))

	s.Builder.Binary(Add, f.Params[0], f.Params[0], "addtmp")

	f.DropBody()
	assert.False(t, f.HasBody())

	require.NoError(t, s.Builder.AttachBody(f))

	x := s.Builder.Binary(Add, f.Params[0], f.Params[0], "addtmp")
	assert.Equal(t, "addtmp", x.(*Instr).Name)
}

func TestAppendFloat(t *testing.T) {
	for _, tc := range []struct {
		v    float64
		want string
	}{
		{0, "0.000000e+00"},
		{1, "1.000000e+00"},
		{0.1, "1.000000e-01"},
		{1234.5, "1.234500e+03"},
		{0.123456789, "0x3FBF9ADD3739635F"},
	} {
		assert.Equal(t, tc.want, string(AppendFloat(nil, tc.v)), "value %v", tc.v)
	}
}

func TestCall(t *testing.T) {
	s := NewSession("")
	defer s.Close()

	sin, err := s.Module.Declare("sin", []string{"x"})
	require.NoError(t, err)

	f, err := s.Module.Declare("", nil)
	require.NoError(t, err)
	require.NoError(t, s.Builder.AttachBody(f))

	v := s.Builder.Call(sin, []Value{s.Context.Float(1)}, "calltmp")
	s.Builder.Ret(v)

	assert.Equal(t, "%calltmp = call double @sin(double 1.000000e+00)", v.(*Instr).String())

	assert.Panics(t, func() {
		s.Builder.Call(sin, nil, "calltmp")
	})
}
