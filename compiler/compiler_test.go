package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/kaleido/compiler/codegen"
)

func TestCompile(t *testing.T) {
	obj, err := Compile(context.Background(), "test.kal", []byte(`
# comment
extern sin(x);
def twice(x) x + x
twice(sin(1))
`))
	require.NoError(t, err)

	assert.Equal(t, `; ModuleID = 'my cool jit'
source_filename = "my cool jit"

declare double @sin(double)

define double @twice(double %x) {
entry:
  %addtmp = fadd double %x, %x
  ret double %addtmp
}

define double @0() {
entry:
  %calltmp = call double @sin(double 1.000000e+00)
  %calltmp1 = call double @twice(double %calltmp)
  ret double %calltmp1
}
`, string(obj))
}

func TestCompileErrorPosition(t *testing.T) {
	_, err := Compile(context.Background(), "test.kal", []byte("def f(a) a\nf(b)\n"))
	require.Error(t, err)

	var uerr codegen.UnboundError
	require.ErrorAs(t, err, &uerr)

	pos, ok := Position(err)
	require.True(t, ok)
	assert.Equal(t, 13, pos)

	assert.Contains(t, err.Error(), "test.kal:2:3")
}

func TestCompileFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "a.kal")
	require.NoError(t, os.WriteFile(name, []byte("def one() 1"), 0o644))

	obj, err := CompileFile(context.Background(), name)
	require.NoError(t, err)
	assert.Contains(t, string(obj), "define double @one() {")

	_, err = CompileFile(context.Background(), filepath.Join(t.TempDir(), "missing.kal"))
	assert.Error(t, err)
}

func TestCompileFileConfig(t *testing.T) {
	name := filepath.Join(t.TempDir(), "b.kal")
	require.NoError(t, os.WriteFile(name, []byte("def two() 2; two()"), 0o644))

	obj, err := CompileFileConfig(context.Background(), Config{ModuleName: "mod"}, name)
	require.NoError(t, err)

	assert.Contains(t, string(obj), "; ModuleID = 'mod'\n")
	assert.Contains(t, string(obj), "define double @two() {")
	assert.NotContains(t, string(obj), "@0")
}

func TestEvalHugeNumber(t *testing.T) {
	s := New(Config{})
	defer s.Close()

	rs, err := s.Eval(context.Background(), []byte(strings.Repeat("9", 400)))
	require.NoError(t, err)
	require.Len(t, rs, 1)

	assert.Contains(t, string(rs[0].Text), "ret double 0x7FF0000000000000")
}

func TestEval(t *testing.T) {
	ctx := context.Background()

	s := New(Config{})
	defer s.Close()

	rs, err := s.Eval(ctx, []byte("extern sin(x); def f(a) sin(a) * 2"))
	require.NoError(t, err)
	require.Len(t, rs, 2)

	assert.Equal(t, Extern, rs[0].Kind)
	assert.Equal(t, "declare double @sin(double)\n", string(rs[0].Text))
	assert.Equal(t, Definition, rs[1].Kind)

	rs, err = s.Eval(ctx, []byte("f(1) + 2"))
	require.NoError(t, err)
	require.Len(t, rs, 1)

	assert.Equal(t, Expression, rs[0].Kind)
	assert.Equal(t, `define double @0() {
entry:
  %calltmp = call double @f(double 1.000000e+00)
  %addtmp = fadd double %calltmp, 2.000000e+00
  ret double %addtmp
}
`, string(rs[0].Text))

	assert.Len(t, s.Module().Functions(), 2, "top-level expressions are discarded after rendering")
}

func TestEvalErrorKeepsSession(t *testing.T) {
	ctx := context.Background()

	s := New(Config{ModuleName: "repl"})
	defer s.Close()

	_, err := s.Eval(ctx, []byte("def f(a) a"))
	require.NoError(t, err)

	for _, line := range []string{
		"def g(a) b",
		"def (a) a",
		"h(1)",
		"1 + 2.3.4",
		"f(1 2)",
		"def f(a b) a",
	} {
		_, err = s.Eval(ctx, []byte(line))
		assert.Error(t, err, "line %q", line)
	}

	rs, err := s.Eval(ctx, []byte("def g(b) f(b)"))
	require.NoError(t, err)
	require.Len(t, rs, 1)

	assert.Equal(t, `; ModuleID = 'repl'
source_filename = "repl"

define double @f(double %a) {
entry:
  ret double %a
}

define double @g(double %b) {
entry:
  %calltmp = call double @f(double %b)
  ret double %calltmp
}
`, string(s.Module().AppendText(nil)))
}

func TestEvalPartialLine(t *testing.T) {
	s := New(Config{})
	defer s.Close()

	rs, err := s.Eval(context.Background(), []byte("def a() 1; def b() x; def c() 3"))
	require.Error(t, err)

	require.Len(t, rs, 1)
	assert.Equal(t, "a", rs[0].Func.Name)

	assert.NotNil(t, s.Module().Function("a"))
	assert.Nil(t, s.Module().Function("b"))
	assert.Nil(t, s.Module().Function("c"))
}
