package ir

import (
	"math"
	"strconv"

	"tlog.app/go/errors"

	"github.com/slowlang/kaleido/compiler/tp"
)

type (
	// Value is one of *Const, *Param, *Instr, *Function.
	Value interface {
		Type() tp.Type
	}

	Op int

	Context struct {
		consts map[constKey]*Const
	}

	constKey struct {
		T    tp.Type
		Bits uint64
	}

	Const struct {
		T tp.Type
		V float64
	}

	Param struct {
		Func  *Function
		Index int
		Name  string
	}

	Instr struct {
		Op   Op
		Name string
		T    tp.Type

		Args   []Value
		Callee *Function

		Block *Block
	}

	Block struct {
		Name string
		Func *Function
		Code []*Instr
	}

	Function struct {
		Name string
		Sig  tp.Func

		// Slot numbers unnamed functions the way LLVM prints them: @0, @1.
		Slot int

		Params []*Param
		Blocks []*Block

		mod   *Module
		names map[string]int
	}

	Module struct {
		Name string

		ctx *Context

		funcs  []*Function
		byName map[string]*Function

		slots int
	}
)

const (
	_ Op = iota
	Add
	Sub
	Mul
	CmpLT
	UIToFP
	Call
	Ret
)

var opNames = [...]string{
	Add:    "fadd",
	Sub:    "fsub",
	Mul:    "fmul",
	CmpLT:  "fcmp olt",
	UIToFP: "uitofp",
	Call:   "call",
	Ret:    "ret",
}

func NewContext() *Context {
	return &Context{
		consts: make(map[constKey]*Const),
	}
}

// Float returns the uniqued double constant v.
func (c *Context) Float(v float64) *Const {
	return c.constant(tp.Double, v)
}

// Bool returns the uniqued i1 constant.
func (c *Context) Bool(v bool) *Const {
	if v {
		return c.constant(tp.Bool, 1)
	}

	return c.constant(tp.Bool, 0)
}

func (c *Context) constant(t tp.Type, v float64) *Const {
	k := constKey{T: t, Bits: math.Float64bits(v)}

	if x, ok := c.consts[k]; ok {
		return x
	}

	x := &Const{T: t, V: v}
	c.consts[k] = x

	return x
}

func NewModule(name string, ctx *Context) *Module {
	return &Module{
		Name:   name,
		ctx:    ctx,
		byName: make(map[string]*Function),
	}
}

func (m *Module) Context() *Context { return m.ctx }

// Function looks up a declared or defined function by name.
func (m *Module) Function(name string) *Function {
	if name == "" {
		return nil
	}

	return m.byName[name]
}

func (m *Module) Functions() []*Function { return m.funcs }

// Declare returns the function with the given name, creating it if needed.
// An existing function is reused if the parameter count matches.
// Its parameters are renamed unless it already has a body.
// An empty name always creates a new unnamed function.
func (m *Module) Declare(name string, params []string) (*Function, error) {
	if f := m.Function(name); f != nil {
		if len(f.Params) != len(params) {
			return nil, errors.New("function %v redeclared with %d params, had %d", name, len(params), len(f.Params))
		}

		if !f.HasBody() {
			f.Rename(params)
		}

		return f, nil
	}

	f := &Function{
		Name: name,
		Slot: -1,
		mod:  m,
	}

	f.Sig.Out = tp.Double
	f.Sig.In = make([]tp.Type, len(params))

	for i := range params {
		f.Sig.In[i] = tp.Double
		f.Params = append(f.Params, &Param{Func: f, Index: i})
	}

	f.Rename(params)

	if name == "" {
		f.Slot = m.slots
		m.slots++
	} else {
		m.byName[name] = f
	}

	m.funcs = append(m.funcs, f)

	return f, nil
}

// Remove erases f from the module.
func (m *Module) Remove(f *Function) {
	for i, x := range m.funcs {
		if x == f {
			m.funcs = append(m.funcs[:i], m.funcs[i+1:]...)
			break
		}
	}

	if f.Name != "" && m.byName[f.Name] == f {
		delete(m.byName, f.Name)
	}

	f.mod = nil
}

func (f *Function) Module() *Module { return f.mod }

func (f *Function) HasBody() bool { return len(f.Blocks) != 0 }

// DropBody turns a definition back into a declaration.
func (f *Function) DropBody() {
	f.Blocks = nil
	f.Rename(f.ParamNames())
}

func (f *Function) ParamNames() []string {
	l := make([]string, len(f.Params))

	for i, p := range f.Params {
		l[i] = p.Name
	}

	return l
}

// Rename sets parameter names and resets the local name table.
func (f *Function) Rename(names []string) {
	f.names = make(map[string]int)

	for i, p := range f.Params {
		p.Name = ""

		if i < len(names) {
			p.Name = f.localName(names[i])
		}
	}
}

// localName makes name unique within the function by adding a numeric suffix.
func (f *Function) localName(name string) string {
	if name == "" {
		return ""
	}

	n, ok := f.names[name]
	if !ok {
		f.names[name] = 1
		return name
	}

	for ; ; n++ {
		alt := name + strconv.Itoa(n)
		if _, ok := f.names[alt]; ok {
			continue
		}

		f.names[name] = n + 1
		f.names[alt] = 1

		return alt
	}
}

func (x *Const) Type() tp.Type { return x.T }
func (x *Param) Type() tp.Type { return tp.Double }
func (x *Instr) Type() tp.Type { return x.T }

func (f *Function) Type() tp.Type { return f.Sig }

// In returns instruction operands.
func (x *Instr) In() []Value { return x.Args }

func (op Op) String() string {
	if op <= 0 || int(op) >= len(opNames) {
		return "op(" + strconv.Itoa(int(op)) + ")"
	}

	return opNames[op]
}
