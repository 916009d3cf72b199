package ir

const DefaultModuleName = "my cool jit"

// Session is one compilation stream: a context, a builder and a module.
// It is not safe for concurrent use.
type Session struct {
	Context *Context
	Builder *Builder
	Module  *Module
}

func NewSession(name string) *Session {
	if name == "" {
		name = DefaultModuleName
	}

	ctx := NewContext()

	return &Session{
		Context: ctx,
		Builder: NewBuilder(ctx),
		Module:  NewModule(name, ctx),
	}
}

// Close releases the module. The session must not be used afterwards.
func (s *Session) Close() {
	for _, f := range append([]*Function{}, s.Module.funcs...) {
		s.Module.Remove(f)
	}

	s.Builder.Reset()

	s.Context = nil
	s.Builder = nil
	s.Module = nil
}
