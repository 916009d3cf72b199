package parse

import (
	"context"
	"fmt"
	"os"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/kaleido/compiler/ast"
	"github.com/slowlang/kaleido/compiler/lex"
)

type (
	Parser struct {
		l *lex.Lexer

		tk   lex.Token // lookahead
		err  error
		full bool
	}

	UnexpectedError struct {
		Token lex.Token
		Want  []lex.Kind
	}
)

// precedence of binary operators, higher binds tighter.
var precedence = map[lex.Kind]int{
	lex.Less:  10,
	lex.Plus:  20,
	lex.Minus: 30,
	lex.Star:  40,
}

func New(text []byte) *Parser {
	return &Parser{
		l: lex.New(text),
	}
}

func ParseFile(ctx context.Context, name string) ([]ast.TopLevel, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	return Parse(ctx, data)
}

// Parse parses all top-level forms of text.
func Parse(ctx context.Context, text []byte) (l []ast.TopLevel, err error) {
	p := New(text)

	for !p.Done() {
		x, err := p.ParseTopLevel(ctx)
		if err != nil {
			return l, err
		}

		if x != nil {
			l = append(l, x)
		}
	}

	return l, nil
}

// Done reports whether the next token is EOF.
func (p *Parser) Done() bool {
	tk, err := p.peek()

	return err == nil && tk.Kind == lex.EOF
}

// ParseTopLevel parses one definition, extern or expression.
// It returns nil node at EOF and after consuming a ';'.
func (p *Parser) ParseTopLevel(ctx context.Context) (x ast.TopLevel, err error) {
	tk, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch tk.Kind {
	case lex.EOF:
		return nil, nil
	case lex.Semicolon:
		_, err = p.next(ctx)

		return nil, err
	case lex.Def:
		return p.parseDefinition(ctx)
	case lex.Extern:
		return p.parseExtern(ctx)
	}

	body, err := p.ParseExpr(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "top-level expression")
	}

	return &ast.Function{
		Proto: &ast.Prototype{Base: ast.Base{Pos: tk.Pos}},
		Body:  body,
	}, nil
}

func (p *Parser) parseDefinition(ctx context.Context) (x *ast.Function, err error) {
	_, err = p.next(ctx) // def
	if err != nil {
		return nil, err
	}

	proto, err := p.parsePrototype(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "def")
	}

	body, err := p.ParseExpr(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "def %v: body", proto.Name)
	}

	tlog.SpanFromContext(ctx).Printw("definition", "name", proto.Name, "params", proto.Params)

	return &ast.Function{
		Proto: proto,
		Body:  body,
	}, nil
}

func (p *Parser) parseExtern(ctx context.Context) (x *ast.Prototype, err error) {
	_, err = p.next(ctx) // extern
	if err != nil {
		return nil, err
	}

	x, err = p.parsePrototype(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "extern")
	}

	tlog.SpanFromContext(ctx).Printw("extern", "name", x.Name, "params", x.Params)

	return x, nil
}

func (p *Parser) parsePrototype(ctx context.Context) (x *ast.Prototype, err error) {
	name, err := p.expect(ctx, lex.Ident)
	if err != nil {
		return nil, errors.Wrap(err, "prototype name")
	}

	_, err = p.expect(ctx, lex.LParen)
	if err != nil {
		return nil, errors.Wrap(err, "prototype %v", name.Name)
	}

	x = &ast.Prototype{
		Base: ast.Base{Pos: name.Pos},
		Name: name.Name,
	}

	for {
		tk, err := p.peek()
		if err != nil {
			return nil, err
		}

		if tk.Kind != lex.Ident {
			break
		}

		_, _ = p.next(ctx)

		x.Params = append(x.Params, tk.Name)
	}

	_, err = p.expect(ctx, lex.RParen, lex.Ident)
	if err != nil {
		return nil, errors.Wrap(err, "prototype %v", name.Name)
	}

	return x, nil
}

// ParseExpr parses a primary followed by any binary operator chain.
func (p *Parser) ParseExpr(ctx context.Context) (x ast.Expr, err error) {
	lhs, err := p.parsePrimary(ctx)
	if err != nil {
		return nil, err
	}

	return p.parseBinOpRHS(ctx, 0, lhs)
}

func (p *Parser) parseBinOpRHS(ctx context.Context, min int, lhs ast.Expr) (_ ast.Expr, err error) {
	for {
		tk, err := p.peek()
		if err != nil {
			return nil, err
		}

		prec, ok := precedence[tk.Kind]
		if !ok || prec < min {
			return lhs, nil
		}

		op, _ := p.next(ctx)

		rhs, err := p.parsePrimary(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "rhs of %v", op.Kind)
		}

		tk, err = p.peek()
		if err != nil {
			return nil, err
		}

		// the floor is the consumed operator's precedence, not the next one's
		if next, ok := precedence[tk.Kind]; ok && next > prec {
			rhs, err = p.parseBinOpRHS(ctx, prec, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = &ast.Binary{
			Base:  ast.Base{Pos: op.Pos},
			Op:    op.Kind,
			Left:  lhs,
			Right: rhs,
		}
	}
}

func (p *Parser) parsePrimary(ctx context.Context) (x ast.Expr, err error) {
	tk, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch tk.Kind {
	case lex.Ident:
		return p.parseIdentExpr(ctx)
	case lex.Number:
		_, _ = p.next(ctx)

		return &ast.Number{Base: ast.Base{Pos: tk.Pos}, Value: tk.Num}, nil
	case lex.LParen:
		return p.parseParenExpr(ctx)
	default:
		return nil, NewUnexpected(tk, lex.Ident, lex.Number, lex.LParen)
	}
}

func (p *Parser) parseParenExpr(ctx context.Context) (x ast.Expr, err error) {
	open, _ := p.next(ctx) // (

	tk, err := p.peek()
	if err != nil {
		return nil, err
	}

	if tk.Kind == lex.RParen {
		_, _ = p.next(ctx)

		return &ast.Null{Base: ast.Base{Pos: open.Pos}}, nil
	}

	x, err = p.ParseExpr(ctx)
	if err != nil {
		return nil, err
	}

	_, err = p.expect(ctx, lex.RParen)
	if err != nil {
		return nil, errors.Wrap(err, "parenthesized expression at pos 0x%x", open.Pos)
	}

	return x, nil
}

func (p *Parser) parseIdentExpr(ctx context.Context) (x ast.Expr, err error) {
	name, _ := p.next(ctx)

	tk, err := p.peek()
	if err != nil {
		return nil, err
	}

	if tk.Kind != lex.LParen {
		return &ast.Variable{Base: ast.Base{Pos: name.Pos}, Name: name.Name}, nil
	}

	_, _ = p.next(ctx) // (

	call := &ast.Call{
		Base:   ast.Base{Pos: name.Pos},
		Callee: name.Name,
	}

	tk, err = p.peek()
	if err != nil {
		return nil, err
	}

	if tk.Kind != lex.RParen {
		for {
			arg, err := p.ParseExpr(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "call %v: arg %d", name.Name, len(call.Args))
			}

			call.Args = append(call.Args, arg)

			tk, err = p.peek()
			if err != nil {
				return nil, err
			}

			if tk.Kind == lex.RParen {
				break
			}

			if tk.Kind != lex.Comma {
				return nil, errors.Wrap(NewUnexpected(tk, lex.RParen, lex.Comma), "call %v", name.Name)
			}

			_, _ = p.next(ctx) // ,
		}
	}

	_, _ = p.next(ctx) // )

	return call, nil
}

// expect consumes the next token if it is of kind want.
// Extra kinds are only reported in the error.
func (p *Parser) expect(ctx context.Context, want lex.Kind, also ...lex.Kind) (tk lex.Token, err error) {
	tk, err = p.peek()
	if err != nil {
		return tk, err
	}

	if tk.Kind != want {
		return tk, NewUnexpected(tk, append([]lex.Kind{want}, also...)...)
	}

	return p.next(ctx)
}

func (p *Parser) peek() (lex.Token, error) {
	if p.full || p.err != nil {
		return p.tk, p.err
	}

	p.tk, p.err = p.l.Next()
	p.full = p.err == nil

	return p.tk, p.err
}

func (p *Parser) next(ctx context.Context) (tk lex.Token, err error) {
	tk, err = p.peek()
	if err != nil {
		return tk, err
	}

	p.full = false

	if tr := tlog.SpanFromContext(ctx); tr.If("next_token") {
		tr.Printw("next token", "tk", tk.String(), "kind", tk.Kind, "pos", tk.Pos, "from", loc.Callers(1, 3))
	}

	return tk, nil
}

func NewUnexpected(got lex.Token, want ...lex.Kind) error {
	return UnexpectedError{
		Token: got,
		Want:  want,
	}
}

func (e UnexpectedError) Error() string {
	l := make([]string, len(e.Want))

	for i := range e.Want {
		l[i] = e.Want[i].String()
	}

	return fmt.Sprintf("unexpected token: %q at pos 0x%x, want: %v", e.Token.String(), e.Token.Pos, strings.Join(l, ", "))
}

func (e UnexpectedError) Position() int { return e.Token.Pos }
