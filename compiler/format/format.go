package format

import (
	"context"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/kaleido/compiler/ast"
)

// Format appends x as an s-expression.
// x is an ast.Expr, ast.TopLevel or a slice of top-level forms.
func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	switch x := x.(type) {
	case []ast.TopLevel:
		return formatForms(ctx, b, x)
	case ast.TopLevel:
		return formatTopLevel(ctx, b, x)
	case ast.Expr:
		return formatExpr(ctx, b, x)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatTopLevel(ctx context.Context, b []byte, x ast.TopLevel) ([]byte, error) {
	switch x := x.(type) {
	case *ast.Function:
		return formatFunc(ctx, b, x)
	case *ast.Prototype:
		b = hfmt.Appendf(b, "(extern %s ", x.Name)
		b = formatParams(b, x.Params)
		b = append(b, ')')

		return b, nil
	default:
		return nil, errors.New("unsupported top-level form: %T", x)
	}
}

func formatForms(ctx context.Context, b []byte, l []ast.TopLevel) (_ []byte, err error) {
	for i, x := range l {
		b, err = formatTopLevel(ctx, b, x)
		if err != nil {
			return nil, errors.Wrap(err, "form %d", i)
		}

		b = append(b, '\n')
	}

	return b, nil
}

func formatFunc(ctx context.Context, b []byte, x *ast.Function) (_ []byte, err error) {
	if x.Anonymous() {
		b = append(b, "(expr "...)
	} else {
		b = hfmt.Appendf(b, "(def %s ", x.Proto.Name)
		b = formatParams(b, x.Proto.Params)
		b = append(b, ' ')
	}

	b, err = formatExpr(ctx, b, x.Body)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}

	b = append(b, ')')

	return b, nil
}

func formatParams(b []byte, l []string) []byte {
	b = append(b, '(')

	for i, p := range l {
		if i != 0 {
			b = append(b, ' ')
		}

		b = append(b, p...)
	}

	return append(b, ')')
}

func formatExpr(ctx context.Context, b []byte, x ast.Expr) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Null:
		b = append(b, "()"...)
	case *ast.Number:
		b = strconv.AppendFloat(b, x.Value, 'g', -1, 64)
	case *ast.Variable:
		b = append(b, x.Name...)
	case *ast.Binary:
		b = hfmt.Appendf(b, "(%v ", x.Op)

		b, err = formatExpr(ctx, b, x.Left)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = append(b, ' ')

		b, err = formatExpr(ctx, b, x.Right)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		b = append(b, ')')
	case *ast.Call:
		b = hfmt.Appendf(b, "(call %s", x.Callee)

		for i, a := range x.Args {
			b = append(b, ' ')

			b, err = formatExpr(ctx, b, a)
			if err != nil {
				return nil, errors.Wrap(err, "arg %d", i)
			}
		}

		b = append(b, ')')
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}
