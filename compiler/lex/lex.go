package lex

import (
	"fmt"
	"io"
	"strconv"
	"unicode"
	"unicode/utf8"

	"tlog.app/go/errors"
)

type (
	Kind int

	Token struct {
		Kind Kind
		Pos  int

		Name string  // Ident
		Num  float64 // Number
	}

	// Lexer is a forward-only scanner over a single input.
	// It yields exactly one EOF token and io.EOF after that.
	Lexer struct {
		b []byte
		i int

		eof bool
	}

	Error struct {
		Pos int
		Msg string
	}
)

const (
	EOF Kind = iota
	Def
	Extern
	Less
	Plus
	Minus
	Star
	LParen
	RParen
	Comma
	Semicolon
	Ident
	Number
)

var kindNames = [...]string{
	EOF:       "EOF",
	Def:       "def",
	Extern:    "extern",
	Less:      "<",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	LParen:    "(",
	RParen:    ")",
	Comma:     ",",
	Semicolon: ";",
	Ident:     "identifier",
	Number:    "number",
}

var keywords = map[string]Kind{
	"def":    Def,
	"extern": Extern,
}

func New(b []byte) *Lexer {
	return &Lexer{b: b}
}

func NewString(s string) *Lexer {
	return New([]byte(s))
}

// Next returns the next token.
func (l *Lexer) Next() (t Token, err error) {
	if l.eof {
		return Token{Kind: EOF, Pos: len(l.b)}, io.EOF
	}

	st := skipSpaces(l.b, l.i)
	l.i = st

	if st == len(l.b) {
		l.eof = true

		return Token{Kind: EOF, Pos: st}, nil
	}

	c := l.b[st]

	switch {
	case isLetter(l.b, st):
		e := skipIdent(l.b, st)
		l.i = e

		name := string(l.b[st:e])

		if k, ok := keywords[name]; ok {
			return Token{Kind: k, Pos: st}, nil
		}

		return Token{Kind: Ident, Pos: st, Name: name}, nil
	case isDigit(c) || c == '.':
		e := skipNum(l.b, st)
		l.i = e

		v, err := parseNum(l.b[st:e])
		if err != nil {
			return Token{}, &Error{Pos: st, Msg: err.Error()}
		}

		return Token{Kind: Number, Pos: st, Num: v}, nil
	}

	var k Kind

	switch c {
	case '<':
		k = Less
	case '+':
		k = Plus
	case '-':
		k = Minus
	case '*':
		k = Star
	case '(':
		k = LParen
	case ')':
		k = RParen
	case ',':
		k = Comma
	case ';':
		k = Semicolon
	default:
		r, _ := utf8.DecodeRune(l.b[st:])

		return Token{}, &Error{Pos: st, Msg: fmt.Sprintf("unexpected character %q", r)}
	}

	l.i = st + 1

	return Token{Kind: k, Pos: st}, nil
}

// All scans the whole input, including the trailing EOF token.
func All(b []byte) (ts []Token, err error) {
	l := New(b)

	for {
		t, err := l.Next()
		if err != nil {
			return ts, err
		}

		ts = append(ts, t)

		if t.Kind == EOF {
			return ts, nil
		}
	}
}

// LineCol converts a byte offset into 1-based line and column.
func LineCol(b []byte, pos int) (line, col int) {
	line, col = 1, 1

	for i := 0; i < pos && i < len(b); i++ {
		if b[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	return
}

func parseNum(b []byte) (float64, error) {
	dots := 0

	for _, c := range b {
		if c == '.' {
			dots++
		}
	}

	if dots > 1 {
		return 0, errors.New("malformed number %q", b)
	}

	// Out of range literals are well formed: they become ±Inf or 0.
	v, err := strconv.ParseFloat(string(b), 64)
	if errors.Is(err, strconv.ErrRange) {
		return v, nil
	}
	if err != nil {
		return 0, errors.New("malformed number %q", b)
	}

	return v, nil
}

func skipSpaces(b []byte, i int) int {
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			i++
			continue
		case '#':
			i = skipLine(b, i)
			continue
		}

		break
	}

	return i
}

func skipLine(b []byte, i int) int {
	for i < len(b) && b[i] != '\n' {
		i++
	}

	return i
}

func skipIdent(b []byte, i int) int {
	for i < len(b) {
		r, size := utf8.DecodeRune(b[i:])
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			break
		}

		i += size
	}

	return i
}

func skipNum(b []byte, i int) int {
	for i < len(b) && (isDigit(b[i]) || b[i] == '.') {
		i++
	}

	return i
}

func isLetter(b []byte, i int) bool {
	r, _ := utf8.DecodeRune(b[i:])

	return unicode.IsLetter(r)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

func (t Token) String() string {
	switch t.Kind {
	case Ident:
		return t.Name
	case Number:
		return strconv.FormatFloat(t.Num, 'g', -1, 64)
	default:
		return t.Kind.String()
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at pos 0x%x", e.Msg, e.Pos)
}

func (e *Error) Position() int { return e.Pos }
