// Package diag defines the errors reported by the analyzer, the interpreter
// and the code generator.
package diag

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind classifies an Error.
type Kind int

const (
	DuplicateDeclaration Kind = iota + 1
	DuplicateLabel
	UndeclaredIdentifier
	KindMismatch
	UndefinedLabel
	GotoOutOfScope
	DivisionByZero
	InvalidArraySize
	ArrayIndexOutOfBounds
	ReadError
	LoweringError
)

var kindNames = map[Kind]string{
	DuplicateDeclaration:  "duplicate declaration",
	DuplicateLabel:        "duplicate label",
	UndeclaredIdentifier:  "undeclared identifier",
	KindMismatch:          "kind mismatch",
	UndefinedLabel:        "undefined label",
	GotoOutOfScope:        "goto out of scope",
	DivisionByZero:        "division by zero",
	InvalidArraySize:      "invalid array size",
	ArrayIndexOutOfBounds: "array index out of bounds",
	ReadError:             "read error",
	LoweringError:         "lowering error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error lets a bare Kind be used as an errors.Is target.
func (k Kind) Error() string { return k.String() }

// Error is a single diagnostic.
type Error struct {
	Kind Kind
	Name string
	Pos  lexer.Position
	Msg  string
}

func Errorf(kind Kind, name string, pos lexer.Position, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Name: name, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func New(kind Kind, name string, pos lexer.Position) *Error {
	return &Error{Kind: kind, Name: name, Pos: pos}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Pos.Line > 0 {
		b.WriteString(e.Pos.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	return b.String()
}

// Is reports whether target is the same Kind or an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return e.Kind == t
	case *Error:
		return e.Kind == t.Kind && (t.Name == "" || t.Name == e.Name)
	}
	return false
}

// List accumulates diagnostics so a pass can report more than one.
type List []*Error

func (l *List) Add(err *Error) { *l = append(*l, err) }

func (l *List) Addf(kind Kind, name string, pos lexer.Position, format string, args ...interface{}) {
	l.Add(Errorf(kind, name, pos, format, args...))
}

func (l List) Len() int { return len(l) }

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%s (and %d more errors)\n%s", l[0].Error(), len(l)-1, strings.Join(msgs, "\n"))
}

// Unwrap exposes every diagnostic to errors.Is and errors.As.
func (l List) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Err returns nil for an empty list.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
