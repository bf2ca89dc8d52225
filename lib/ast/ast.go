// Package ast declares the node types of a Flat-B program.
//
// Statements and math expressions are closed sets of concrete types behind the
// Stmt and MathExpr interfaces. Consumers dispatch with type switches; Walk and
// Inspect visit nodes in document order.
package ast

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Node is implemented by every AST node.
type Node interface {
	Position() lexer.Position
}

// Stmt is a statement of a code block. Every statement may carry one label.
type Stmt interface {
	Node
	Label() string
	SetLabel(name string)
	stmtNode()
}

// MathExpr is an integer valued expression.
type MathExpr interface {
	Node
	exprNode()
}

// Op is an arithmetic operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpIdentity
)

var opNames = [...]string{
	OpAdd:      "add",
	OpSub:      "sub",
	OpMul:      "mult",
	OpDiv:      "div",
	OpNeg:      "unary_minus",
	OpIdentity: "identity",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "op(?)"
}

// Comparator is the relation tested by a CondExpr.
type Comparator int

const (
	Greater Comparator = iota
	GreaterEqual
	Less
	LessEqual
	Equal
	NotEqual
)

var comparatorSymbols = [...]string{
	Greater:      ">",
	GreaterEqual: ">=",
	Less:         "<",
	LessEqual:    "<=",
	Equal:        "==",
	NotEqual:     "!=",
}

func (c Comparator) String() string {
	if int(c) < len(comparatorSymbols) {
		return comparatorSymbols[c]
	}
	return "cmp(?)"
}

// ParseComparator maps a comparison token to its Comparator.
func ParseComparator(s string) (Comparator, bool) {
	for i, sym := range comparatorSymbols {
		if sym == s {
			return Comparator(i), true
		}
	}
	return 0, false
}

// IOKind selects the behaviour of an IOBlock.
type IOKind int

const (
	Print IOKind = iota
	Println
	Read
)

func (k IOKind) String() string {
	switch k {
	case Print:
		return "print"
	case Println:
		return "println"
	case Read:
		return "read"
	}
	return "io(?)"
}

// Program is the root node. Either block may be nil.
type Program struct {
	Pos   lexer.Position
	Decls *DeclBlock
	Code  *CodeBlock
}

func NewProgram(decls *DeclBlock, code *CodeBlock) *Program {
	return &Program{Decls: decls, Code: code}
}

func (p *Program) Position() lexer.Position { return p.Pos }

type DeclBlock struct {
	Pos        lexer.Position
	Statements []*DeclStatement
}

func (d *DeclBlock) Position() lexer.Position { return d.Pos }

func (d *DeclBlock) AddStatement(s *DeclStatement) {
	d.Statements = append(d.Statements, s)
}

// DeclStatement declares one or more variables of the same type.
type DeclStatement struct {
	Pos       lexer.Position
	Type      string
	Variables []*Variable
}

// NewDeclStatement stamps typ onto every variable.
func NewDeclStatement(typ string, vars []*Variable) *DeclStatement {
	for _, v := range vars {
		v.SetDataType(typ)
	}
	return &DeclStatement{Type: typ, Variables: vars}
}

func (d *DeclStatement) Position() lexer.Position { return d.Pos }

// Variable is a declared scalar or fixed length array.
type Variable struct {
	Pos     lexer.Position
	Name    string
	Type    string
	IsArray bool
	Length  int64
}

func NewScalar(name string) *Variable {
	return &Variable{Name: name}
}

func NewArray(name string, length int64) *Variable {
	return &Variable{Name: name, IsArray: true, Length: length}
}

func (v *Variable) SetDataType(typ string) { v.Type = typ }

func (v *Variable) Position() lexer.Position { return v.Pos }

// CodeBlock is an ordered statement list. Goto targets resolve within the
// innermost enclosing block that holds the label.
type CodeBlock struct {
	Pos        lexer.Position
	Statements []Stmt
}

func (b *CodeBlock) Position() lexer.Position { return b.Pos }

func (b *CodeBlock) AddStatement(s Stmt) {
	b.Statements = append(b.Statements, s)
}

// IndexOf returns the index of the statement labelled name, or -1.
func (b *CodeBlock) IndexOf(label string) int {
	if b == nil {
		return -1
	}
	for i, s := range b.Statements {
		if s.Label() == label {
			return i
		}
	}
	return -1
}

type stmt struct {
	Pos       lexer.Position
	LabelName string
}

func (s *stmt) Position() lexer.Position { return s.Pos }
func (s *stmt) Label() string            { return s.LabelName }
func (*stmt) stmtNode()                  {}

// SetLabel attaches a label. A statement is labelled at most once.
func (s *stmt) SetLabel(name string) {
	if s.LabelName != "" && s.LabelName != name {
		panic("ast: statement already labelled " + s.LabelName)
	}
	s.LabelName = name
}

// Assignment stores Value into Target. For chained forms (a = b = e) Chain
// holds the inner assignment and Value is nil.
type Assignment struct {
	stmt
	Target *TargetVar
	Value  MathExpr
	Chain  *Assignment
}

func NewAssignment(target *TargetVar, value MathExpr) *Assignment {
	target.SetTarget()
	return &Assignment{Target: target, Value: value}
}

func NewChainedAssignment(target *TargetVar, inner *Assignment) *Assignment {
	target.SetTarget()
	return &Assignment{Target: target, Chain: inner}
}

// ForLoop runs Body while the iterator is below Bound. Bound is evaluated
// before every iteration; Step defaults to 1 when nil.
type ForLoop struct {
	stmt
	Init  *Assignment
	Bound MathExpr
	Step  MathExpr
	Body  *CodeBlock
}

func NewForLoop(init *Assignment, bound, step MathExpr, body *CodeBlock) *ForLoop {
	return &ForLoop{Init: init, Bound: bound, Step: step, Body: body}
}

// Iterator returns the loop variable assigned by Init.
func (f *ForLoop) Iterator() *TargetVar { return f.Init.Target }

type WhileLoop struct {
	stmt
	Cond *CondExpr
	Body *CodeBlock
}

func NewWhileLoop(cond *CondExpr, body *CodeBlock) *WhileLoop {
	return &WhileLoop{Cond: cond, Body: body}
}

type IfElse struct {
	stmt
	Cond *CondExpr
	Then *CodeBlock
	Else *CodeBlock
}

func NewIfElse(cond *CondExpr, then, els *CodeBlock) *IfElse {
	return &IfElse{Cond: cond, Then: then, Else: els}
}

// GotoBlock jumps to Target, unconditionally when Cond is nil.
type GotoBlock struct {
	stmt
	Target string
	Cond   *CondExpr
}

func NewGoto(target string, cond *CondExpr) *GotoBlock {
	return &GotoBlock{Target: target, Cond: cond}
}

// IOBlock prints Text followed by the value of Expr, or reads into Expr.
type IOBlock struct {
	stmt
	Kind IOKind
	Text string
	Expr MathExpr
}

// NewIOBlock strips surrounding quotes from text. A read operand is used as
// an address.
func NewIOBlock(kind IOKind, text string, expr MathExpr) *IOBlock {
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		text = text[1 : len(text)-1]
	}
	if kind == Read {
		if t, ok := expr.(*TargetVar); ok {
			t.SetTarget()
		}
	}
	return &IOBlock{Kind: kind, Text: text, Expr: expr}
}

// CondExpr compares two math expressions; Negated inverts the result.
type CondExpr struct {
	Pos     lexer.Position
	Left    MathExpr
	Right   MathExpr
	Cmp     Comparator
	Negated bool
}

func NewCondExpr(left MathExpr, cmp Comparator, right MathExpr) *CondExpr {
	return &CondExpr{Left: left, Right: right, Cmp: cmp}
}

func (c *CondExpr) Position() lexer.Position { return c.Pos }

func (c *CondExpr) FlipNot() { c.Negated = !c.Negated }

type BinaryExpr struct {
	Pos         lexer.Position
	Left, Right MathExpr
	Op          Op
}

func NewBinary(left MathExpr, op Op, right MathExpr) *BinaryExpr {
	return &BinaryExpr{Left: left, Right: right, Op: op}
}

func (e *BinaryExpr) Position() lexer.Position { return e.Pos }
func (*BinaryExpr) exprNode()                  {}

// UnaryExpr is OpNeg or OpIdentity (a parenthesised expression).
type UnaryExpr struct {
	Pos     lexer.Position
	Operand MathExpr
	Op      Op
}

func NewUnary(op Op, operand MathExpr) *UnaryExpr {
	return &UnaryExpr{Operand: operand, Op: op}
}

func (e *UnaryExpr) Position() lexer.Position { return e.Pos }
func (*UnaryExpr) exprNode()                  {}

type Integer struct {
	Pos   lexer.Position
	Value int64
}

func NewInteger(v int64) *Integer { return &Integer{Value: v} }

func (e *Integer) Position() lexer.Position { return e.Pos }
func (*Integer) exprNode()                  {}

// TargetVar references a scalar or an array element. IsTarget marks address
// contexts (assignment targets, read operands) where no load happens.
type TargetVar struct {
	Pos      lexer.Position
	Name     string
	Index    MathExpr
	Negate   bool
	IsTarget bool
}

func NewTargetVar(name string, index MathExpr) *TargetVar {
	return &TargetVar{Name: name, Index: index}
}

func (t *TargetVar) Position() lexer.Position { return t.Pos }
func (*TargetVar) exprNode()                  {}

func (t *TargetVar) IsArray() bool { return t.Index != nil }

func (t *TargetVar) SetTarget() { t.IsTarget = true }

func (t *TargetVar) SetNegate() { t.Negate = true }
