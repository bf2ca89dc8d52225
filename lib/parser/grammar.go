package parser

import "github.com/alecthomas/participle/v2/lexer"

// The types below are the participle grammar. They are converted to lib/ast
// nodes by build.go; nothing outside this package sees them.

type Program struct {
	Pos  lexer.Position
	Decl *DeclBlock `parser:"@@?"`
	Code *CodeBlock `parser:"@@?"`
}

type DeclBlock struct {
	Pos   lexer.Position
	Lines []*DeclLine `parser:"'declblock' '{' @@* '}'"`
}

type DeclLine struct {
	Pos  lexer.Position
	Type string     `parser:"@'int'"`
	Vars []*VarDecl `parser:"@@ ( ',' @@ )* ';'"`
}

type VarDecl struct {
	Pos    lexer.Position
	Name   string `parser:"@Ident"`
	Length *int64 `parser:"( '[' @Int ']' )?"`
}

type CodeBlock struct {
	Pos  lexer.Position
	Body *Block `parser:"'codeblock' @@"`
}

type Block struct {
	Pos        lexer.Position
	Statements []*Statement `parser:"'{' @@* '}'"`
}

type Statement struct {
	Pos    lexer.Position
	Label  string  `parser:"( (?= Ident ':') @Ident ':' )?"`
	For    *For    `parser:"(  @@"`
	While  *While  `parser:" | @@"`
	If     *If     `parser:" | @@"`
	Goto   *Goto   `parser:" | @@ ';'"`
	IO     *IO     `parser:" | @@ ';'"`
	Assign *Assign `parser:" | @@ ';' )"`
}

// Assign holds every right hand side of a chained assignment; all but the
// last must be plain targets.
type Assign struct {
	Pos    lexer.Position
	Target *Target `parser:"@@ '='"`
	Values []*Expr `parser:"@@ ( '=' @@ )*"`
}

type For struct {
	Pos   lexer.Position
	Init  *Assign `parser:"'for' @@"`
	Bound *Expr   `parser:"',' @@"`
	Step  *Expr   `parser:"( ',' @@ )?"`
	Body  *Block  `parser:"@@"`
}

type While struct {
	Pos  lexer.Position
	Cond *Cond  `parser:"'while' @@"`
	Body *Block `parser:"@@"`
}

type If struct {
	Pos  lexer.Position
	Cond *Cond  `parser:"'if' @@"`
	Then *Block `parser:"@@"`
	Else *Block `parser:"( 'else' @@ )?"`
}

type Goto struct {
	Pos   lexer.Position
	Label string `parser:"'goto' @Ident"`
	Cond  *Cond  `parser:"( 'if' @@ )?"`
}

type IO struct {
	Pos  lexer.Position
	Kind string  `parser:"@( 'println' | 'print' | 'read' )"`
	Text *string `parser:"( @String"`
	Expr *Expr   `parser:"  ( ',' @@ )? | @@ )"`
}

type Cond struct {
	Pos   lexer.Position
	Not   *Cond  `parser:"  '!' @@"`
	Left  *Expr  `parser:"| @@"`
	Op    string `parser:"  @( '<=' | '>=' | '==' | '!=' | '<' | '>' )"`
	Right *Expr  `parser:"  @@"`
}

type Expr struct {
	Pos  lexer.Position
	Left *Term     `parser:"@@"`
	Rest []*OpTerm `parser:"@@*"`
}

type OpTerm struct {
	Pos  lexer.Position
	Op   string `parser:"@( '+' | '-' )"`
	Term *Term  `parser:"@@"`
}

type Term struct {
	Pos  lexer.Position
	Left *Factor     `parser:"@@"`
	Rest []*OpFactor `parser:"@@*"`
}

type OpFactor struct {
	Pos    lexer.Position
	Op     string  `parser:"@( '*' | '/' )"`
	Factor *Factor `parser:"@@"`
}

type Factor struct {
	Pos    lexer.Position
	Neg    bool    `parser:"@'-'?"`
	Int    *int64  `parser:"(  @Int"`
	Paren  *Expr   `parser:" | '(' @@ ')'"`
	Target *Target `parser:" | @@ )"`
}

type Target struct {
	Pos   lexer.Position
	Name  string `parser:"@Ident"`
	Index *Expr  `parser:"( '[' @@ ']' )?"`
}
