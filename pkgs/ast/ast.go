// Package ast defines the spanned abstract syntax tree produced by the
// parser: modules, imports, contract/event definitions, and the
// constant-expression sub-language.
package ast

import (
	"github.com/0x-r4bbit/fe/pkgs/span"
	"github.com/0x-r4bbit/fe/pkgs/symbol"
)

// Module is the root of a parsed file: an ordered sequence of top-level
// statements.
type Module struct {
	Body []span.Spanned[ModuleStmt]
}

// ModuleStmt is a top-level statement: exactly one of SimpleImport,
// FromImport, or ContractDef is non-nil.
type ModuleStmt struct {
	SimpleImport *SimpleImport
	FromImport   *FromImport
	ContractDef  *ContractDef
}

// SimpleImport is `import a.b.c as d, e.f`.
type SimpleImport struct {
	Names []span.Spanned[SimpleImportName]
}

// SimpleImportName is one comma-separated entry of a SimpleImport.
type SimpleImportName struct {
	Path  []symbol.Symbol
	Alias *symbol.Symbol
}

// FromImport is `from <path> import <names>`.
type FromImport struct {
	Path  span.Spanned[FromImportPath]
	Names span.Spanned[FromImportNames]
}

// FromImportPath is the module path of a from-import: either absolute, or
// relative with a parent-level dot/ellipsis count.
type FromImportPath struct {
	// Absolute is non-nil for an absolute dotted path.
	Absolute []symbol.Symbol
	// Relative is non-nil for a (possibly dot-only) relative path.
	// Relative.Path may be nil: `from ... import x` has no trailing
	// dotted name, only a parent level (spec.md §9 Open Question (b)).
	Relative *RelativePath
}

// RelativePath is the Relative arm of FromImportPath.
type RelativePath struct {
	ParentLevel int
	Path        []symbol.Symbol
}

// FromImportNames is the `import <names>` clause: a star-import or an
// explicit list.
type FromImportNames struct {
	Star bool
	List []span.Spanned[FromImportName]
}

// FromImportName is one entry of an explicit from-import name list.
type FromImportName struct {
	Name  symbol.Symbol
	Alias *symbol.Symbol
}

// ContractDef is `contract Name: <body>`.
type ContractDef struct {
	Name symbol.Symbol
	Body []span.Spanned[ContractStmt]
}

// ContractStmt is a statement inside a contract body; currently only
// event definitions.
type ContractStmt struct {
	EventDef *EventDef
}

// EventDef is `event Name: <fields>`.
type EventDef struct {
	Name   symbol.Symbol
	Fields []span.Spanned[EventField]
}

// EventField is `name: type`.
type EventField struct {
	Name symbol.Symbol
	Typ  symbol.Symbol
}

// Operator is a binary constant-expression operator.
type Operator int

const (
	Add Operator = iota
	Sub
	Mul
	Div
	Mod
	Pow
)

func (o Operator) String() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	case Pow:
		return "**"
	default:
		return "?"
	}
}

// UnaryOperator is a unary constant-expression operator.
type UnaryOperator int

const (
	UPlus UnaryOperator = iota
	UMinus
	Invert
)

func (o UnaryOperator) String() string {
	switch o {
	case UPlus:
		return "+"
	case UMinus:
		return "-"
	case Invert:
		return "~"
	default:
		return "?"
	}
}

// ConstExpr is a node of the compile-time constant expression language.
// Exactly one field is non-nil/non-zero per the Kind.
type ConstExpr struct {
	Kind ConstExprKind

	Name *symbol.Symbol
	Num  *symbol.Symbol // numeric literal text, interned like an identifier

	BinOp *BinOp
	Unary *UnaryOp
}

// ConstExprKind discriminates ConstExpr's variant.
type ConstExprKind int

const (
	ExprName ConstExprKind = iota
	ExprNum
	ExprBinOp
	ExprUnaryOp
)

// BinOp is `left op right`.
type BinOp struct {
	Left  span.Spanned[*ConstExpr]
	Op    Operator
	Right span.Spanned[*ConstExpr]
}

// UnaryOp is `op operand`.
type UnaryOp struct {
	Op      UnaryOperator
	Operand span.Spanned[*ConstExpr]
}

// NameExpr builds a ConstExpr wrapping a bare name reference.
func NameExpr(s symbol.Symbol) *ConstExpr {
	return &ConstExpr{Kind: ExprName, Name: &s}
}

// NumExpr builds a ConstExpr wrapping a numeric literal.
func NumExpr(s symbol.Symbol) *ConstExpr {
	return &ConstExpr{Kind: ExprNum, Num: &s}
}

// BinOpExpr builds a ConstExpr wrapping a binary operation.
func BinOpExpr(left span.Spanned[*ConstExpr], op Operator, right span.Spanned[*ConstExpr]) *ConstExpr {
	return &ConstExpr{Kind: ExprBinOp, BinOp: &BinOp{Left: left, Op: op, Right: right}}
}

// UnaryOpExpr builds a ConstExpr wrapping a unary operation.
func UnaryOpExpr(op UnaryOperator, operand span.Spanned[*ConstExpr]) *ConstExpr {
	return &ConstExpr{Kind: ExprUnaryOp, Unary: &UnaryOp{Op: op, Operand: operand}}
}
