package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/0x-r4bbit/fe/pkgs/ast"
	"github.com/0x-r4bbit/fe/pkgs/lexer"
	"github.com/0x-r4bbit/fe/pkgs/symbol"
)

func parseSource(t *testing.T, src string) (ast.Module, *symbol.Interner) {
	t.Helper()
	interner := symbol.New()
	tokens, err := lexer.TokenizeWith(src, interner)
	require.NoError(t, err)
	mod, err := Parse(lexer.FilterTrivia(tokens), interner)
	require.NoError(t, err)
	return mod.Node, interner
}

func TestParseEmptyModule(t *testing.T) {
	mod, _ := parseSource(t, "")
	require.Empty(t, mod.Body)
}

func TestParseSimpleImportWithAlias(t *testing.T) {
	mod, interner := parseSource(t, "import foo.bar as baz\n")
	require.Len(t, mod.Body, 1)

	stmt := mod.Body[0].Node
	require.NotNil(t, stmt.SimpleImport)
	require.Len(t, stmt.SimpleImport.Names, 1)

	name := stmt.SimpleImport.Names[0].Node
	require.Equal(t, []string{"foo", "bar"}, symbolTexts(interner, name.Path))
	require.NotNil(t, name.Alias)
	require.Equal(t, "baz", interner.Text(*name.Alias))
}

func TestParseRelativeFromImportMixedDotsAndEllipsis(t *testing.T) {
	mod, interner := parseSource(t, "from ...pkg import (a, b as c,)\n")
	require.Len(t, mod.Body, 1)

	stmt := mod.Body[0].Node
	require.NotNil(t, stmt.FromImport)

	path := stmt.FromImport.Path.Node
	require.NotNil(t, path.Relative)
	require.Equal(t, 2, path.Relative.ParentLevel)
	require.Equal(t, []string{"pkg"}, symbolTexts(interner, path.Relative.Path))

	names := stmt.FromImport.Names.Node
	require.False(t, names.Star)
	require.Len(t, names.List, 2)
	require.Equal(t, "a", interner.Text(names.List[0].Node.Name))
	require.Nil(t, names.List[0].Node.Alias)
	require.Equal(t, "b", interner.Text(names.List[1].Node.Name))
	require.Equal(t, "c", interner.Text(*names.List[1].Node.Alias))
}

func TestParseContractWithEvent(t *testing.T) {
	src := "contract Foo:\n    event Bar:\n        x: u8\n        y: u256\n"
	mod, interner := parseSource(t, src)
	require.Len(t, mod.Body, 1)

	stmt := mod.Body[0].Node
	require.NotNil(t, stmt.ContractDef)
	require.Equal(t, "Foo", interner.Text(stmt.ContractDef.Name))
	require.Len(t, stmt.ContractDef.Body, 1)

	event := stmt.ContractDef.Body[0].Node
	require.NotNil(t, event.EventDef)
	require.Equal(t, "Bar", interner.Text(event.EventDef.Name))
	require.Len(t, event.EventDef.Fields, 2)
	require.Equal(t, "x", interner.Text(event.EventDef.Fields[0].Node.Name))
	require.Equal(t, "u8", interner.Text(event.EventDef.Fields[0].Node.Typ))
	require.Equal(t, "y", interner.Text(event.EventDef.Fields[1].Node.Name))
	require.Equal(t, "u256", interner.Text(event.EventDef.Fields[1].Node.Typ))
}

func TestConstExprPrecedenceAddMul(t *testing.T) {
	interner := symbol.New()
	expr := parseConstExpr(t, interner, "a+b*c")

	require.Equal(t, ast.ExprBinOp, expr.Kind)
	require.Equal(t, ast.Add, expr.BinOp.Op)
	require.Equal(t, "a", interner.Text(*expr.BinOp.Left.Node.Name))
	require.Equal(t, ast.ExprBinOp, expr.BinOp.Right.Node.Kind)
	require.Equal(t, ast.Mul, expr.BinOp.Right.Node.BinOp.Op)
}

func TestConstExprPowerIsRightAssociative(t *testing.T) {
	interner := symbol.New()
	expr := parseConstExpr(t, interner, "a**b**c")

	require.Equal(t, ast.ExprBinOp, expr.Kind)
	require.Equal(t, ast.Pow, expr.BinOp.Op)
	require.Equal(t, "a", interner.Text(*expr.BinOp.Left.Node.Name))
	require.Equal(t, ast.ExprBinOp, expr.BinOp.Right.Node.Kind)
	require.Equal(t, ast.Pow, expr.BinOp.Right.Node.BinOp.Op)
}

func TestConstExprUnaryBindsLooserThanPower(t *testing.T) {
	interner := symbol.New()
	expr := parseConstExpr(t, interner, "-a**b")

	require.Equal(t, ast.ExprUnaryOp, expr.Kind)
	require.Equal(t, ast.UMinus, expr.Unary.Op)
	require.Equal(t, ast.ExprBinOp, expr.Unary.Operand.Node.Kind)
	require.Equal(t, ast.Pow, expr.Unary.Operand.Node.BinOp.Op)
}

func TestConstExprUnaryOnRightOfPower(t *testing.T) {
	interner := symbol.New()
	expr := parseConstExpr(t, interner, "2**-3")

	require.Equal(t, ast.ExprBinOp, expr.Kind)
	require.Equal(t, ast.Pow, expr.BinOp.Op)
	require.Equal(t, ast.ExprUnaryOp, expr.BinOp.Right.Node.Kind)
	require.Equal(t, ast.UMinus, expr.BinOp.Right.Node.Unary.Op)
}

func parseConstExpr(t *testing.T, interner *symbol.Interner, src string) *ast.ConstExpr {
	t.Helper()
	tokens, err := lexer.TokenizeWith(src, interner)
	require.NoError(t, err)
	g := &grammar{interner: interner}
	rest, result, err := g.ConstExpr(lexer.FilterTrivia(tokens))
	require.NoError(t, err)
	// only the synthetic trailing Newline/EndMarker should remain
	require.LessOrEqual(t, len(rest), 2)
	return result.Node
}

func symbolTexts(interner *symbol.Interner, syms []symbol.Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = interner.Text(s)
	}
	return out
}
