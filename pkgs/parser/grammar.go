package parser

import (
	"github.com/0x-r4bbit/fe/pkgs/ast"
	"github.com/0x-r4bbit/fe/pkgs/span"
	"github.com/0x-r4bbit/fe/pkgs/symbol"
	"github.com/0x-r4bbit/fe/pkgs/token"
)

// grammar carries the symbol interner the token stream was produced with,
// needed to compare Name tokens against contextual keywords and to copy
// identifier symbols straight into AST nodes.
type grammar struct {
	interner *symbol.Interner
}

// nameString matches a Name token whose text equals kw: contract, event,
// import, from, and as are matched this way rather than reserved at the
// lexical level (spec.md §9).
func (g *grammar) nameString(kw string) parseFunc[*token.Token] {
	return func(ts []token.Token) ([]token.Token, *token.Token, error) {
		return verifyOneToken(ts, `"`+kw+`"`, func(t token.Token) bool {
			return t.Kind == token.Name && g.interner.Text(t.Sym) == kw
		})
	}
}

// Parse consumes a filtered token stream (lexer.FilterTrivia already
// applied) and produces a spanned module AST.
func Parse(tokens []token.Token, interner *symbol.Interner) (span.Spanned[ast.Module], error) {
	g := &grammar{interner: interner}
	rest, mod, err := g.fileInput(tokens)
	if err != nil {
		var zero span.Spanned[ast.Module]
		return zero, err
	}
	if len(rest) != 0 {
		return span.Spanned[ast.Module]{}, &ParseError{Kind: KindTag, At: rest[0].Span, Want: "EOF"}
	}
	return mod, nil
}

func (g *grammar) fileInput(ts []token.Token) ([]token.Token, span.Spanned[ast.Module], error) {
	return alt(g.emptyFileInput, g.nonEmptyFileInput)(ts)
}

func (g *grammar) emptyFileInput(ts []token.Token) ([]token.Token, span.Spanned[ast.Module], error) {
	rest, end, err := endMarkerToken(ts)
	if err != nil {
		return ts, span.Spanned[ast.Module]{}, err
	}
	return rest, span.Of(ast.Module{Body: nil}, end.Span), nil
}

func (g *grammar) nonEmptyFileInput(ts []token.Token) ([]token.Token, span.Spanned[ast.Module], error) {
	rest, body, err := many1(g.moduleStmt)(ts)
	if err != nil {
		return ts, span.Spanned[ast.Module]{}, err
	}
	rest, _, err = endMarkerToken(rest)
	if err != nil {
		return ts, span.Spanned[ast.Module]{}, err
	}
	sp := span.FromPair(body[0], body[len(body)-1])
	return rest, span.Of(ast.Module{Body: body}, sp), nil
}

func (g *grammar) moduleStmt(ts []token.Token) ([]token.Token, span.Spanned[ast.ModuleStmt], error) {
	return alt(g.importStmt, g.contractDef)(ts)
}

func (g *grammar) importStmt(ts []token.Token) ([]token.Token, span.Spanned[ast.ModuleStmt], error) {
	return terminated(alt(g.simpleImport, g.fromImport), newlineToken)(ts)
}

func (g *grammar) simpleImport(ts []token.Token) ([]token.Token, span.Spanned[ast.ModuleStmt], error) {
	rest, importKw, err := g.nameString("import")(ts)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, first, err := g.simpleImportName(rest)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, others, _ := many0(preceded(tokenOf(token.Comma), g.simpleImportName))(rest)

	names := append([]span.Spanned[ast.SimpleImportName]{first}, others...)
	sp := span.FromPair(importKw, names[len(names)-1])
	stmt := ast.ModuleStmt{SimpleImport: &ast.SimpleImport{Names: names}}
	return rest, span.Of(stmt, sp), nil
}

func (g *grammar) simpleImportName(ts []token.Token) ([]token.Token, span.Spanned[ast.SimpleImportName], error) {
	rest, path, err := g.dottedName(ts)
	if err != nil {
		return ts, span.Spanned[ast.SimpleImportName]{}, err
	}
	rest, alias, _ := opt(preceded(g.nameString("as"), nameToken))(rest)

	var sp span.Span
	var aliasSym *symbol.Symbol
	if alias != nil {
		a := (*alias).Sym
		aliasSym = &a
		sp = span.FromPair(path, *alias)
	} else {
		sp = path.Span
	}
	node := ast.SimpleImportName{Path: path.Node, Alias: aliasSym}
	return rest, span.Of(node, sp), nil
}

func (g *grammar) fromImport(ts []token.Token) ([]token.Token, span.Spanned[ast.ModuleStmt], error) {
	return alt(g.fromImportParentAlt, g.fromImportSubAlt)(ts)
}

func (g *grammar) fromImportParentAlt(ts []token.Token) ([]token.Token, span.Spanned[ast.ModuleStmt], error) {
	rest, fromKw, err := g.nameString("from")(ts)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, parentLevel, err := g.dotsToInt(rest)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, _, err = g.nameString("import")(rest)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, names, err := g.fromImportNames(rest)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}

	path := span.Of(ast.FromImportPath{Relative: &ast.RelativePath{ParentLevel: parentLevel.Node}}, parentLevel.Span)
	sp := span.FromPair(fromKw, names)
	stmt := ast.ModuleStmt{FromImport: &ast.FromImport{Path: path, Names: names}}
	return rest, span.Of(stmt, sp), nil
}

func (g *grammar) fromImportSubAlt(ts []token.Token) ([]token.Token, span.Spanned[ast.ModuleStmt], error) {
	rest, fromKw, err := g.nameString("from")(ts)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, path, err := g.fromImportSubPath(rest)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, _, err = g.nameString("import")(rest)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, names, err := g.fromImportNames(rest)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}

	sp := span.FromPair(fromKw, names)
	stmt := ast.ModuleStmt{FromImport: &ast.FromImport{Path: path, Names: names}}
	return rest, span.Of(stmt, sp), nil
}

func (g *grammar) fromImportSubPath(ts []token.Token) ([]token.Token, span.Spanned[ast.FromImportPath], error) {
	rest, parentLevel, _ := opt(g.dotsToInt)(ts)
	rest, dotted, err := g.dottedName(rest)
	if err != nil {
		return ts, span.Spanned[ast.FromImportPath]{}, err
	}

	if parentLevel != nil {
		sp := span.FromPair(*parentLevel, dotted)
		node := ast.FromImportPath{Relative: &ast.RelativePath{ParentLevel: (*parentLevel).Node, Path: dotted.Node}}
		return rest, span.Of(node, sp), nil
	}
	node := ast.FromImportPath{Absolute: dotted.Node}
	return rest, span.Of(node, dotted.Span), nil
}

func (g *grammar) fromImportNames(ts []token.Token) ([]token.Token, span.Spanned[ast.FromImportNames], error) {
	return alt(g.fromImportNamesStar, g.fromImportNamesParens, g.fromImportNamesList)(ts)
}

func (g *grammar) fromImportNamesStar(ts []token.Token) ([]token.Token, span.Spanned[ast.FromImportNames], error) {
	rest, star, err := tokenOf(token.Star)(ts)
	if err != nil {
		return ts, span.Spanned[ast.FromImportNames]{}, err
	}
	return rest, span.Of(ast.FromImportNames{Star: true}, star.Span), nil
}

func (g *grammar) fromImportNamesParens(ts []token.Token) ([]token.Token, span.Spanned[ast.FromImportNames], error) {
	rest, oParen, err := tokenOf(token.OpenParen)(ts)
	if err != nil {
		return ts, span.Spanned[ast.FromImportNames]{}, err
	}
	rest, names, err := g.fromImportNamesList(rest)
	if err != nil {
		return ts, span.Spanned[ast.FromImportNames]{}, err
	}
	rest, cParen, err := tokenOf(token.CloseParen)(rest)
	if err != nil {
		return ts, span.Spanned[ast.FromImportNames]{}, err
	}
	return rest, span.Of(names.Node, span.FromPair(oParen, cParen)), nil
}

func (g *grammar) fromImportNamesList(ts []token.Token) ([]token.Token, span.Spanned[ast.FromImportNames], error) {
	rest, first, err := g.fromImportName(ts)
	if err != nil {
		return ts, span.Spanned[ast.FromImportNames]{}, err
	}
	rest, others, _ := many0(preceded(tokenOf(token.Comma), g.fromImportName))(rest)
	rest, trailingComma, _ := opt(tokenOf(token.Comma))(rest)

	names := append([]span.Spanned[ast.FromImportName]{first}, others...)

	var sp span.Span
	if trailingComma != nil {
		sp = span.FromPair(names[0], *trailingComma)
	} else {
		sp = span.FromPair(names[0], names[len(names)-1])
	}
	return rest, span.Of(ast.FromImportNames{List: names}, sp), nil
}

func (g *grammar) fromImportName(ts []token.Token) ([]token.Token, span.Spanned[ast.FromImportName], error) {
	rest, name, err := nameToken(ts)
	if err != nil {
		return ts, span.Spanned[ast.FromImportName]{}, err
	}
	rest, alias, _ := opt(preceded(g.nameString("as"), nameToken))(rest)

	var sp span.Span
	var aliasSym *symbol.Symbol
	if alias != nil {
		a := (*alias).Sym
		aliasSym = &a
		sp = span.FromPair(name, *alias)
	} else {
		sp = name.Span
	}
	node := ast.FromImportName{Name: name.Sym, Alias: aliasSym}
	return rest, span.Of(node, sp), nil
}

func (g *grammar) dottedName(ts []token.Token) ([]token.Token, span.Spanned[[]symbol.Symbol], error) {
	rest, first, err := nameToken(ts)
	if err != nil {
		return ts, span.Spanned[[]symbol.Symbol]{}, err
	}
	rest, others, _ := many0(preceded(tokenOf(token.Dot), nameToken))(rest)

	path := make([]symbol.Symbol, 0, 1+len(others))
	path = append(path, first.Sym)
	for _, o := range others {
		path = append(path, o.Sym)
	}

	sp := first.Span
	if len(others) > 0 {
		sp = span.FromPair(first, others[len(others)-1])
	}
	return rest, span.Of(path, sp), nil
}

// dotsToInt consumes a run of "." and "..." tokens and folds them into the
// parent-level integer: value = (sum of widths) - 1, so "." -> 0,
// ".." -> 1, "..." -> 2, "...." -> 3 (spec.md §4.2).
func (g *grammar) dotsToInt(ts []token.Token) ([]token.Token, span.Spanned[int], error) {
	rest, toks, err := many1(alt(tokenOf(token.Dot), tokenOf(token.Ellipsis)))(ts)
	if err != nil {
		return ts, span.Spanned[int]{}, err
	}
	value := 0
	for _, t := range toks {
		if t.Kind == token.Dot {
			value++
		} else {
			value += 3
		}
	}
	value--
	sp := toks[0].Span
	if len(toks) > 1 {
		sp = span.FromPair(toks[0], toks[len(toks)-1])
	}
	return rest, span.Of(value, sp), nil
}

func (g *grammar) contractDef(ts []token.Token) ([]token.Token, span.Spanned[ast.ModuleStmt], error) {
	rest, contractKw, err := g.nameString("contract")(ts)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, name, err := nameToken(rest)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, _, err = tokenOf(token.Colon)(rest)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, _, err = newlineToken(rest)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, _, err = indentToken(rest)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, body, err := many1(g.contractStmt)(rest)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}
	rest, _, err = dedentToken(rest)
	if err != nil {
		return ts, span.Spanned[ast.ModuleStmt]{}, err
	}

	sp := span.FromPair(contractKw, body[len(body)-1])
	stmt := ast.ModuleStmt{ContractDef: &ast.ContractDef{Name: name.Sym, Body: body}}
	return rest, span.Of(stmt, sp), nil
}

func (g *grammar) contractStmt(ts []token.Token) ([]token.Token, span.Spanned[ast.ContractStmt], error) {
	return g.eventDef(ts)
}

func (g *grammar) eventDef(ts []token.Token) ([]token.Token, span.Spanned[ast.ContractStmt], error) {
	rest, eventKw, err := g.nameString("event")(ts)
	if err != nil {
		return ts, span.Spanned[ast.ContractStmt]{}, err
	}
	rest, name, err := nameToken(rest)
	if err != nil {
		return ts, span.Spanned[ast.ContractStmt]{}, err
	}
	rest, _, err = tokenOf(token.Colon)(rest)
	if err != nil {
		return ts, span.Spanned[ast.ContractStmt]{}, err
	}
	rest, _, err = newlineToken(rest)
	if err != nil {
		return ts, span.Spanned[ast.ContractStmt]{}, err
	}
	rest, _, err = indentToken(rest)
	if err != nil {
		return ts, span.Spanned[ast.ContractStmt]{}, err
	}
	rest, fields, err := many1(g.eventField)(rest)
	if err != nil {
		return ts, span.Spanned[ast.ContractStmt]{}, err
	}
	rest, _, err = dedentToken(rest)
	if err != nil {
		return ts, span.Spanned[ast.ContractStmt]{}, err
	}

	sp := span.FromPair(eventKw, fields[len(fields)-1])
	stmt := ast.ContractStmt{EventDef: &ast.EventDef{Name: name.Sym, Fields: fields}}
	return rest, span.Of(stmt, sp), nil
}

func (g *grammar) eventField(ts []token.Token) ([]token.Token, span.Spanned[ast.EventField], error) {
	rest, name, err := nameToken(ts)
	if err != nil {
		return ts, span.Spanned[ast.EventField]{}, err
	}
	rest, _, err = tokenOf(token.Colon)(rest)
	if err != nil {
		return ts, span.Spanned[ast.EventField]{}, err
	}
	rest, typ, err := nameToken(rest)
	if err != nil {
		return ts, span.Spanned[ast.EventField]{}, err
	}
	rest, _, err = newlineToken(rest)
	if err != nil {
		return ts, span.Spanned[ast.EventField]{}, err
	}

	sp := span.FromPair(name, typ)
	return rest, span.Of(ast.EventField{Name: name.Sym, Typ: typ.Sym}, sp), nil
}

// ConstExpr parses a standalone constant expression, so tests can parse
// one in isolation. grammar is unexported, so code outside package parser
// cannot call it, and the module grammar does not use constant expressions.
func (g *grammar) ConstExpr(ts []token.Token) ([]token.Token, span.Spanned[*ast.ConstExpr], error) {
	return g.constExpr(ts)
}

func (g *grammar) constExpr(ts []token.Token) ([]token.Token, span.Spanned[*ast.ConstExpr], error) {
	rest, head, err := g.constTerm(ts)
	if err != nil {
		return ts, span.Spanned[*ast.ConstExpr]{}, err
	}
	addOrSub := alt(
		pair(tokenOf(token.Plus), g.constTerm),
		pair(tokenOf(token.Minus), g.constTerm),
	)
	rest, tail, _ := many0(addOrSub)(rest)

	left := head
	for _, step := range tail {
		op := binOpFor(step.First.Kind)
		sp := span.FromPair(left, step.Second)
		left = span.Of(ast.BinOpExpr(left, op, step.Second), sp)
	}
	return rest, left, nil
}

func (g *grammar) constTerm(ts []token.Token) ([]token.Token, span.Spanned[*ast.ConstExpr], error) {
	rest, head, err := g.constFactor(ts)
	if err != nil {
		return ts, span.Spanned[*ast.ConstExpr]{}, err
	}
	mulDivMod := alt(
		pair(tokenOf(token.Star), g.constFactor),
		pair(tokenOf(token.Slash), g.constFactor),
		pair(tokenOf(token.Percent), g.constFactor),
	)
	rest, tail, _ := many0(mulDivMod)(rest)

	left := head
	for _, step := range tail {
		op := binOpFor(step.First.Kind)
		sp := span.FromPair(left, step.Second)
		left = span.Of(ast.BinOpExpr(left, op, step.Second), sp)
	}
	return rest, left, nil
}

// constFactor is right-recursive on unary +/-/~, so chains like "--x"
// parse as nested UnaryOp nodes, falling through to constPower once no
// unary prefix remains.
func (g *grammar) constFactor(ts []token.Token) ([]token.Token, span.Spanned[*ast.ConstExpr], error) {
	unary := mapResult(
		pair(alt(tokenOf(token.Plus), tokenOf(token.Minus), tokenOf(token.Tilde)), g.constFactor),
		func(p Pair[*token.Token, span.Spanned[*ast.ConstExpr]]) span.Spanned[*ast.ConstExpr] {
			sp := span.FromPair(p.First, p.Second)
			op := unaryOpFor(p.First.Kind)
			return span.Of(ast.UnaryOpExpr(op, p.Second), sp)
		},
	)
	return alt(unary, g.constPower)(ts)
}

// constPower is right-associative: "a**b**c" parses as a**(b**c), since
// the right operand of "**" is a constFactor (which itself may recurse
// through another constPower).
func (g *grammar) constPower(ts []token.Token) ([]token.Token, span.Spanned[*ast.ConstExpr], error) {
	binOp := mapResult(
		separatedPair(g.constAtom, tokenOf(token.StarStar), g.constFactor),
		func(p Pair[span.Spanned[*ast.ConstExpr], span.Spanned[*ast.ConstExpr]]) span.Spanned[*ast.ConstExpr] {
			sp := span.FromPair(p.First, p.Second)
			return span.Of(ast.BinOpExpr(p.First, ast.Pow, p.Second), sp)
		},
	)
	return alt(binOp, g.constAtom)(ts)
}

func (g *grammar) constAtom(ts []token.Token) ([]token.Token, span.Spanned[*ast.ConstExpr], error) {
	nameAtom := mapResult(nameToken, func(t *token.Token) span.Spanned[*ast.ConstExpr] {
		return span.Of(ast.NameExpr(t.Sym), t.Span)
	})
	numAtom := mapResult(numToken, func(t *token.Token) span.Spanned[*ast.ConstExpr] {
		return span.Of(ast.NumExpr(t.Sym), t.Span)
	})
	return alt(g.constGroup, nameAtom, numAtom)(ts)
}

func (g *grammar) constGroup(ts []token.Token) ([]token.Token, span.Spanned[*ast.ConstExpr], error) {
	rest, oParen, err := tokenOf(token.OpenParen)(ts)
	if err != nil {
		return ts, span.Spanned[*ast.ConstExpr]{}, err
	}
	rest, inner, err := g.constExpr(rest)
	if err != nil {
		return ts, span.Spanned[*ast.ConstExpr]{}, err
	}
	rest, cParen, err := tokenOf(token.CloseParen)(rest)
	if err != nil {
		return ts, span.Spanned[*ast.ConstExpr]{}, err
	}
	return rest, span.Of(inner.Node, span.FromPair(oParen, cParen)), nil
}

func binOpFor(k token.Kind) ast.Operator {
	switch k {
	case token.Plus:
		return ast.Add
	case token.Minus:
		return ast.Sub
	case token.Star:
		return ast.Mul
	case token.Slash:
		return ast.Div
	case token.Percent:
		return ast.Mod
	case token.StarStar:
		return ast.Pow
	default:
		panic("parser: unreachable binary operator kind")
	}
}

func unaryOpFor(k token.Kind) ast.UnaryOperator {
	switch k {
	case token.Plus:
		return ast.UPlus
	case token.Minus:
		return ast.UMinus
	case token.Tilde:
		return ast.Invert
	default:
		panic("parser: unreachable unary operator kind")
	}
}
