// Package fe is the front-end of the Fe compiler: lexing and parsing a
// source file into a spanned module AST. It performs no type checking,
// name resolution, or code generation.
package fe

import (
	"github.com/pkg/errors"

	"github.com/0x-r4bbit/fe/pkgs/ast"
	"github.com/0x-r4bbit/fe/pkgs/lexer"
	"github.com/0x-r4bbit/fe/pkgs/parser"
	"github.com/0x-r4bbit/fe/pkgs/span"
	"github.com/0x-r4bbit/fe/pkgs/symbol"
)

// Compile tokenizes and parses source, returning the module AST. The first
// lexical or syntactic error aborts the whole pipeline; there is no error
// recovery (spec.md §7).
func Compile(source string) (span.Spanned[ast.Module], error) {
	interner := symbol.New()
	tokens, err := lexer.TokenizeWith(source, interner)
	if err != nil {
		return span.Spanned[ast.Module]{}, errors.Wrap(err, "tokenize")
	}
	mod, err := parser.Parse(lexer.FilterTrivia(tokens), interner)
	if err != nil {
		return span.Spanned[ast.Module]{}, errors.Wrap(err, "parse")
	}
	return mod, nil
}
