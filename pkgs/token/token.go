// Package token defines the lexer's output vocabulary: TokenKind and Token.
package token

import (
	"fmt"

	"github.com/0x-r4bbit/fe/pkgs/span"
	"github.com/0x-r4bbit/fe/pkgs/symbol"
)

// Kind identifies the grammatical category of a Token. Punctuation kinds
// are distinct variants rather than a single "operator" bucket so the
// parser's tokenOf(kind) combinator can match on them directly.
type Kind int

const (
	// Name is an identifier or contextual keyword; Token.Sym holds the
	// interned text.
	Name Kind = iota
	Num
	Str
	Indent
	Dedent
	Newline
	WhitespaceNewline
	Comment
	EndMarker
	ErrorToken

	Dot
	Ellipsis
	Comma
	Colon
	Star
	StarStar
	Slash
	Percent
	Plus
	Minus
	Tilde
	OpenParen
	CloseParen
	OpenBracket
	CloseBracket
	OpenBrace
	CloseBrace
)

var kindNames = [...]string{
	Name:              "NAME",
	Num:               "NUM",
	Str:               "STR",
	Indent:            "INDENT",
	Dedent:            "DEDENT",
	Newline:           "NEWLINE",
	WhitespaceNewline: "WHITESPACE_NEWLINE",
	Comment:           "COMMENT",
	EndMarker:         "ENDMARKER",
	ErrorToken:        "ERRORTOKEN",
	Dot:               ".",
	Ellipsis:          "...",
	Comma:             ",",
	Colon:             ":",
	Star:              "*",
	StarStar:          "**",
	Slash:             "/",
	Percent:           "%",
	Plus:              "+",
	Minus:             "-",
	Tilde:             "~",
	OpenParen:         "(",
	CloseParen:        ")",
	OpenBracket:       "[",
	CloseBracket:      "]",
	OpenBrace:         "{",
	CloseBrace:        "}",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) || kindNames[k] == "" {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// punctByText maps the literal source text of a single- or multi-character
// operator to its Kind, mirroring the original tokenizer's
// TokenKind::try_from(token) conversion.
var punctByText = map[string]Kind{
	".":   Dot,
	"...": Ellipsis,
	",":   Comma,
	":":   Colon,
	"*":   Star,
	"**":  StarStar,
	"/":   Slash,
	"%":   Percent,
	"+":   Plus,
	"-":   Minus,
	"~":   Tilde,
	"(":   OpenParen,
	")":   CloseParen,
	"[":   OpenBracket,
	"]":   CloseBracket,
	"{":   OpenBrace,
	"}":   CloseBrace,
}

// PunctKind looks up the Kind for punctuation text, reporting ok=false if
// text is not a recognized punctuation lexeme.
func PunctKind(text string) (Kind, bool) {
	k, ok := punctByText[text]
	return k, ok
}

// Token is a single lexical unit: its kind, source span, and (for Name
// and Num tokens) the interned symbol for its text.
type Token struct {
	Kind Kind
	Span span.Span
	Sym  symbol.Symbol
}

// GetSpan implements span.Spans, letting Token participate directly in
// span.FromPair.
func (t Token) GetSpan() span.Span { return t.Span }

// Text recovers the token's source text by slicing src with its span.
func (t Token) Text(src string) string {
	return t.Span.Slice(src)
}

// IsVirtual reports whether the token has no corresponding source bytes
// (Dedent, the synthetic trailing Newline and EndMarker carry zero-length
// spans at the point they were synthesized; Indent spans the line's
// leading whitespace and so is not virtual).
func (t Token) IsVirtual() bool {
	return t.Span.Len() == 0
}
