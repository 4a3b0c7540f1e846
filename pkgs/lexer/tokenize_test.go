package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/0x-r4bbit/fe/pkgs/span"
	"github.com/0x-r4bbit/fe/pkgs/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeEmptyModule(t *testing.T) {
	tokens, err := Tokenize("")
	require.NoError(t, err)
	require.Equal(t, []token.Token{{Kind: token.EndMarker, Span: span.Zero(0)}}, tokens)
}

func TestTokenizeTrailingNewlineLessImport(t *testing.T) {
	tokens, err := Tokenize("import foo.bar as baz")
	require.NoError(t, err)

	want := []token.Kind{
		token.Name, token.Dot, token.Name, token.Name, token.Name, token.Newline, token.EndMarker,
	}
	if diff := cmp.Diff(want, kinds(tokens)); diff != "" {
		t.Fatalf("kind mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeIndentDedentBalance(t *testing.T) {
	src := "contract C:\n    event E:\n        x: u8\n"
	tokens, err := Tokenize(src)
	require.NoError(t, err)

	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.Indent:
			depth++
		case token.Dedent:
			depth--
		}
	}
	require.Equal(t, 0, depth, "Indent/Dedent tokens must balance")
	require.Equal(t, token.EndMarker, tokens[len(tokens)-1].Kind)
}

func TestTokenizeUnindentMismatch(t *testing.T) {
	src := "contract C:\n    event E:\n        x: u8\n      y: u8\n"
	_, err := Tokenize(src)
	require.Error(t, err)

	var tokErr *TokenizeError
	require.ErrorAs(t, err, &tokErr)
	require.Equal(t, msgUnindent, tokErr.Msg)
}

func TestTokenizeEOFInMultilineString(t *testing.T) {
	src := "x = \"\"\"hello\n"
	_, err := Tokenize(src)
	require.Error(t, err)

	var tokErr *TokenizeError
	require.ErrorAs(t, err, &tokErr)
	require.Equal(t, msgEOFString, tokErr.Msg)
	require.Equal(t, len(src), tokErr.Offset)
}

func TestTokenizeEOFInContinuedStatement(t *testing.T) {
	src := "x = 1 + \\\n"
	_, err := Tokenize(src)
	require.Error(t, err)

	var tokErr *TokenizeError
	require.ErrorAs(t, err, &tokErr)
	require.Equal(t, msgEOFStatement, tokErr.Msg)
}

func TestTokenizeBracketSuppressesNewline(t *testing.T) {
	tokens, err := Tokenize("from a import (\n    b,\n)\n")
	require.NoError(t, err)

	// the last two tokens are the Newline after ")" and EndMarker
	for _, tok := range tokens[:len(tokens)-2] {
		require.NotEqual(t, token.Newline, tok.Kind, "no significant newline expected inside brackets")
	}
	require.Equal(t, token.Newline, tokens[len(tokens)-2].Kind)
}

func TestTokenizeDotsAndEllipsis(t *testing.T) {
	tokens, err := Tokenize("from ...pkg import a\n")
	require.NoError(t, err)

	require.Equal(t, token.Ellipsis, tokens[1].Kind)
	require.Equal(t, token.Name, tokens[2].Kind)
}

func TestFilterTriviaDropsCommentsAndWhitespaceNewlines(t *testing.T) {
	tokens, err := Tokenize("import a # comment\n\nimport b\n")
	require.NoError(t, err)

	filtered := FilterTrivia(tokens)
	for _, tok := range filtered {
		require.NotEqual(t, token.Comment, tok.Kind)
		require.NotEqual(t, token.WhitespaceNewline, tok.Kind)
	}
}

func TestTokenSpansAreOrderedAndInBounds(t *testing.T) {
	src := "contract Foo:\n    event Bar:\n        x: u8\n        y: u256\n"
	tokens, err := Tokenize(src)
	require.NoError(t, err)

	lastStart := -1
	for _, tok := range tokens {
		require.GreaterOrEqual(t, tok.Span.Start, 0)
		require.GreaterOrEqual(t, tok.Span.End, tok.Span.Start)
		require.LessOrEqual(t, tok.Span.End, len(src))
		require.GreaterOrEqual(t, tok.Span.Start, lastStart)
		lastStart = tok.Span.Start
	}
}
