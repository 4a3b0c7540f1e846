// Package lexer tokenizes Fe source text, enforcing the off-side
// indentation rule, line continuation, bracket-aware newline suppression,
// and multi-kind string literals.
package lexer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/0x-r4bbit/fe/pkgs/span"
	"github.com/0x-r4bbit/fe/pkgs/symbol"
	"github.com/0x-r4bbit/fe/pkgs/token"
)

const tabSize = 8

const stringPrefixClass = "bBrRuUfF"

// TokenizeError reports a structural lexical failure: an indentation
// mismatch, or an unterminated multi-line string or continued statement.
// Msg is always one of the three fixed strings named below.
type TokenizeError struct {
	Msg    string
	Offset int
}

func (e *TokenizeError) Error() string {
	return e.Msg
}

const (
	msgUnindent     = "unindent does not match any outer indentation level"
	msgEOFString    = "EOF in multi-line string"
	msgEOFStatement = "EOF in multi-line statement"
)

func isIdentifierChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isIdentifierStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func stripPrefixLetters(s string) string {
	return strings.TrimLeft(s, stringPrefixClass)
}

// Closing-delimiter regexes for an in-progress multi-line string, selected
// by contstrEndRe based on the opening token. Each is tried against the
// rest of the opening line after the opener, or against a whole later
// continuation line, and matches as far as the first valid close.
var (
	double3Re = regexp.MustCompile(`[^"\\]*(?:\\.[^"\\]*)*"""`)
	single3Re = regexp.MustCompile(`[^'\\]*(?:\\.[^'\\]*)*'''`)
	doubleRe  = regexp.MustCompile(`[^"\n\\]*(?:\\.[^"\n\\]*)*"`)
	singleRe  = regexp.MustCompile(`[^'\n\\]*(?:\\.[^'\n\\]*)*'`)
)

// contstrEndRe picks the closing-delimiter pattern for an opening token,
// after stripping any prefix letters. Ordering matters: triple-quote
// delimiters must be ruled out before falling back to single-quote ones.
func contstrEndRe(openToken string) *regexp.Regexp {
	stripped := stripPrefixLetters(openToken)
	switch {
	case strings.HasPrefix(stripped, `"""`):
		return double3Re
	case strings.HasPrefix(stripped, `'''`):
		return single3Re
	case strings.HasPrefix(stripped, `"`):
		return doubleRe
	default:
		return singleRe
	}
}

var tripleOpenRe = regexp.MustCompile(`^[bBrRuUfF]{0,3}(?:'''|""")`)

var (
	contSingleLineRe = regexp.MustCompile(`^[bBrRuUfF]{0,3}'[^'\\\n]*(?:\\.[^'\\\n]*)*(?:'|\\\r?\n|\n)`)
	contDoubleLineRe = regexp.MustCompile(`^[bBrRuUfF]{0,3}"[^"\\\n]*(?:\\.[^"\\\n]*)*(?:"|\\\r?\n|\n)`)
)

// matchContStr attempts a single-line string match (complete or
// continuation-needing) starting at line[pos:]. It returns the matched
// text and whether the match represents a complete, closed string.
func matchContStr(line string, pos int) (matched string, complete bool, ok bool) {
	i := pos
	for i < len(line) && i-pos < 3 && strings.IndexByte(stringPrefixClass, line[i]) >= 0 {
		i++
	}
	if i >= len(line) {
		return "", false, false
	}
	switch line[i] {
	case '"':
		if m := contDoubleLineRe.FindString(line[pos:]); m != "" {
			return m, strings.HasSuffix(m, `"`), true
		}
	case '\'':
		if m := contSingleLineRe.FindString(line[pos:]); m != "" {
			return m, strings.HasSuffix(m, `'`), true
		}
	}
	return "", false, false
}

var numRe = regexp.MustCompile(`^(?:0[xX][0-9a-fA-F]+|(?:[0-9]+\.[0-9]*|\.[0-9]+|[0-9]+)(?:[eE][+-]?[0-9]+)?)`)

func rstripLineEnding(s string) string {
	return strings.TrimRight(s, "\r\n")
}

// readLine returns the next line starting at pos, terminator included
// (mirrors Python's splitlines(keepends=True), treating a lone "\r" as a
// valid terminator alongside "\n" and "\r\n").
func readLine(input string, pos int) string {
	i := strings.IndexAny(input[pos:], "\r\n")
	if i < 0 {
		return input[pos:]
	}
	nl := pos + i
	end := nl + 1
	if input[nl] == '\r' && nl+1 < len(input) && input[nl+1] == '\n' {
		end = nl + 2
	}
	return input[pos:end]
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Tokenize converts source into a complete token stream terminated by
// EndMarker, using a fresh per-call symbol interner.
func Tokenize(source string) ([]token.Token, error) {
	return TokenizeWith(source, symbol.New())
}

// TokenizeWith is Tokenize with a caller-supplied interner, for callers
// running multiple compilations against a single shared (thread-safe)
// interner.
func TokenizeWith(input string, interner *symbol.Interner) ([]token.Token, error) {
	var result []token.Token

	parenlev := 0
	continued := false
	indents := []int{0}

	const noContstr = -1
	contstrStart := noContstr
	var contstrEnd *regexp.Regexp
	needcont := false

	var line string
	pos := 0

lines:
	for pos < len(input) {
		lineStart := pos
		line = readLine(input, pos)
		lineLen := len(line)
		lineEnd := lineStart + lineLen
		pos = lineEnd
		linePos := 0

		switch {
		case contstrStart != noContstr:
			if loc := contstrEnd.FindStringIndex(line); loc != nil {
				tokEnd := loc[1]
				result = append(result, token.Token{Kind: token.Str, Span: span.New(contstrStart, lineStart+tokEnd)})
				contstrStart = noContstr
				needcont = false
				continue lines
			}
			if needcont && !strings.HasSuffix(line, "\\\n") && !strings.HasSuffix(line, "\\\r\n") {
				result = append(result, token.Token{Kind: token.ErrorToken, Span: span.New(contstrStart, lineEnd)})
				contstrStart = noContstr
				continue lines
			}
			continue lines

		case parenlev == 0 && !continued:
			column := 0
			for linePos < lineLen {
				b := line[linePos]
				if b == ' ' {
					column++
				} else if b == '\t' {
					column = (column/tabSize + 1) * tabSize
				} else if b == '\f' {
					column = 0
				} else {
					break
				}
				linePos++
			}

			if linePos == lineLen {
				break lines
			}

			if b := line[linePos]; b == '#' || b == '\r' || b == '\n' {
				if b == '#' {
					commentTok := rstripLineEnding(line[linePos:])
					clen := len(commentTok)
					result = append(result, token.Token{Kind: token.Comment, Span: span.New(lineStart+linePos, lineStart+linePos+clen)})
					linePos += clen
				}
				result = append(result, token.Token{Kind: token.WhitespaceNewline, Span: span.New(lineStart+linePos, lineEnd)})
				continue lines
			}

			restOff := lineStart + linePos

			if column > indents[len(indents)-1] {
				indents = append(indents, column)
				result = append(result, token.Token{Kind: token.Indent, Span: span.New(lineStart, restOff)})
			}

			if !containsInt(indents, column) {
				return nil, &TokenizeError{Msg: msgUnindent, Offset: restOff}
			}

			for column < indents[len(indents)-1] {
				indents = indents[:len(indents)-1]
				result = append(result, token.Token{Kind: token.Dedent, Span: span.New(restOff, restOff)})
			}

		default:
			continued = false
		}

		for linePos < lineLen {
			for linePos < lineLen && (line[linePos] == ' ' || line[linePos] == '\t' || line[linePos] == '\f') {
				linePos++
			}
			if linePos >= lineLen {
				break
			}

			soff := lineStart + linePos
			b := line[linePos]

			switch {
			case isDigit(b) || (b == '.' && linePos+1 < lineLen && isDigit(line[linePos+1])):
				m := numRe.FindString(line[linePos:])
				result = append(result, token.Token{Kind: token.Num, Span: span.New(soff, soff+len(m)), Sym: interner.Intern(m)})
				linePos += len(m)

			case b == '\r' || b == '\n':
				termLen := 1
				if b == '\r' && linePos+1 < lineLen && line[linePos+1] == '\n' {
					termLen = 2
				}
				kind := token.Newline
				if parenlev > 0 {
					kind = token.WhitespaceNewline
				}
				result = append(result, token.Token{Kind: kind, Span: span.New(soff, soff+termLen)})
				linePos += termLen

			case b == '#':
				commentTok := rstripLineEnding(line[linePos:])
				result = append(result, token.Token{Kind: token.Comment, Span: span.New(soff, soff+len(commentTok))})
				linePos += len(commentTok)

			case tripleOpenRe.MatchString(line[linePos:]):
				opener := tripleOpenRe.FindString(line[linePos:])
				endRe := contstrEndRe(opener)
				searchFrom := linePos + len(opener)
				if loc := endRe.FindStringIndex(line[searchFrom:]); loc != nil {
					tokEnd := searchFrom + loc[1]
					result = append(result, token.Token{Kind: token.Str, Span: span.New(soff, lineStart+tokEnd)})
					linePos = tokEnd
				} else {
					contstrStart = soff
					contstrEnd = endRe
					linePos = lineLen
				}

			default:
				if m, complete, ok := matchContStr(line, linePos); ok {
					if complete {
						result = append(result, token.Token{Kind: token.Str, Span: span.New(soff, soff+len(m))})
						linePos += len(m)
					} else {
						contstrStart = soff
						contstrEnd = contstrEndRe(m)
						needcont = true
						linePos += len(m)
					}
					continue
				}

				switch {
				case isIdentifierStart(b):
					start := linePos
					for linePos < lineLen && isIdentifierChar(line[linePos]) {
						linePos++
					}
					text := line[start:linePos]
					result = append(result, token.Token{Kind: token.Name, Span: span.New(soff, lineStart+linePos), Sym: interner.Intern(text)})

				case b == '\\':
					continued = true
					linePos = lineLen

				default:
					text := punctText(line, linePos)
					if text == "" {
						result = append(result, token.Token{Kind: token.ErrorToken, Span: span.New(soff, soff+1)})
						linePos++
						continue
					}
					kind, ok := token.PunctKind(text)
					if !ok {
						result = append(result, token.Token{Kind: token.ErrorToken, Span: span.New(soff, soff+1)})
						linePos++
						continue
					}
					switch kind {
					case token.OpenParen, token.OpenBracket, token.OpenBrace:
						parenlev++
					case token.CloseParen, token.CloseBracket, token.CloseBrace:
						if parenlev > 0 {
							parenlev--
						}
					}
					result = append(result, token.Token{Kind: kind, Span: span.New(soff, soff+len(text))})
					linePos += len(text)
				}
			}
		}
	}

	return finish(result, input, line, contstrStart != -1, continued, indents)
}

// punctText returns the longest punctuation lexeme recognized at
// line[pos:], preferring multi-character operators over their single-rune
// prefixes. Otherwise it returns the single rune at pos, whether or not it
// is punctuation (the caller checks it with token.PunctKind), or "" if the
// bytes at pos are not valid UTF-8.
func punctText(line string, pos int) string {
	rest := line[pos:]
	switch {
	case strings.HasPrefix(rest, "..."):
		return "..."
	case strings.HasPrefix(rest, "**"):
		return "**"
	default:
		r, size := utf8.DecodeRuneInString(rest)
		if r == utf8.RuneError {
			return ""
		}
		return rest[:size]
	}
}

func finish(result []token.Token, input, lastLine string, hasContstr, continued bool, indents []int) ([]token.Token, error) {
	inputLen := len(input)

	if hasContstr {
		return nil, &TokenizeError{Msg: msgEOFString, Offset: inputLen}
	}
	if continued {
		return nil, &TokenizeError{Msg: msgEOFStatement, Offset: inputLen}
	}

	if lastLine != "" {
		last := lastLine[len(lastLine)-1]
		if last != '\r' && last != '\n' {
			kind := token.Newline
			if strings.TrimSpace(lastLine) == "" {
				kind = token.WhitespaceNewline
			}
			result = append(result, token.Token{Kind: kind, Span: span.Zero(inputLen)})
		}
	}

	for range indents[1:] {
		result = append(result, token.Token{Kind: token.Dedent, Span: span.Zero(inputLen)})
	}
	result = append(result, token.Token{Kind: token.EndMarker, Span: span.Zero(inputLen)})

	return result, nil
}

// FilterTrivia drops Comment and WhitespaceNewline tokens, the shape the
// parser requires as input (spec's "token filter" pipeline stage).
func FilterTrivia(tokens []token.Token) []token.Token {
	out := make([]token.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind == token.Comment || t.Kind == token.WhitespaceNewline {
			continue
		}
		out = append(out, t)
	}
	return out
}
