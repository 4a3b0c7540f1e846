// Package span provides the byte-range source location type shared by the
// lexer, parser, and AST.
package span

import "fmt"

// Span is a half-open byte range [Start, End) into the original source.
type Span struct {
	Start int
	End   int
}

// New constructs a Span, panicking if the range is inverted.
func New(start, end int) Span {
	if end < start {
		panic(fmt.Sprintf("span: end %d before start %d", end, start))
	}
	return Span{Start: start, End: end}
}

// Zero is the zero-length span at offset off, used for virtual tokens such
// as Dedent and the synthetic trailing Newline.
func Zero(off int) Span {
	return Span{Start: off, End: off}
}

// Len reports the number of bytes covered by s.
func (s Span) Len() int {
	return s.End - s.Start
}

// Slice returns the substring of src covered by s.
func (s Span) Slice(src string) string {
	return src[s.Start:s.End]
}

// Covers reports whether s fully contains other.
func (s Span) Covers(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Spans is anything that can report its own Span, satisfied by Token and
// by Spanned[T].
type Spans interface {
	GetSpan() Span
}

func (s Span) GetSpan() Span { return s }

// FromPair returns the smallest span covering both a and b.
func FromPair(a, b Spans) Span {
	as, bs := a.GetSpan(), b.GetSpan()
	start := as.Start
	if bs.Start < start {
		start = bs.Start
	}
	end := as.End
	if bs.End > end {
		end = bs.End
	}
	return Span{Start: start, End: end}
}

// Spanned pairs a node with the span of source text that produced it.
type Spanned[T any] struct {
	Node T
	Span Span
}

// Of wraps node with sp.
func Of[T any](node T, sp Span) Spanned[T] {
	return Spanned[T]{Node: node, Span: sp}
}

func (s Spanned[T]) GetSpan() Span { return s.Span }
