// Package symbol implements identifier interning for the lexer and parser.
//
// A Symbol is a small, comparable handle: equal identifiers from the same
// Interner compare equal by value, and the underlying text is recovered via
// Interner.Text. Interners are read-mostly after warmup, so lookups are
// guarded by a RWMutex rather than a single mutex.
package symbol

import (
	"sync"

	"github.com/google/uuid"
)

// Symbol is an interned identifier handle. The zero Symbol is not valid;
// it never compares equal to a Symbol returned by Interner.Intern.
type Symbol struct {
	id int32
}

// Interner assigns small integer handles to identifier strings. It is safe
// for concurrent use: spec.md §5 allows a process-wide interner provided it
// is internally synchronized, and requires it not be torn down while any
// live Symbol remains reachable (this implementation simply never frees
// entries, so that constraint holds trivially).
type Interner struct {
	mu     sync.RWMutex
	byText map[string]Symbol
	byID   []string
	uid    uuid.UUID
}

// New creates an empty Interner. Each Interner carries its own identity
// (ID) so a host process running multiple compilations concurrently can
// distinguish their interners in diagnostics without the core itself
// logging anything.
func New() *Interner {
	return &Interner{
		byText: make(map[string]Symbol),
		uid:    uuid.New(),
	}
}

// ID returns the Interner's process-unique identity.
func (i *Interner) ID() uuid.UUID {
	return i.uid
}

// Intern returns the Symbol for text, allocating a new handle on first
// occurrence.
func (i *Interner) Intern(text string) Symbol {
	i.mu.RLock()
	if sym, ok := i.byText[text]; ok {
		i.mu.RUnlock()
		return sym
	}
	i.mu.RUnlock()

	i.mu.Lock()
	defer i.mu.Unlock()
	if sym, ok := i.byText[text]; ok {
		return sym
	}
	sym := Symbol{id: int32(len(i.byID)) + 1}
	i.byID = append(i.byID, text)
	i.byText[text] = sym
	return sym
}

// Text recovers the string a Symbol was interned from.
func (i *Interner) Text(s Symbol) string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.byID[s.id-1]
}

// Equal reports whether a and b are the same interned identifier. Symbols
// from different Interners are never equal, even if their backing text
// matches, since comparison is purely by handle.
func (a Symbol) Equal(b Symbol) bool {
	return a.id == b.id
}
