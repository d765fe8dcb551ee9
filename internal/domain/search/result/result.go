// Package result shapes normalized entities into the response envelope.
package result

// Envelope is the only contract exposed to callers: normalized items plus optional
// guidance. Errors never travel inside an envelope.
type Envelope[T any] struct {
	items       []T
	suggestions string
	message     string
}

// Assemble builds an envelope. Zero items is a valid outcome, not a failure:
// the caller's canned suggestions are attached only when items is empty.
// echo is an optional human-readable restatement of the criteria.
func Assemble[T any](items []T, suggestions, echo string) Envelope[T] {
	if items == nil {
		items = []T{}
	}
	e := Envelope[T]{items: items, message: echo}
	if len(items) == 0 {
		e.suggestions = suggestions
	}
	return e
}

// Items returns the normalized entities (never nil).
func (e Envelope[T]) Items() []T { return e.items }

// Suggestions returns guidance for an empty result, or "".
func (e Envelope[T]) Suggestions() string { return e.suggestions }

// Message returns the criteria echo, or "".
func (e Envelope[T]) Message() string { return e.message }

// Empty reports whether no entities were produced.
func (e Envelope[T]) Empty() bool { return len(e.items) == 0 }
