// Package nav keeps the breadcrumb trail of visited views. Every entry
// carries the closure that rebuilds its view, so stepping back re-fetches
// instead of replaying cached state.
package nav

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrEmpty is returned when there is no previous view to return to.
var ErrEmpty = errors.New("nav: stack is empty")

// Entry is one breadcrumb slot.
type Entry struct {
	Title string
	ID    string
	Href  string
	// Activate rebuilds the entry's view. It runs the same fetch-and-render
	// path as the original navigation.
	Activate func(ctx context.Context) error
}

// Stack is the process-wide navigation trail. Pushing an ID that is already
// present truncates the trail from that slot before appending, so revisiting
// a level discards everything below it.
type Stack struct {
	mu      sync.Mutex
	entries []Entry
}

// NewStack returns an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push appends entry, first removing any existing entry with the same ID and
// everything after it.
func (s *Stack) Push(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.entries {
		if existing.ID == entry.ID {
			s.entries = s.entries[:i]
			break
		}
	}
	s.entries = append(s.entries, entry)
}

// ReturnToPrevious re-activates the most recent entry without popping it, so
// cancelling a form lands back on the view that opened it.
func (s *Stack) ReturnToPrevious(ctx context.Context) error {
	s.mu.Lock()
	if len(s.entries) == 0 {
		s.mu.Unlock()
		return ErrEmpty
	}
	entry := s.entries[len(s.entries)-1]
	s.mu.Unlock()

	if entry.Activate == nil {
		return nil
	}
	return entry.Activate(ctx)
}

// Activate handles breadcrumb selection: the trail is truncated to the named
// slot and the slot's view is rebuilt.
func (s *Stack) Activate(ctx context.Context, id string) error {
	s.mu.Lock()
	var entry Entry
	found := false
	for i, existing := range s.entries {
		if existing.ID == id {
			entry = existing
			s.entries = s.entries[:i+1]
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("nav: no entry with id %q", id)
	}
	if entry.Activate == nil {
		return nil
	}
	return entry.Activate(ctx)
}

// Pop removes the most recent entry without activating anything. Used when
// the view an entry points at no longer exists, e.g. after a delete.
func (s *Stack) Pop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) > 0 {
		s.entries = s.entries[:len(s.entries)-1]
	}
}

// Reset drops every entry. Used on logout.
func (s *Stack) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Entries returns a copy of the trail in order.
func (s *Stack) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Len reports the number of entries.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
