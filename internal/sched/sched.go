// Package sched runs one-shot deferred actions on an explicit virtual
// clock. The session advances the clock from its frame loop, so a
// fired action mutates state exactly like another tick's worth of work
// and never races an in-progress frame.
package sched

import (
	"sort"
	"time"
)

// Handle identifies a pending action. The zero value is never pending.
type Handle uint64

type pending struct {
	handle Handle
	due    time.Duration
	fn     func()
}

// Scheduler owns pending one-shot actions. Not safe for concurrent
// use; it is driven from the single frame-loop goroutine.
type Scheduler struct {
	now     time.Duration
	next    Handle
	pending []pending
}

func New() *Scheduler {
	return &Scheduler{}
}

// Now reports accumulated virtual time.
func (s *Scheduler) Now() time.Duration { return s.now }

// After schedules fn to run once delay of virtual time has elapsed.
func (s *Scheduler) After(delay time.Duration, fn func()) Handle {
	s.next++
	s.pending = append(s.pending, pending{
		handle: s.next,
		due:    s.now + delay,
		fn:     fn,
	})
	return s.next
}

// Cancel drops a pending action. Unknown or already-fired handles are
// a no-op.
func (s *Scheduler) Cancel(h Handle) {
	for i, p := range s.pending {
		if p.handle == h {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// CancelAll drops every pending action. Called on session shutdown.
func (s *Scheduler) CancelAll() {
	s.pending = s.pending[:0]
}

// Pending reports the number of scheduled actions not yet fired.
func (s *Scheduler) Pending() int { return len(s.pending) }

// Advance moves the clock forward and fires every action that came
// due, in due order. Actions scheduled by a firing action are not run
// until a later Advance.
func (s *Scheduler) Advance(dt time.Duration) {
	s.now += dt

	var due []pending
	rest := s.pending[:0]
	for _, p := range s.pending {
		if p.due <= s.now {
			due = append(due, p)
		} else {
			rest = append(rest, p)
		}
	}
	s.pending = rest

	sort.SliceStable(due, func(i, j int) bool { return due[i].due < due[j].due })
	for _, p := range due {
		p.fn()
	}
}
