package store

import (
	"sync"

	"github.com/evcraddock/rentroll/internal/apierr"
)

// status tracks in-flight calls and the most recent failure of a store.
type status struct {
	mu      sync.Mutex
	loading int
	err     *apierr.Error
}

// begin marks a call in flight and clears the previous error.
func (s *status) begin() {
	s.mu.Lock()
	s.loading++
	s.err = nil
	s.mu.Unlock()
}

// end records the outcome of a call and returns it as an *apierr.Error.
func (s *status) end(err error) *apierr.Error {
	e := apierr.As(err)
	s.mu.Lock()
	s.loading--
	if e != nil {
		s.err = e
	}
	s.mu.Unlock()
	return e
}

// Loading reports whether any call is in flight.
func (s *status) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// Err returns the most recent failure, or nil.
func (s *status) Err() *apierr.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ResetErr clears the recorded failure.
func (s *status) ResetErr() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
}
