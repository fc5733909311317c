// internal/activity/store/store.go
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrActivityNotFound  = errors.New("ACTIVITY_NOT_FOUND")
	ErrAlreadyRegistered = errors.New("ALREADY_REGISTERED")
	ErrCapacityExceeded  = errors.New("CAPACITY_EXCEEDED")
	ErrNotRegistered     = errors.New("NOT_REGISTERED")
	ErrInvalidSeed       = errors.New("INVALID_SEED")
)

// Store is the in-memory activity registry. A single RWMutex guards every
// activity; mutations hold the write lock for the whole check-then-apply.
type Store struct {
	mu         sync.RWMutex
	activities map[string]*Activity
}

// New builds a store from seed data. The seed is copied, so later changes
// to the caller's slices do not leak into the registry.
func New(seed []Activity) (*Store, error) {
	s := &Store{activities: make(map[string]*Activity, len(seed))}
	for _, a := range seed {
		if err := validateSeedActivity(a); err != nil {
			return nil, err
		}
		if _, exists := s.activities[a.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate activity %q", ErrInvalidSeed, a.Name)
		}
		c := a.clone()
		s.activities[a.Name] = &c
	}
	return s, nil
}

// NewDefault returns a store seeded with DefaultActivities.
func NewDefault() *Store {
	s, err := New(DefaultActivities())
	if err != nil {
		panic(fmt.Sprintf("default activities are invalid: %v", err))
	}
	return s
}

func validateSeedActivity(a Activity) error {
	if a.Name == "" {
		return fmt.Errorf("%w: activity name is empty", ErrInvalidSeed)
	}
	if a.MaxParticipants <= 0 {
		return fmt.Errorf("%w: %q has non-positive capacity %d", ErrInvalidSeed, a.Name, a.MaxParticipants)
	}
	if len(a.Participants) > a.MaxParticipants {
		return fmt.Errorf("%w: %q has %d participants but capacity %d",
			ErrInvalidSeed, a.Name, len(a.Participants), a.MaxParticipants)
	}
	seen := make(map[string]struct{}, len(a.Participants))
	for _, p := range a.Participants {
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: %q lists %q twice", ErrInvalidSeed, a.Name, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// List returns a deep copy of the registry keyed by activity name.
func (s *Store) List() map[string]Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Activity, len(s.activities))
	for name, a := range s.activities {
		out[name] = a.clone()
	}
	return out
}

// Get returns a copy of a single activity.
func (s *Store) Get(name string) (Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.activities[name]
	if !ok {
		return Activity{}, fmt.Errorf("%w: %s", ErrActivityNotFound, name)
	}
	return a.clone(), nil
}

// Names returns the activity names in lexical order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.activities))
	for name := range s.activities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SignUp appends email to the activity roster and returns the new roster
// size. Checks run in a fixed order: existence, then duplicate membership,
// then capacity.
func (s *Store) SignUp(name, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrActivityNotFound, name)
	}
	if a.HasParticipant(email) {
		return len(a.Participants), fmt.Errorf("%w: %s in %s", ErrAlreadyRegistered, email, name)
	}
	if a.IsFull() {
		return len(a.Participants), fmt.Errorf("%w: %s (%d/%d)", ErrCapacityExceeded, name, len(a.Participants), a.MaxParticipants)
	}

	a.Participants = append(a.Participants, email)
	return len(a.Participants), nil
}

// Unregister removes exactly one occurrence of email, keeping the order of
// the remaining participants, and returns the new roster size.
func (s *Store) Unregister(name, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrActivityNotFound, name)
	}
	idx := indexOf(a.Participants, email)
	if idx < 0 {
		return len(a.Participants), fmt.Errorf("%w: %s in %s", ErrNotRegistered, email, name)
	}

	a.Participants = append(a.Participants[:idx], a.Participants[idx+1:]...)
	return len(a.Participants), nil
}
