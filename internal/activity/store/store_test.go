// internal/activity/store/store_test.go
package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestSeed() []Activity {
	return []Activity{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Full Activity",
			Description:     "Full activity",
			Schedule:        "Never",
			MaxParticipants: 1,
			Participants:    []string{"existing@mergington.edu"},
		},
	}
}

func mustSignUp(t *testing.T, s *Store, name, email string) int {
	t.Helper()
	size, err := s.SignUp(name, email)
	require.NoError(t, err)
	return size
}

func mustUnregister(t *testing.T, s *Store, name, email string) int {
	t.Helper()
	size, err := s.Unregister(name, email)
	require.NoError(t, err)
	return size
}

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(createTestSeed())
	require.NoError(t, err)
	return s
}

// ==========================
// Construction
// ==========================

func TestNew_RejectsInvalidSeed(t *testing.T) {
	tests := []struct {
		name string
		seed []Activity
	}{
		{
			name: "empty name",
			seed: []Activity{{Name: "", MaxParticipants: 1}},
		},
		{
			name: "zero capacity",
			seed: []Activity{{Name: "Art Club", MaxParticipants: 0}},
		},
		{
			name: "over capacity",
			seed: []Activity{{Name: "Art Club", MaxParticipants: 1, Participants: []string{"a@x.edu", "b@x.edu"}}},
		},
		{
			name: "duplicate participant",
			seed: []Activity{{Name: "Art Club", MaxParticipants: 5, Participants: []string{"a@x.edu", "a@x.edu"}}},
		},
		{
			name: "duplicate activity name",
			seed: []Activity{
				{Name: "Art Club", MaxParticipants: 5},
				{Name: "Art Club", MaxParticipants: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.seed)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, ErrInvalidSeed)
		})
	}
}

func TestNew_CopiesSeed(t *testing.T) {
	seed := createTestSeed()
	s, err := New(seed)
	require.NoError(t, err)

	seed[0].Participants[0] = "mutated@mergington.edu"

	chess, err := s.Get("Chess Club")
	require.NoError(t, err)
	assert.Equal(t, "michael@mergington.edu", chess.Participants[0])
}

func TestNewDefault_SatisfiesCapacity(t *testing.T) {
	s := NewDefault()
	activities := s.List()

	assert.Len(t, activities, len(DefaultActivities()))
	assert.Contains(t, activities, "Chess Club")
	assert.Contains(t, activities, "Programming Class")
	assert.Contains(t, activities, "Gym Class")

	for name, a := range activities {
		assert.LessOrEqual(t, len(a.Participants), a.MaxParticipants, name)
		assert.Equal(t, name, a.Name)
	}
}

// ==========================
// Read Views
// ==========================

func TestList_ReturnsDefensiveCopy(t *testing.T) {
	s := createTestStore(t)

	view := s.List()
	chess := view["Chess Club"]
	chess.Participants[0] = "hacker@mergington.edu"
	chess.Participants = append(chess.Participants, "extra@mergington.edu")
	view["Chess Club"] = chess
	delete(view, "Full Activity")

	fresh := s.List()
	assert.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"}, fresh["Chess Club"].Participants)
	assert.Contains(t, fresh, "Full Activity")
}

func TestGet_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Get("Nonexistent Activity")
	assert.ErrorIs(t, err, ErrActivityNotFound)
}

func TestNames_Sorted(t *testing.T) {
	s := createTestStore(t)
	assert.Equal(t, []string{"Chess Club", "Full Activity"}, s.Names())
}

// ==========================
// SignUp
// ==========================

func TestSignUp_Success(t *testing.T) {
	s := createTestStore(t)

	_, err := s.SignUp("Chess Club", "newstudent@mergington.edu")
	require.NoError(t, err)

	chess, err := s.Get("Chess Club")
	require.NoError(t, err)
	assert.Len(t, chess.Participants, 3)
	assert.Equal(t, "newstudent@mergington.edu", chess.Participants[2])
}

func TestSignUp_Errors(t *testing.T) {
	tests := []struct {
		name          string
		activity      string
		email         string
		expectedError error
	}{
		{
			name:          "unknown activity",
			activity:      "Nonexistent Activity",
			email:         "x@y.edu",
			expectedError: ErrActivityNotFound,
		},
		{
			name:          "unknown activity with existing email",
			activity:      "chess club",
			email:         "michael@mergington.edu",
			expectedError: ErrActivityNotFound,
		},
		{
			name:          "already registered",
			activity:      "Chess Club",
			email:         "michael@mergington.edu",
			expectedError: ErrAlreadyRegistered,
		},
		{
			name:          "activity full",
			activity:      "Full Activity",
			email:         "newstudent@mergington.edu",
			expectedError: ErrCapacityExceeded,
		},
		{
			name:          "duplicate wins over full",
			activity:      "Full Activity",
			email:         "existing@mergington.edu",
			expectedError: ErrAlreadyRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestStore(t)
			before := s.List()

			_, err := s.SignUp(tt.activity, tt.email)
			assert.ErrorIs(t, err, tt.expectedError)
			assert.Equal(t, before, s.List())
		})
	}
}

func TestSignUp_Twice(t *testing.T) {
	s := createTestStore(t)

	mustSignUp(t, s, "Chess Club", "newstudent@mergington.edu")
	_, err := s.SignUp("Chess Club", "newstudent@mergington.edu")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	chess, _ := s.Get("Chess Club")
	assert.Len(t, chess.Participants, 3)
}

func TestSignUp_EmailIsCaseSensitive(t *testing.T) {
	s := createTestStore(t)

	mustSignUp(t, s, "Chess Club", "Michael@Mergington.edu")

	chess, _ := s.Get("Chess Club")
	assert.Contains(t, chess.Participants, "Michael@Mergington.edu")
	assert.Contains(t, chess.Participants, "michael@mergington.edu")
}

func TestSignUp_FillsToCapacity(t *testing.T) {
	s, err := New([]Activity{{Name: "Tiny", MaxParticipants: 3}})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		mustSignUp(t, s, "Tiny", fmt.Sprintf("s%d@mergington.edu", i))
	}
	size, err := s.SignUp("Tiny", "late@mergington.edu")
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 3, size)

	tiny, _ := s.Get("Tiny")
	assert.Equal(t, []string{"s0@mergington.edu", "s1@mergington.edu", "s2@mergington.edu"}, tiny.Participants)
}

func TestSignUp_ReturnsRosterSize(t *testing.T) {
	s := createTestStore(t)

	assert.Equal(t, 3, mustSignUp(t, s, "Chess Club", "newstudent@mergington.edu"))
	assert.Equal(t, 4, mustSignUp(t, s, "Chess Club", "another@mergington.edu"))

	size, err := s.SignUp("Chess Club", "another@mergington.edu")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, 4, size)

	size, err = s.SignUp("Nonexistent Activity", "x@y.edu")
	assert.ErrorIs(t, err, ErrActivityNotFound)
	assert.Zero(t, size)
}

// ==========================
// Unregister
// ==========================

func TestUnregister_Success(t *testing.T) {
	s := createTestStore(t)

	mustUnregister(t, s, "Chess Club", "michael@mergington.edu")

	chess, _ := s.Get("Chess Club")
	assert.Equal(t, []string{"daniel@mergington.edu"}, chess.Participants)

	_, err := s.Unregister("Chess Club", "michael@mergington.edu")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestUnregister_PreservesOrder(t *testing.T) {
	s, err := New([]Activity{{
		Name:            "Art Club",
		MaxParticipants: 5,
		Participants:    []string{"a@x.edu", "b@x.edu", "c@x.edu", "d@x.edu"},
	}})
	require.NoError(t, err)

	mustUnregister(t, s, "Art Club", "b@x.edu")

	art, _ := s.Get("Art Club")
	assert.Equal(t, []string{"a@x.edu", "c@x.edu", "d@x.edu"}, art.Participants)
}

func TestUnregister_ReturnsRosterSize(t *testing.T) {
	s := createTestStore(t)

	assert.Equal(t, 1, mustUnregister(t, s, "Chess Club", "michael@mergington.edu"))
	assert.Equal(t, 0, mustUnregister(t, s, "Chess Club", "daniel@mergington.edu"))
}

func TestUnregister_Errors(t *testing.T) {
	tests := []struct {
		name          string
		activity      string
		email         string
		expectedError error
	}{
		{
			name:          "unknown activity",
			activity:      "Nonexistent Activity",
			email:         "michael@mergington.edu",
			expectedError: ErrActivityNotFound,
		},
		{
			name:          "not registered",
			activity:      "Chess Club",
			email:         "notregistered@mergington.edu",
			expectedError: ErrNotRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestStore(t)
			_, err := s.Unregister(tt.activity, tt.email)
			assert.True(t, errors.Is(err, tt.expectedError), "got %v", err)
		})
	}
}

func TestUnregister_FreesCapacity(t *testing.T) {
	s := createTestStore(t)

	mustUnregister(t, s, "Full Activity", "existing@mergington.edu")
	mustSignUp(t, s, "Full Activity", "newstudent@mergington.edu")
}

// ==========================
// Concurrency
// ==========================

func TestSignUp_ConcurrentNeverExceedsCapacity(t *testing.T) {
	s, err := New([]Activity{{Name: "Robotics", MaxParticipants: 10}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.SignUp("Robotics", fmt.Sprintf("s%d@mergington.edu", i)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
			_ = s.List()
		}(i)
	}
	wg.Wait()

	robotics, _ := s.Get("Robotics")
	assert.Equal(t, 10, succeeded)
	assert.Len(t, robotics.Participants, 10)
}

func TestSignUp_ConcurrentSameEmailOnce(t *testing.T) {
	s := createTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.SignUp("Chess Club", "racer@mergington.edu")
		}()
	}
	wg.Wait()

	chess, _ := s.Get("Chess Club")
	count := 0
	for _, p := range chess.Participants {
		if p == "racer@mergington.edu" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
