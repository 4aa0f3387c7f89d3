package presence

import (
	"sync"

	"github.com/ffx64/discord-presence-go/models"
)

// State is the activity the application wants shown. It is safe for
// concurrent use; every mutation bumps a version the Adapter compares
// against what it last sent.
type State struct {
	mu       sync.Mutex
	activity models.Activity
	version  uint64
}

// NewState returns a state holding a. No change is pending until the first
// mutation unless a is non-empty.
func NewState(a models.Activity) *State {
	s := &State{activity: a.Clone()}
	if !a.IsEmpty() {
		s.version = 1
	}
	return s
}

// Set replaces the activity with a copy of a.
func (s *State) Set(a models.Activity) {
	a = a.Clone()
	s.mu.Lock()
	s.activity = a
	s.version++
	s.mu.Unlock()
}

// Update edits the activity in place.
func (s *State) Update(fn func(a *models.Activity)) {
	s.mu.Lock()
	fn(&s.activity)
	s.version++
	s.mu.Unlock()
}

// Clear empties the activity, which removes the presence once synced.
func (s *State) Clear() {
	s.Set(models.Activity{})
}

// Snapshot returns a deep copy of the activity and its version.
func (s *State) Snapshot() (models.Activity, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activity.Clone(), s.version
}
