package gate

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"travelspend/internal/cache"
)

// Store keeps gate sessions in memory. Sessions expire after ttl without a
// request, or earlier when capacity forces out the least recently used one.
type Store struct {
	sessions *cache.LRUCache[State]
}

// NewStore creates a session store.
func NewStore(maxSessions int, ttl time.Duration) *Store {
	return &Store{sessions: cache.NewSlidingLRUCache[State](maxSessions, ttl)}
}

// Load returns the session for id. Unknown or expired ids, including the
// empty string, yield a fresh Unset session with a new id.
func (st *Store) Load(id string) Session {
	if id != "" {
		if state, ok := st.sessions.Get(id); ok {
			return Session{ID: id, State: state}
		}
	}
	return Session{ID: NewSessionID(), State: Unset}
}

// Save stores the session state under its id.
func (st *Store) Save(s Session) {
	st.sessions.Set(s.ID, s.State)
}

// CleanExpired implements cache.Cleaner.
func (st *Store) CleanExpired() int {
	return st.sessions.CleanExpired()
}

// Size returns the number of live sessions.
func (st *Store) Size() int {
	return st.sessions.Size()
}

// NewSessionID returns a random 128-bit hex identifier.
func NewSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("sess_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
