package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("session not found")

// Store keeps sessions in memory keyed by id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	maxChat  int
	now      func() time.Time
}

func NewStore(maxChatTurns int) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		maxChat:  maxChatTurns,
		now:      time.Now,
	}
}

// Create starts a new session on the Home page.
func (st *Store) Create() *Session {
	s := newSession(uuid.NewString(), st.maxChat, st.now)

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	return s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// EvictIdle removes sessions not seen for longer than ttl and returns how many went.
func (st *Store) EvictIdle(ttl time.Duration) int {
	cutoff := st.now().Add(-ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	evicted := 0
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartJanitor schedules EvictIdle on spec (a robfig/cron expression such as
// "@every 10m"). Stop the returned cron on shutdown.
func (st *Store) StartJanitor(spec string, ttl time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if n := st.EvictIdle(ttl); n > 0 {
			log.Info().Int("evicted", n).Int("remaining", st.Len()).Msg("idle sessions evicted")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
