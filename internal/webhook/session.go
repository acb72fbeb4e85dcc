package webhook

import (
	"sync"
	"time"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
)

// sessionTTL matches the NLU's own context expiry.
const sessionTTL = 20 * time.Minute

// SessionStore keeps the live contexts of direct LINE chats, playing the
// part the NLU plays for fulfillment sessions: each turn ages stored
// contexts by one and the engine's output overrides them by name.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]sessionEntry
	ttl     time.Duration
	now     func() time.Time
}

type sessionEntry struct {
	contexts []dialogflow.Context
	expires  time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		entries: make(map[string]sessionEntry),
		ttl:     sessionTTL,
		now:     time.Now,
	}
}

// Load returns the contexts a new turn of session arrives with.
func (s *SessionStore) Load(session string) []dialogflow.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[session]
	if !ok {
		return nil
	}
	if s.now().After(e.expires) {
		delete(s.entries, session)
		return nil
	}
	out := make([]dialogflow.Context, len(e.contexts))
	copy(out, e.contexts)
	return out
}

// Save ages inbound by one turn and applies the engine's output contexts.
// A lifespan of 0 in output removes the context.
func (s *SessionStore) Save(session string, inbound, output []dialogflow.Context) {
	byName := make(map[string]int)
	var next []dialogflow.Context
	put := func(c dialogflow.Context) {
		if i, ok := byName[c.Name]; ok {
			next[i] = c
			return
		}
		byName[c.Name] = len(next)
		next = append(next, c)
	}
	for _, c := range inbound {
		c.LifespanCount--
		put(c)
	}
	for _, c := range output {
		put(c)
	}

	live := next[:0]
	for _, c := range next {
		if c.LifespanCount > 0 {
			live = append(live, c)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(live) == 0 {
		delete(s.entries, session)
		return
	}
	s.entries[session] = sessionEntry{contexts: live, expires: s.now().Add(s.ttl)}
}

// Sweep forgets expired sessions.
func (s *SessionStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
		}
	}
}

// Len returns the number of tracked sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
