package server

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"jira-skill/internal/config"
	"jira-skill/internal/services"
)

const (
	defaultSessionTTL  = 30 * time.Minute
	defaultMaxSessions = 1024
)

// sessionEntry serializes the intents of one caller session.
type sessionEntry struct {
	mu       sync.Mutex
	session  *services.Session
	lastUsed time.Time
	active   int
}

// SessionStore keeps one skill session per caller session id, in memory.
// Sessions idle longer than ttl are dropped, and the store never holds more
// than max of them; the least recently used idle session goes first.
type SessionStore struct {
	mu        sync.Mutex
	entries   map[string]*sessionEntry
	settings  *config.Config
	connector *services.ConnectionManager
	logger    *zap.Logger
	ttl       time.Duration
	max       int
	now       func() time.Time
}

func NewSessionStore(settings *config.Config, connector *services.ConnectionManager, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		entries:   make(map[string]*sessionEntry),
		settings:  settings,
		connector: connector,
		logger:    logger,
		ttl:       defaultSessionTTL,
		max:       defaultMaxSessions,
		now:       time.Now,
	}
}

// Ephemeral returns a session that is not kept after the request.
func (st *SessionStore) Ephemeral() *services.Session {
	return services.NewSession(st.settings, st.connector, st.logger)
}

// Acquire returns the session for id, creating it on first use, locked for
// the caller. The returned func releases it.
func (st *SessionStore) Acquire(id string) (*services.Session, func()) {
	st.mu.Lock()
	now := st.now()
	entry, ok := st.entries[id]
	if !ok {
		st.evictLocked(now)
		entry = &sessionEntry{session: st.Ephemeral()}
		st.entries[id] = entry
		st.logger.Debug("session created", zap.String("caller_session", id), zap.String("session", entry.session.ID))
	}
	entry.lastUsed = now
	entry.active++
	st.mu.Unlock()

	entry.mu.Lock()
	return entry.session, func() {
		entry.mu.Unlock()
		st.mu.Lock()
		entry.active--
		entry.lastUsed = st.now()
		st.mu.Unlock()
	}
}

// evictLocked drops expired sessions, then the least recently used idle
// ones until there is room for one more. Sessions in use are never dropped.
func (st *SessionStore) evictLocked(now time.Time) {
	for id, entry := range st.entries {
		if entry.active == 0 && now.Sub(entry.lastUsed) > st.ttl {
			delete(st.entries, id)
		}
	}
	for len(st.entries) >= st.max {
		oldestID := ""
		var oldest time.Time
		for id, entry := range st.entries {
			if entry.active > 0 {
				continue
			}
			if oldestID == "" || entry.lastUsed.Before(oldest) {
				oldestID, oldest = id, entry.lastUsed
			}
		}
		if oldestID == "" {
			return
		}
		delete(st.entries, oldestID)
	}
}

// Len reports the number of sessions held.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}
