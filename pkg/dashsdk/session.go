package dashsdk

import (
	"encoding/json"
	"sync"
)

// SessionKey is the fixed storage key the session record lives under in
// whichever tier holds it.
const SessionKey = "backdesk.session"

// SessionRecord is the client-held session state. It is advisory: routing
// reads it, but the service re-verifies the token on every request.
type SessionRecord struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Role            Role   `json:"role"`
	Email           string `json:"email"`
	Username        string `json:"username"`
}

// Storage is one tier of client-side key/value storage, e.g. browser session
// storage (ephemeral) or local storage (persistent).
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// MemoryStorage is an in-process Storage tier.
type MemoryStorage struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{m: make(map[string]string)}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemoryStorage) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *MemoryStorage) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// SessionStore holds the session record in one of two tiers. The ephemeral
// tier dies with the browser session; the persistent tier survives restarts
// ("remember me"). Exactly one tier is authoritative at a time, and the
// ephemeral tier is checked first on load.
type SessionStore struct {
	Ephemeral  Storage
	Persistent Storage
}

// NewSessionStore builds a store over in-memory tiers, useful for tests and
// non-browser clients. Browser embedders supply their own Storage pair.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		Ephemeral:  NewMemoryStorage(),
		Persistent: NewMemoryStorage(),
	}
}

// Save writes the record to exactly one tier and clears the other, so a stale
// copy in the losing tier can never shadow the fresh one.
func (s *SessionStore) Save(rec SessionRecord, persist bool) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}

	if persist {
		s.Persistent.Set(SessionKey, string(data))
		s.Ephemeral.Delete(SessionKey)
	} else {
		s.Ephemeral.Set(SessionKey, string(data))
		s.Persistent.Delete(SessionKey)
	}
}

// Load reads the record, ephemeral tier first. A record that fails to parse
// reads as absent.
func (s *SessionStore) Load() *SessionRecord {
	for _, tier := range []Storage{s.Ephemeral, s.Persistent} {
		raw, ok := tier.Get(SessionKey)
		if !ok {
			continue
		}

		var rec SessionRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		return &rec
	}
	return nil
}

// Clear removes the record from both tiers.
func (s *SessionStore) Clear() {
	s.Ephemeral.Delete(SessionKey)
	s.Persistent.Delete(SessionKey)
}
