// Package session is the naive demo login guard: a bearer token handed out
// on POST /api/session and checked by the API middleware. Tokens live in an
// in-process TTL cache, so a restart logs everyone out.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"bankdash/internal/cache"
)

const maxSessions = 1024

type Info struct {
	Username  string
	CreatedAt time.Time
}

type Store struct {
	tokens *cache.LRUCache[Info]
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		tokens: cache.NewLRUCache[Info](maxSessions, ttl),
	}
}

// Create registers a new session and returns its token.
func (s *Store) Create(username string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	s.tokens.Set(token, Info{
		Username:  username,
		CreatedAt: time.Now(),
	})
	return token, nil
}

// Validate reports whether the token names a live session.
func (s *Store) Validate(token string) (Info, bool) {
	if token == "" {
		return Info{}, false
	}
	return s.tokens.Get(token)
}

// Revoke ends the session for the given token.
func (s *Store) Revoke(token string) {
	s.tokens.Delete(token)
}

// CleanExpired lets the cache manager sweep dead sessions.
func (s *Store) CleanExpired() int {
	return s.tokens.CleanExpired()
}
