package web

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"orcamentos/internal/model"

	gocache "github.com/patrickmn/go-cache"
)

// Sessions maps bearer tokens to logged-in users. Tokens live in an expiring
// in-memory cache; restarting the process logs everyone out, which is fine
// for this deployment.
type Sessions struct {
	cache *gocache.Cache
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{cache: gocache.New(ttl, time.Hour)}
}

func (s *Sessions) Start(u model.User) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	token := hex.EncodeToString(b)
	s.cache.SetDefault(token, u)
	return token, nil
}

func (s *Sessions) User(token string) (model.User, bool) {
	v, ok := s.cache.Get(token)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}

func (s *Sessions) End(token string) {
	s.cache.Delete(token)
}
