package providers

import (
	"sync"
	"time"

	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
)

// tokenCache holds the last good provider token. Expired tokens read as absent.
type tokenCache struct {
	mu  sync.RWMutex
	tok domainauth.AuthToken
}

func (c *tokenCache) set(tok domainauth.AuthToken) {
	c.mu.Lock()
	c.tok = tok
	c.mu.Unlock()
}

func (c *tokenCache) clear() {
	c.set(domainauth.AuthToken{})
}

func (c *tokenCache) access(now time.Time) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tok.AccessToken == "" || c.tok.Expired(now) {
		return "", false
	}
	return c.tok.AccessToken, true
}

func (c *tokenCache) refresh() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tok.RefreshToken
}

// update replaces the access token and expiry, keeping the refresh token unless rotated.
func (c *tokenCache) update(access, refresh string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tok.AccessToken = access
	c.tok.ExpiresAt = expiresAt
	if refresh != "" {
		c.tok.RefreshToken = refresh
	}
}

var zeroTime time.Time
