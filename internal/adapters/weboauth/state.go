package weboauth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// flowState is the anti-CSRF state of one browser flow.
// The id correlates the callback to its pending request; the secret proves the
// callback was issued for that request.
type flowState struct {
	id     string
	secret string
}

func newFlowState() (flowState, error) {
	secret, err := generateRandomString(24)
	if err != nil {
		return flowState{}, err
	}
	return flowState{id: uuid.NewString(), secret: secret}, nil
}

// String renders the state parameter sent to the provider.
func (s flowState) String() string {
	return s.id + "." + s.secret
}

// parseState splits a state parameter back into id and secret.
func parseState(raw string) (flowState, bool) {
	id, secret, ok := strings.Cut(raw, ".")
	if !ok || id == "" || secret == "" {
		return flowState{}, false
	}
	return flowState{id: id, secret: secret}, true
}

// matches reports whether other carries the same secret, in constant time.
func (s flowState) matches(other flowState) bool {
	return subtle.ConstantTimeCompare([]byte(s.secret), []byte(other.secret)) == 1
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	return s[:length], nil
}
