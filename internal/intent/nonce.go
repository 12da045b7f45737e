package intent

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const nonceAction = "wa-cart-order"

// nonceLen is the number of hex characters exposed in a token.
const nonceLen = 16

// NonceIssuer creates and checks request anti-forgery tokens. Tokens are an
// HMAC over the current time bucket, a fixed action, and the cart session,
// so each token stays valid for one to two half-lives without server state.
type NonceIssuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewNonceIssuer builds an issuer with the given shared secret and token
// lifetime. A non-positive lifetime defaults to 24 hours.
func NewNonceIssuer(secret string, lifetime time.Duration) *NonceIssuer {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &NonceIssuer{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

func (n *NonceIssuer) tick(t time.Time) int64 {
	half := int64(n.lifetime/time.Second) / 2
	if half <= 0 {
		half = 1
	}
	return t.Unix() / half
}

func (n *NonceIssuer) tokenAt(tick int64, sessionID string) string {
	mac := hmac.New(sha256.New, n.secret)
	fmt.Fprintf(mac, "%d|%s|%s", tick, nonceAction, sessionID)
	sum := hex.EncodeToString(mac.Sum(nil))
	return sum[:nonceLen]
}

// Issue returns a fresh token for the session.
func (n *NonceIssuer) Issue(sessionID string) string {
	return n.tokenAt(n.tick(n.now()), sessionID)
}

// Verify reports whether the token is valid for the session in the current
// or previous time bucket.
func (n *NonceIssuer) Verify(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	current := n.tick(n.now())
	for _, tick := range []int64{current, current - 1} {
		if hmac.Equal([]byte(n.tokenAt(tick, sessionID)), []byte(token)) {
			return true
		}
	}
	return false
}
