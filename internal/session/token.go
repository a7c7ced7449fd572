package session

import (
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// AccessExpiry reads the exp claim of a JWT without verifying its
// signature. The portal never holds the signing key; the result only
// feeds the session summary.
func AccessExpiry(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, false
	}
	parsed, err := jwt.ParseInsecure([]byte(token), jwt.WithValidate(false))
	if err != nil {
		return time.Time{}, false
	}
	exp := parsed.Expiration()
	if exp.IsZero() {
		return time.Time{}, false
	}
	return exp, true
}
