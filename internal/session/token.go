package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IsTokenValid reports whether the token's embedded expiry claim is in the
// future. Malformed tokens and tokens without an expiry are invalid, never
// an error: the caller only needs to know whether a renewal is due. The
// signature is not checked here; the remote service does that.
func IsTokenValid(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(time.Now())
}
