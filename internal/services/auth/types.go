package auth

import (
	"errors"
	"time"
)

var ErrUnauthorized = errors.New("unauthorized")

// AccessClaims are the verified contents of a bearer token. The subject is
// the identity provider's account id.
type AccessClaims struct {
	ExternalID string
	ExpiresAt  time.Time
}
