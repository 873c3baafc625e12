package auth

import (
	"context"

	"github.com/ivankudzin/matchcore/internal/domain/model"
)

type identityKey struct{}

// Identity is the authenticated caller. Profile is zero until the external
// account has registered one.
type Identity struct {
	ExternalID string
	Profile    model.Profile
}

func (i Identity) Registered() bool { return i.Profile.ProfileID != "" }

func (i Identity) IsAdmin() bool { return i.Registered() && i.Profile.Admin }

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
