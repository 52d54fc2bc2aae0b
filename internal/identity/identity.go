// Package identity verifies identity tokens issued to signed-in users and
// resolves them to a caller identity.
package identity

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNoEmail = errors.New("token carries no email claim")

// Identity is the verified caller behind a request.
type Identity struct {
	UID   string
	Email string
}

type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}
