package auth

import (
	"context"
	"errors"
	"strconv"

	"github.com/evolvetech/opsdash/models"
)

// ErrInvalidCredentials is returned for an unknown email or a password
// mismatch. Callers must not distinguish the two cases.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Authenticator verifies credentials and yields a minimal identity.
// A single explicit function stands in for a provider registry; swapping
// the verification strategy means swapping the implementation.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.Identity, error)
}

// UserFinder is the slice of the user store the authenticator needs.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// CredentialsAuthenticator checks a submitted password against the stored
// bcrypt hash.
type CredentialsAuthenticator struct {
	users UserFinder
}

func NewCredentialsAuthenticator(users UserFinder) *CredentialsAuthenticator {
	return &CredentialsAuthenticator{users: users}
}

func (a *CredentialsAuthenticator) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	return &models.Identity{
		ID:     strconv.FormatInt(user.ID, 10),
		Email:  user.Email,
		Name:   user.Name,
		Avatar: user.Avatar,
	}, nil
}
