package patients

import "context"

// Authenticator port (interface to the auth endpoints)
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*Identity, error)
	Signup(ctx context.Context, email, password, fullName string) error
	Profile(ctx context.Context) (*Profile, error)
}
