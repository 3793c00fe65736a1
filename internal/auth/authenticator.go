package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/w12190/message.ly/internal/repo"
)

// dummyHash is compared against when the username does not exist, so the miss
// path costs the same as a real comparison and the response shape never leaks
// whether the account exists.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// ==========================
// Authenticator
// ==========================

// Authenticator verifies submitted credentials against the credential store
// and mints session tokens. Secret and TokenTTL come from configuration at
// construction; nothing is read from ambient state.
type Authenticator struct {
	Users    *repo.UserRepo
	Secret   []byte
	TokenTTL time.Duration
}

func NewAuthenticator(users *repo.UserRepo, secret []byte, tokenTTL time.Duration) *Authenticator {
	return &Authenticator{Users: users, Secret: secret, TokenTTL: tokenTTL}
}

// ==========================
// Authenticate
// ==========================

// Authenticate reports whether username/password match a stored account.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := a.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return false, nil
		}
		return false, err
	}

	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil, nil
}

// ==========================
// Login
// ==========================

// Login authenticates, advances last_login_at, then mints a token bound to the
// username. The timestamp update happens before issuance so it reflects the
// session the token represents. Bad credentials surface as ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	ok, err := a.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	if _, err := a.Users.TouchLogin(ctx, username); err != nil {
		return "", err
	}

	return GenerateToken(username, a.Secret, a.TokenTTL)
}
