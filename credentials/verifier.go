package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrebq/keycard/internal/logutil"
	"github.com/andrebq/keycard/userstore"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCost = bcrypt.DefaultCost

	maxPasswordLen = 72
)

type (
	Store interface {
		CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
		FindByUsername(ctx context.Context, username string) (userstore.User, error)
	}

	TokenIssuer interface {
		Issue(userID int64, username string) (string, error)
	}

	Verifier struct {
		store  Store
		tokens TokenIssuer
		cost   int
	}

	Option func(*Verifier)
)

func WithCost(cost int) Option {
	return func(v *Verifier) {
		v.cost = cost
	}
}

func New(store Store, tokens TokenIssuer, opts ...Option) *Verifier {
	v := &Verifier{
		store:  store,
		tokens: tokens,
		cost:   DefaultCost,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Register hashes password and creates a new user, returning its id.
func (v *Verifier) Register(ctx context.Context, username, password string) (int64, error) {
	if err := required(username, password); err != nil {
		return 0, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return 0, PasswordTooLong{Max: maxPasswordLen}
	} else if err != nil {
		return 0, fmt.Errorf("unable to hash password for %v, cause %w", username, err)
	}
	id, err := v.store.CreateUser(ctx, username, string(hash))
	if err != nil {
		return 0, err
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("user.name", username).Int64("user.id", id).Msg("User registered")
	return id, nil
}

// Login checks password against the stored hash of username and returns a
// fresh session token when they match.
func (v *Verifier) Login(ctx context.Context, username, password string) (string, error) {
	log := logutil.GetOrDefault(ctx)
	user, err := v.store.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		log.Debug().Str("user.name", username).Msg("Password mismatch")
		return "", InvalidPassword{Username: username}
	} else if err != nil {
		return "", fmt.Errorf("unable to compare password hash of %v, cause %w", username, err)
	}
	token, err := v.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("unable to issue token for %v, cause %w", username, err)
	}
	return token, nil
}

func required(username, password string) error {
	if len(username) == 0 {
		return MissingField{Name: "username"}
	}
	if len(password) == 0 {
		return MissingField{Name: "password"}
	}
	return nil
}
