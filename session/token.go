// Package session issues and verifies the signed tokens handed out after
// a successful login.
//
// Tokens are stateless JWTs signed with HS256. Nothing is kept on the
// server side, so a token stays valid until it expires and changing the
// secret invalidates every token issued before.
package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultTTL = time.Hour
)

var (
	ErrInvalid = errors.New("session: invalid token")
	ErrExpired = errors.New("session: token expired")

	errEmptySecret = errors.New("session: secret cannot be empty")
)

type (
	Claims struct {
		UserID   int64  `json:"id"`
		Username string `json:"username"`
		jwt.RegisteredClaims
	}

	Issuer struct {
		secret []byte
		ttl    time.Duration
		now    func() time.Time
	}

	Option func(*Issuer)
)

// WithClock replaces the wall clock used to stamp and check tokens.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

func NewIssuer(secret []byte, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	i := &Issuer{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) Issue(userID int64, username string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	return token.SignedString(i.secret)
}

// Verify checks signature and expiry of token. Expired tokens return
// ErrExpired, any other problem returns ErrInvalid.
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case err != nil:
		return nil, ErrInvalid
	case !parsed.Valid:
		return nil, ErrInvalid
	case claims.Username == "" || claims.Subject != strconv.FormatInt(claims.UserID, 10):
		return nil, ErrInvalid
	}
	return claims, nil
}

// Issue signs a token for the given user with the wall clock.
func Issue(userID int64, username string, secret []byte, ttl time.Duration) (string, error) {
	i, err := NewIssuer(secret, ttl)
	if err != nil {
		return "", err
	}
	return i.Issue(userID, username)
}

// Verify checks token against secret with the wall clock.
func Verify(token string, secret []byte) (*Claims, error) {
	i, err := NewIssuer(secret, DefaultTTL)
	if err != nil {
		return nil, err
	}
	return i.Verify(token)
}
