// Package gate guards http handlers behind a bearer session token.
package gate

import (
	"context"
	"net/http"
	"regexp"

	"github.com/andrebq/keycard/internal/logutil"
	"github.com/andrebq/keycard/session"
)

type (
	Validator interface {
		Verify(token string) (*session.Claims, error)
	}

	Realm struct {
		tokens Validator
	}

	key byte
)

var (
	bearerTokenRE = regexp.MustCompile(`^Bearer ([^\s]+)$`)

	claimsKey = key(1)
)

func NewRealm(tokens Validator) *Realm {
	return &Realm{
		tokens: tokens,
	}
}

// Protect only calls sensitive for requests carrying a valid bearer token.
// Requests without a token get 401, requests whose token fails validation
// get 403 regardless of the reason.
func (s *Realm) Protect(sensitive http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logutil.GetOrDefault(ctx)
		tk, found := bearerToken(r)
		if !found {
			log.Debug().Msg("Bearer token not found")
			writeMessage(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		claims, err := s.tokens.Verify(tk)
		if err != nil {
			log.Warn().Err(err).Msg("Rejected session token")
			writeMessage(w, http.StatusForbidden, "Invalid or expired token")
			return
		}
		sensitive.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
	})
}

func WithClaims(ctx context.Context, claims *session.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFrom(ctx context.Context) (*session.Claims, bool) {
	v, ok := ctx.Value(claimsKey).(*session.Claims)
	return v, ok && v != nil
}

func bearerToken(r *http.Request) (string, bool) {
	groups := bearerTokenRE.FindStringSubmatch(r.Header.Get("Authorization"))
	if len(groups) == 0 {
		return "", false
	}
	return groups[1], true
}
