// Package authapi exposes registration, login and the protected dashboard
// over HTTP with JSON bodies.
package authapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/andrebq/keycard/credentials"
	"github.com/andrebq/keycard/gate"
	"github.com/andrebq/keycard/internal/logutil"
	"github.com/andrebq/keycard/userstore"
	"github.com/julienschmidt/httprouter"
)

type (
	Config struct {
		Credentials *credentials.Verifier
		Realm       *gate.Realm
	}

	credentialsRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	registerResponse struct {
		Message string `json:"message"`
		UserID  int64  `json:"userId"`
	}

	loginResponse struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
)

var (
	errMissingCredentials = errors.New("authapi: credentials verifier is required")
	errMissingRealm       = errors.New("authapi: security realm is required")
)

func AsHandler(ctx context.Context, cfg Config) (http.Handler, error) {
	if cfg.Credentials == nil {
		return nil, errMissingCredentials
	}
	if cfg.Realm == nil {
		return nil, errMissingRealm
	}
	router := httprouter.New()
	router.HandlerFunc("POST", "/register", register(cfg.Credentials))
	router.HandlerFunc("POST", "/login", login(cfg.Credentials))
	router.Handler("GET", "/api/dashboard", cfg.Realm.Protect(dashboard()))
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Interface("panic", v).Msg("Handler panic")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
	return router, nil
}

func register(v *credentials.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req credentialsRequest
		if err := readJSON(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		id, err := v.Register(ctx, req.Username, req.Password)
		var missing credentials.MissingField
		var taken userstore.UsernameTaken
		var tooLong credentials.PasswordTooLong
		switch {
		case errors.As(err, &missing):
			writeMessage(w, http.StatusBadRequest, "Username and password are required")
		case errors.As(err, &taken):
			writeMessage(w, http.StatusConflict, "Username already exists")
		case errors.As(err, &tooLong):
			writeMessage(w, http.StatusBadRequest, tooLong.Error())
		case err != nil:
			internalError(w, r, err)
		default:
			writeJSON(w, http.StatusCreated, registerResponse{
				Message: "User registered successfully",
				UserID:  id,
			})
		}
	}
}

func login(v *credentials.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := readJSON(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		token, err := v.Login(r.Context(), req.Username, req.Password)
		var notFound userstore.UserNotFound
		var invalid credentials.InvalidPassword
		switch {
		case errors.As(err, &notFound):
			writeMessage(w, http.StatusNotFound, "User not found")
		case errors.As(err, &invalid):
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		case err != nil:
			internalError(w, r, err)
		default:
			writeJSON(w, http.StatusOK, loginResponse{
				Message: "Login successful",
				Token:   token,
			})
		}
	}
}

func dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := gate.ClaimsFrom(r.Context())
		if !ok {
			// only reachable if the route is mounted without the realm
			writeMessage(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		writeMessage(w, http.StatusOK, fmt.Sprintf("Welcome to your dashboard, %v!", claims.Username))
	}
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.GetOrDefault(r.Context())
	log.Error().Err(err).Str("http.path", r.URL.Path).Msg("Unable to handle request")
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}
