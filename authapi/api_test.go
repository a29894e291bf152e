package authapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andrebq/keycard/credentials"
	"github.com/andrebq/keycard/gate"
	"github.com/andrebq/keycard/internal/testutil"
	"github.com/andrebq/keycard/session"
	"github.com/andrebq/keycard/userstore"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	handler http.Handler
	issuer  *session.Issuer
	store   *userstore.Store
	clock   *time.Time
}

func acquireServer(ctx context.Context, t *testing.T) (*testServer, func()) {
	store, cleanup := testutil.AcquireStore(ctx, t, "api")
	now := time.Now()
	ts := &testServer{clock: &now, store: store}
	issuer, err := session.NewIssuer([]byte("api-secret"), time.Hour, session.WithClock(func() time.Time { return *ts.clock }))
	if err != nil {
		cleanup()
		t.Fatal(err)
	}
	ts.issuer = issuer
	ts.handler, err = AsHandler(ctx, Config{
		Credentials: credentials.New(store, issuer, credentials.WithCost(bcrypt.MinCost)),
		Realm:       gate.NewRealm(issuer),
	})
	if err != nil {
		cleanup()
		t.Fatal(err)
	}
	return ts, cleanup
}

func (ts *testServer) register(t *testing.T, username, password string) {
	apitest.New().
		Handler(ts.handler).
		Post("/register").
		JSON(fmt.Sprintf(`{"username": %q, "password": %q}`, username, password)).
		Expect(t).
		Status(http.StatusCreated).
		End()
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", strings.NewReader(fmt.Sprintf(`{"username": %q, "password": %q}`, username, password)))
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body loginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	ts, cleanup := acquireServer(ctx, t)
	defer cleanup()

	apitest.New().
		Handler(ts.handler).
		Post("/register").
		JSON(`{"username": "bob", "password": "bob-password"}`).
		Expect(t).
		Status(http.StatusCreated).
		Header("Content-Type", "application/json; charset=utf-8").
		Assert(jsonpath.Equal("$.message", "User registered successfully")).
		Assert(jsonpath.Equal("$.userId", float64(1))).
		End()

	apitest.New().
		Handler(ts.handler).
		Post("/register").
		JSON(`{"username": "bob", "password": "another-password"}`).
		Expect(t).
		Status(http.StatusConflict).
		Body(`{"message":"Username already exists"}`).
		End()

	for _, body := range []string{
		`{"username": "bob"}`,
		`{"password": "secret"}`,
		`{"username": "", "password": ""}`,
		`{}`,
	} {
		apitest.New().
			Handler(ts.handler).
			Post("/register").
			JSON(body).
			Expect(t).
			Status(http.StatusBadRequest).
			Body(`{"message":"Username and password are required"}`).
			End()
	}

	apitest.New().
		Handler(ts.handler).
		Post("/register").
		Body(`{"username": `).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"message":"Invalid request body"}`).
		End()

	apitest.New().
		Handler(ts.handler).
		Post("/register").
		JSON(fmt.Sprintf(`{"username": "long", "password": %q}`, strings.Repeat("x", 100))).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	ts, cleanup := acquireServer(ctx, t)
	defer cleanup()
	ts.register(t, "bob", "bob-password")

	apitest.New().
		Handler(ts.handler).
		Post("/login").
		JSON(`{"username": "bob", "password": "bob-password"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.message", "Login successful")).
		Assert(jsonpath.Present("$.token")).
		End()

	apitest.New().
		Handler(ts.handler).
		Post("/login").
		JSON(`{"username": "bob", "password": "wrong"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(`{"message":"Invalid credentials"}`).
		End()

	apitest.New().
		Handler(ts.handler).
		Post("/login").
		JSON(`{"username": "alice", "password": "bob-password"}`).
		Expect(t).
		Status(http.StatusNotFound).
		Body(`{"message":"User not found"}`).
		End()

	apitest.New().
		Handler(ts.handler).
		Post("/login").
		Body(`not json`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	ts, cleanup := acquireServer(ctx, t)
	defer cleanup()
	ts.register(t, "bob", "bob-password")
	token := ts.login(t, "bob", "bob-password")

	apitest.New().
		Handler(ts.handler).
		Get("/api/dashboard").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	apitest.New().
		Handler(ts.handler).
		Get("/api/dashboard").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.message", "Welcome to your dashboard, bob!")).
		End()

	tampered := token[:len(token)-2] + flip(token[len(token)-2:])
	apitest.New().
		Handler(ts.handler).
		Get("/api/dashboard").
		Header("Authorization", "Bearer "+tampered).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	*ts.clock = ts.clock.Add(time.Hour + time.Minute)
	apitest.New().
		Handler(ts.handler).
		Get("/api/dashboard").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusForbidden).
		End()
}

func TestUnknownRoutes(t *testing.T) {
	ctx := context.Background()
	ts, cleanup := acquireServer(ctx, t)
	defer cleanup()

	apitest.New().Handler(ts.handler).Get("/logout").Expect(t).Status(http.StatusNotFound).End()
	apitest.New().Handler(ts.handler).Get("/login").Expect(t).Status(http.StatusMethodNotAllowed).End()
}

func TestConcurrentRegistration(t *testing.T) {
	ctx := context.Background()
	ts, cleanup := acquireServer(ctx, t)
	defer cleanup()

	const attempts = 8
	codes := make(chan int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			body := fmt.Sprintf(`{"username": "racer", "password": "password-%v"}`, i)
			ts.handler.ServeHTTP(rec, httptest.NewRequest("POST", "/register", strings.NewReader(body)))
			codes <- rec.Code
		}(i)
	}
	wg.Wait()
	close(codes)
	count := map[int]int{}
	for c := range codes {
		count[c]++
	}
	require.Equal(t, map[int]int{http.StatusCreated: 1, http.StatusConflict: attempts - 1}, count)
}

func TestStoreFailure(t *testing.T) {
	ctx := context.Background()
	ts, cleanup := acquireServer(ctx, t)
	defer cleanup()
	ts.register(t, "bob", "bob-password")
	require.NoError(t, ts.store.Close())

	apitest.New().
		Handler(ts.handler).
		Post("/register").
		JSON(`{"username": "alice", "password": "alice-password"}`).
		Expect(t).
		Status(http.StatusInternalServerError).
		Body(`{"message":"Internal server error"}`).
		End()

	apitest.New().
		Handler(ts.handler).
		Post("/login").
		JSON(`{"username": "bob", "password": "bob-password"}`).
		Expect(t).
		Status(http.StatusInternalServerError).
		Body(`{"message":"Internal server error"}`).
		End()
}

func TestAsHandlerRequiresDependencies(t *testing.T) {
	_, err := AsHandler(context.Background(), Config{})
	require.Error(t, err)
}

// flip changes the last characters of a token so the signature no longer matches
func flip(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c == 'A' {
			out[i] = 'B'
		} else {
			out[i] = 'A'
		}
	}
	return string(out)
}
