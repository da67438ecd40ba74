package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

const testTokenSecret = "0123456789abcdef0123456789abcdef"

type testProducer struct {
	published []common.BindingKey
}

func (p *testProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	p.published = append(p.published, key)
	return nil
}

func newTestApplication(t *testing.T) *application {
	t.Helper()

	db := common.TestDB("file://../migrations", t)

	tm, err := userservice.NewTokenManager([]byte(testTokenSecret), 1*time.Hour)
	assert.NoError(t, err)

	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	producer := &testProducer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	userService := userservice.NewUserService(db, tm, producer, cache)

	return &application{
		config: &Config{
			Port:        "4000",
			Environment: "test",
			Version:     "test",
		},
		logger:      logger,
		userService: userService,
		blogService: blogservice.NewBlogService(db, userService, producer, cache, logger),
	}
}

// newBareTestApplication builds an application with no backing services for
// tests that never reach a handler needing them.
func newBareTestApplication() *application {
	return &application{
		config: &Config{
			Environment: "test",
			Version:     "test",
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	t.Helper()

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	return &testServer{ts}
}

// do issues a request against the test server and returns the status code and
// raw body. A non-empty token goes out as a bearer Authorization header.
func (ts *testServer) do(t *testing.T, method, urlPath, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, ts.URL+urlPath, reader)
	assert.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	assert.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	assert.NoError(t, err)

	return res.StatusCode, raw
}

// registerAndLogin creates an account through the API and returns a usable
// bearer token for it.
func registerAndLogin(t *testing.T, ts *testServer, username, password string) string {
	t.Helper()

	status, _ := ts.do(t, http.MethodPost, "/api/users", "", envelope{
		"username": username,
		"name":     "Test User",
		"password": password,
	})
	assert.Equal(t, http.StatusCreated, status)

	status, body := ts.do(t, http.MethodPost, "/api/login", "", envelope{
		"username": username,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, status)

	var login struct {
		Token string `json:"token"`
	}
	err := json.Unmarshal(body, &login)
	assert.NoError(t, err)
	assert.NotEmpty(t, login.Token)

	return login.Token
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()

	var e struct {
		Error string `json:"error"`
	}
	err := json.Unmarshal(body, &e)
	assert.NoError(t, err)

	return e.Error
}
