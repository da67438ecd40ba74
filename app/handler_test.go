package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterUserHandler(t *testing.T) {
	app := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	t.Run("Valid Registration", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/users", "", envelope{
			"username": "newuser",
			"name":     "New User",
			"password": "Password123",
		})
		assert.Equal(t, http.StatusCreated, status)

		var got map[string]any
		err := json.Unmarshal(body, &got)
		assert.NoError(t, err)
		assert.Equal(t, "newuser", got["username"])
		assert.Equal(t, "New User", got["name"])
		assert.NotZero(t, got["id"])
		assert.Equal(t, []any{}, got["blogs"])
		assert.NotContains(t, got, "password")
	})

	t.Run("Duplicate Username", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/users", "", envelope{
			"username": "newuser",
			"name":     "Impostor",
			"password": "Password123",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.JSONEq(t, envelope{"error": "expected `username` to be unique"}.JSON(), string(body))
	})

	t.Run("Invalid Payload", func(t *testing.T) {
		status, _ := ts.do(t, http.MethodPost, "/api/users", "", envelope{
			"username": "ab",
			"password": "weak",
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Malformed Body", func(t *testing.T) {
		status, _ := ts.do(t, http.MethodPost, "/api/users", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestLoginUserHandler(t *testing.T) {
	app := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	registerAndLogin(t, ts, "testuser", "Password123")

	t.Run("Wrong Password", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/login", "", envelope{
			"username": "testuser",
			"password": "WrongPassword1",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "invalid username or password", errorMessage(t, body))
	})

	t.Run("Unknown Username", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/login", "", envelope{
			"username": "nosuchuser",
			"password": "Password123",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "invalid username or password", errorMessage(t, body))
	})

	t.Run("Valid Login", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/login", "", envelope{
			"username": "testuser",
			"password": "Password123",
		})
		assert.Equal(t, http.StatusOK, status)

		var got map[string]any
		err := json.Unmarshal(body, &got)
		assert.NoError(t, err)
		assert.NotEmpty(t, got["token"])
		assert.Equal(t, "testuser", got["username"])
		assert.Equal(t, "Test User", got["name"])
	})
}

func TestCreateBlogHandler(t *testing.T) {
	app := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := registerAndLogin(t, ts, "testuser", "Password123")

	listLen := func(t *testing.T) int {
		status, body := ts.do(t, http.MethodGet, "/api/blogs", "", nil)
		assert.Equal(t, http.StatusOK, status)

		var blogs []map[string]any
		err := json.Unmarshal(body, &blogs)
		assert.NoError(t, err)

		return len(blogs)
	}

	t.Run("Valid Blog", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/blogs", token, envelope{
			"title":  "Test Blog",
			"author": "Test Author",
			"url":    "https://example.com",
			"likes":  3,
		})
		assert.Equal(t, http.StatusCreated, status)

		var got map[string]any
		err := json.Unmarshal(body, &got)
		assert.NoError(t, err)
		assert.Equal(t, "Test Blog", got["title"])
		assert.Equal(t, float64(3), got["likes"])

		user, ok := got["user"].(map[string]any)
		assert.True(t, ok, "expected an owner projection, got %v", got["user"])
		assert.Equal(t, "testuser", user["username"])
	})

	t.Run("Likes Defaults To Zero", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/blogs", token, envelope{
			"title": "No Likes Yet",
			"url":   "https://example.com",
		})
		assert.Equal(t, http.StatusCreated, status)

		var got map[string]any
		err := json.Unmarshal(body, &got)
		assert.NoError(t, err)
		assert.Equal(t, float64(0), got["likes"])
	})

	t.Run("Missing Required Fields", func(t *testing.T) {
		testCases := []struct {
			name    string
			payload envelope
		}{
			{name: "No Title", payload: envelope{"url": "https://example.com"}},
			{name: "No URL", payload: envelope{"title": "Test Blog"}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				before := listLen(t)

				status, _ := ts.do(t, http.MethodPost, "/api/blogs", token, tc.payload)
				assert.Equal(t, http.StatusBadRequest, status)
				assert.Equal(t, before, listLen(t))
			})
		}
	})

	t.Run("No Token", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/blogs", "", envelope{
			"title": "Test Blog",
			"url":   "https://example.com",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "token invalid", errorMessage(t, body))
	})

	t.Run("Invalid Token", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/blogs", "not.a.token", envelope{
			"title": "Test Blog",
			"url":   "https://example.com",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "token invalid", errorMessage(t, body))
	})
}

func TestGetAllBlogsHandler(t *testing.T) {
	app := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := registerAndLogin(t, ts, "testuser", "Password123")

	status, _ := ts.do(t, http.MethodPost, "/api/blogs", token, envelope{
		"title": "Test Blog",
		"url":   "https://example.com",
	})
	assert.Equal(t, http.StatusCreated, status)

	status, body := ts.do(t, http.MethodGet, "/api/blogs", "", nil)
	assert.Equal(t, http.StatusOK, status)

	var blogs []map[string]any
	err := json.Unmarshal(body, &blogs)
	assert.NoError(t, err)
	assert.Len(t, blogs, 1)

	got := blogs[0]
	assert.Equal(t, "Test Blog", got["title"])
	assert.NotContains(t, got, "user_id")

	user, ok := got["user"].(map[string]any)
	assert.True(t, ok, "expected an owner projection, got %v", got["user"])
	assert.Equal(t, "testuser", user["username"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "blogs")
}

func TestUpdateBlogHandler(t *testing.T) {
	app := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := registerAndLogin(t, ts, "testuser", "Password123")

	status, body := ts.do(t, http.MethodPost, "/api/blogs", token, envelope{
		"title": "Test Blog",
		"url":   "https://example.com",
		"likes": 5,
	})
	assert.Equal(t, http.StatusCreated, status)

	var created map[string]any
	err := json.Unmarshal(body, &created)
	assert.NoError(t, err)
	blogPath := fmt.Sprintf("/api/blogs/%v", created["id"])

	t.Run("Update Likes Without Token", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPut, blogPath, "", envelope{"likes": 6})
		assert.Equal(t, http.StatusOK, status)

		var got map[string]any
		err := json.Unmarshal(body, &got)
		assert.NoError(t, err)
		assert.Equal(t, float64(6), got["likes"])
		assert.Equal(t, "Test Blog", got["title"])
	})

	t.Run("Unknown ID", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPut, "/api/blogs/999999", "", envelope{"likes": 1})
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "resource not found", errorMessage(t, body))
	})

	t.Run("Malformed ID", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPut, "/api/blogs/5a422a851b54a676234d17f7", "", envelope{"likes": 1})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "malformed id", errorMessage(t, body))
	})
}

func TestDeleteBlogHandler(t *testing.T) {
	app := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	ownerToken := registerAndLogin(t, ts, "owner", "Password123")
	otherToken := registerAndLogin(t, ts, "intruder", "Password123")

	createBlog := func(t *testing.T) string {
		status, body := ts.do(t, http.MethodPost, "/api/blogs", ownerToken, envelope{
			"title": "Test Blog",
			"url":   "https://example.com",
		})
		assert.Equal(t, http.StatusCreated, status)

		var created map[string]any
		err := json.Unmarshal(body, &created)
		assert.NoError(t, err)

		return fmt.Sprintf("/api/blogs/%v", created["id"])
	}

	t.Run("Owner Deletes", func(t *testing.T) {
		path := createBlog(t)

		status, body := ts.do(t, http.MethodDelete, path, ownerToken, nil)
		assert.Equal(t, http.StatusNoContent, status)
		assert.Empty(t, body)

		// the owner's blog list no longer references the deleted id
		status, body = ts.do(t, http.MethodGet, "/api/users", "", nil)
		assert.Equal(t, http.StatusOK, status)

		var users []map[string]any
		err := json.Unmarshal(body, &users)
		assert.NoError(t, err)
		for _, u := range users {
			if u["username"] == "owner" {
				assert.Equal(t, []any{}, u["blogs"])
			}
		}
	})

	t.Run("Non Owner Forbidden", func(t *testing.T) {
		path := createBlog(t)

		status, body := ts.do(t, http.MethodDelete, path, otherToken, nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "user not authorized to delete this blog", errorMessage(t, body))
	})

	t.Run("Unknown ID Without Token", func(t *testing.T) {
		status, body := ts.do(t, http.MethodDelete, "/api/blogs/999999", "", nil)
		assert.Equal(t, http.StatusNoContent, status)
		assert.Empty(t, body)
	})

	t.Run("Malformed ID", func(t *testing.T) {
		status, body := ts.do(t, http.MethodDelete, "/api/blogs/not-an-id", ownerToken, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "malformed id", errorMessage(t, body))
	})

	t.Run("No Token For Existing Blog", func(t *testing.T) {
		path := createBlog(t)

		status, body := ts.do(t, http.MethodDelete, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "token invalid", errorMessage(t, body))
	})
}

func TestGetUsersHandler(t *testing.T) {
	app := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := registerAndLogin(t, ts, "testuser", "Password123")

	status, body := ts.do(t, http.MethodPost, "/api/blogs", token, envelope{
		"title": "Test Blog",
		"url":   "https://example.com",
	})
	assert.Equal(t, http.StatusCreated, status)

	var created map[string]any
	err := json.Unmarshal(body, &created)
	assert.NoError(t, err)

	status, body = ts.do(t, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusOK, status)

	var users []map[string]any
	err = json.Unmarshal(body, &users)
	assert.NoError(t, err)
	assert.Len(t, users, 1)

	got := users[0]
	assert.Equal(t, "testuser", got["username"])
	assert.Equal(t, []any{created["id"]}, got["blogs"])
	assert.NotContains(t, got, "password")
}

func TestBlogStatsHandler(t *testing.T) {
	app := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := registerAndLogin(t, ts, "testuser", "Password123")

	for _, blog := range []envelope{
		{"title": "React patterns", "url": "https://reactpatterns.com/", "likes": 7},
		{"title": "Canonical string reduction", "url": "https://example.com/ewd808", "likes": 12},
	} {
		status, _ := ts.do(t, http.MethodPost, "/api/blogs", token, blog)
		assert.Equal(t, http.StatusCreated, status)
	}

	status, body := ts.do(t, http.MethodGet, "/api/blogs/stats", "", nil)
	assert.Equal(t, http.StatusOK, status)

	var stats map[string]any
	err := json.Unmarshal(body, &stats)
	assert.NoError(t, err)
	assert.Equal(t, float64(2), stats["count"])
	assert.Equal(t, float64(19), stats["totalLikes"])

	favorite, ok := stats["favorite"].(map[string]any)
	assert.True(t, ok, "expected a favorite blog, got %v", stats["favorite"])
	assert.Equal(t, "Canonical string reduction", favorite["title"])
}

func TestUnknownEndpoint(t *testing.T) {
	ts := newTestServer(t, newBareTestApplication().routes())

	testCases := []struct {
		name   string
		method string
		path   string
	}{
		{name: "Unknown Path", method: http.MethodGet, path: "/api/nosuchthing"},
		{name: "Unmatched Method", method: http.MethodPatch, path: "/api/blogs"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := ts.do(t, tc.method, tc.path, "", nil)
			assert.Equal(t, http.StatusNotFound, status)
			assert.JSONEq(t, envelope{"error": "unknown endpoint"}.JSON(), string(body))
		})
	}
}

func TestHealthCheckHandler(t *testing.T) {
	ts := newTestServer(t, newBareTestApplication().routes())

	status, body := ts.do(t, http.MethodGet, "/api/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, status)

	var got map[string]any
	err := json.Unmarshal(body, &got)
	assert.NoError(t, err)
	assert.Equal(t, "available", got["status"])
}
