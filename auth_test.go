package jiraquery

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthApply(t *testing.T) {
	t.Parallel()

	t.Run("anonymous sends no Authorization header", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "https://issues.example.com", nil)
		Anonymous().apply(req)
		assert.Empty(t, req.Header.Get("Authorization"))
	})

	t.Run("zero value is anonymous", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "https://issues.example.com", nil)
		var auth Auth
		auth.apply(req)
		assert.Empty(t, req.Header.Get("Authorization"))
	})

	t.Run("api key becomes a Bearer header", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "https://issues.example.com", nil)
		APIKey("my-token").apply(req)
		assert.Equal(t, "Bearer my-token", req.Header.Get("Authorization"))
	})

	t.Run("basic auth sets user and password", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "https://issues.example.com", nil)
		BasicAuth("tester@example.com", "api-token").apply(req)

		user, password, ok := req.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "tester@example.com", user)
		assert.Equal(t, "api-token", password)
	})
}

func TestAuthFrom(t *testing.T) {
	t.Run("api key from environment", func(t *testing.T) {
		t.Setenv("JIRAQUERY_TEST_TOKEN", "tok-from-env")

		auth, err := APIKeyFrom("env:JIRAQUERY_TEST_TOKEN")
		require.NoError(t, err)
		assert.Equal(t, APIKey("tok-from-env"), auth)
	})

	t.Run("api key from file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("tok-from-file"), 0o600))

		auth, err := APIKeyFrom("file:" + path)
		require.NoError(t, err)
		assert.Equal(t, APIKey("tok-from-file"), auth)
	})

	t.Run("plain value passes through", func(t *testing.T) {
		t.Parallel()
		auth, err := APIKeyFrom("plain-token")
		require.NoError(t, err)
		assert.Equal(t, APIKey("plain-token"), auth)
	})

	t.Run("missing environment variable fails", func(t *testing.T) {
		t.Parallel()
		_, err := APIKeyFrom("env:JIRAQUERY_TEST_DOES_NOT_EXIST")
		require.Error(t, err)
	})

	t.Run("basic password from environment", func(t *testing.T) {
		t.Setenv("JIRAQUERY_TEST_PASSWORD", "hunter2hunter2")

		auth, err := BasicAuthFrom("tester@example.com", "env:JIRAQUERY_TEST_PASSWORD")
		require.NoError(t, err)
		assert.Equal(t, BasicAuth("tester@example.com", "hunter2hunter2"), auth)
	})
}

func TestAuthString(t *testing.T) {
	t.Parallel()

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "anonymous", Anonymous().String())
	})

	t.Run("bearer keeps only the edges of the token", func(t *testing.T) {
		t.Parallel()
		got := APIKey("supersecrettoken").String()
		assert.Equal(t, "Bearer su************en", got)
		assert.NotContains(t, got, "secret")
	})

	t.Run("short secrets mask entirely", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Bearer ****", APIKey("abcd").String())
	})

	t.Run("basic masks the password, not the user", func(t *testing.T) {
		t.Parallel()
		got := BasicAuth("tester@example.com", "api-token").String()
		assert.Equal(t, "Basic tester@example.com:ap*****en", got)
	})
}
