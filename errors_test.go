package jiraquery

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	t.Parallel()

	t.Run("decodes the jira error envelope", func(t *testing.T) {
		t.Parallel()
		body := []byte(`{"errorMessages":["Issue Does Not Exist"],"errors":{}}`)
		apiErr := newAPIError(http.StatusNotFound, body)

		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, []string{"Issue Does Not Exist"}, apiErr.ErrorMessages)
		assert.Empty(t, apiErr.Body)
		assert.Equal(t, "jira: HTTP 404: Issue Does Not Exist", apiErr.Error())
	})

	t.Run("renders field errors in stable order", func(t *testing.T) {
		t.Parallel()
		body := []byte(`{"errors":{"priority":"Priority is required.","assignee":"User does not exist."}}`)
		apiErr := newAPIError(http.StatusBadRequest, body)

		assert.Equal(t,
			"jira: HTTP 400: assignee: User does not exist.; priority: Priority is required.",
			apiErr.Error(),
		)
	})

	t.Run("keeps an excerpt of non-envelope bodies", func(t *testing.T) {
		t.Parallel()
		apiErr := newAPIError(http.StatusBadGateway, []byte("<html>proxy broke</html>"))
		assert.Equal(t, "<html>proxy broke</html>", apiErr.Body)
		assert.Contains(t, apiErr.Error(), "proxy broke")
	})

	t.Run("truncates huge bodies", func(t *testing.T) {
		t.Parallel()
		apiErr := newAPIError(http.StatusInternalServerError, []byte(strings.Repeat("x", 4096)))
		assert.Len(t, apiErr.Body, maxErrorBody+len("…(truncated)"))
		assert.Contains(t, apiErr.Body, "…(truncated)")
	})

	t.Run("empty body still names the status", func(t *testing.T) {
		t.Parallel()
		apiErr := newAPIError(http.StatusServiceUnavailable, nil)
		assert.Equal(t, "jira: HTTP 503", apiErr.Error())
	})

	t.Run("401 and 403 match ErrAuthenticationFailed", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, newAPIError(http.StatusUnauthorized, nil), ErrAuthenticationFailed)
		assert.ErrorIs(t, newAPIError(http.StatusForbidden, nil), ErrAuthenticationFailed)
		assert.NotErrorIs(t, newAPIError(http.StatusUnauthorized, nil), ErrNotFound)
	})

	t.Run("404 matches ErrNotFound", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, newAPIError(http.StatusNotFound, nil), ErrNotFound)
		assert.NotErrorIs(t, newAPIError(http.StatusNotFound, nil), ErrAuthenticationFailed)
	})

	t.Run("500 matches no sentinel", func(t *testing.T) {
		t.Parallel()
		apiErr := newAPIError(http.StatusInternalServerError, nil)
		assert.NotErrorIs(t, apiErr, ErrAuthenticationFailed)
		assert.NotErrorIs(t, apiErr, ErrNotFound)

		var target *APIError
		require.ErrorAs(t, error(apiErr), &target)
		assert.Equal(t, http.StatusInternalServerError, target.StatusCode)
	})
}

func TestSentinelWrapping(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset by peer")
	err := fmt.Errorf("%w: %w", ErrTransport, cause)

	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "transport failure")
}
