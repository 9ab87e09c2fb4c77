package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_PARAMETER", "bad keyword")

	assert.Equal(t, "bad keyword", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Nil(t, err.Details)

	withDetails := NewWithDetails(http.StatusNotFound, "NOT_FOUND", "missing", map[string]string{"id": "x"})
	assert.Equal(t, map[string]string{"id": "x"}, withDetails.Details)
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"invalid request", InvalidRequestWithError(fmt.Errorf("boom")), http.StatusBadRequest, "INVALID_REQUEST"},
		{"validation", ErrValidation("start", "is required"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"not found", NotFoundError("category"), http.StatusNotFound, "NOT_FOUND"},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{"simple validation", NewValidationError("nope"), http.StatusBadRequest, "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
		})
	}

	assert.Equal(t, "category not found", NotFoundError("category").Message)
}

type queryFixture struct {
	Start  string `validate:"omitempty,datetime=2006-01-02"`
	Format string `validate:"omitempty,oneof=csv xlsx"`
}

func TestFromValidator(t *testing.T) {
	t.Run("field errors", func(t *testing.T) {
		err := validator.New().Struct(queryFixture{Start: "2024/01/01", Format: "pdf"})
		require.Error(t, err)

		apiErr := FromValidator(err)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

		details, ok := apiErr.Details.(ValidationErrors)
		require.True(t, ok)
		assert.Equal(t, []ValidationError{
			{Field: "start", Message: "must be a date formatted as 2006-01-02"},
			{Field: "format", Message: "must be one of: csv xlsx"},
		}, details.Errors)
	})

	t.Run("other errors", func(t *testing.T) {
		apiErr := FromValidator(fmt.Errorf("decode failed"))
		assert.Equal(t, "INVALID_REQUEST", apiErr.ErrorCode)
		assert.Equal(t, "decode failed", apiErr.Details)
	})
}

func TestProblemDetailsJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/api/data/x").
		WithExtension("trace_id", "req-1")

	raw, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, TypeNotFound, body["type"])
	assert.Equal(t, float64(http.StatusNotFound), body["status"])
	assert.Equal(t, "/api/data/x", body["instance"])
	assert.Equal(t, "req-1", body["trace_id"])
	assert.NotContains(t, body, "detail")
}

func TestProblemDetailsExtensionsCannotOverrideMembers(t *testing.T) {
	problem := (&ProblemDetails{Type: TypeInternal, Status: 500}).WithExtension("status", "ok")

	raw, err := json.Marshal(problem)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status":500`)
}
