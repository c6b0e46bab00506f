package dErrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CarriesCodeAndMessage(t *testing.T) {
	err := New(CodeNotFound, "employee not found")

	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.Equal(t, "employee not found", MessageOf(err))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("pq: connection refused")
	err := Wrap(cause, CodeInternal, "failed to resolve employee")

	require.True(t, HasCode(err, CodeInternal))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestErrorsIs_MatchesByCodeAndMessage(t *testing.T) {
	err := New(CodeUnauthorized, "invalid token")

	assert.ErrorIs(t, err, New(CodeUnauthorized, "invalid token"))
	assert.NotErrorIs(t, err, New(CodeUnauthorized, "token has expired"))
}

func TestCodeOf_DefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain error")))
	assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "city is required")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:         http.StatusBadRequest,
		CodeBadRequest:         http.StatusBadRequest,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusConflict,
		CodeUnavailable:        http.StatusServiceUnavailable,
		CodeInvariantViolation: http.StatusInternalServerError,
		CodeInternal:           http.StatusInternalServerError,
		Code("unknown"):        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
