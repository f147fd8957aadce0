package errorutil_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-ticket-service/pkg/util/errorutil"
)

func TestSentinelsMatchByCode(t *testing.T) {
	notFound := errorutil.NewNotFound("ticket", map[string]any{"id": "t-1"})
	expired := errorutil.NewDeadlineExpired("too late", nil)
	denied := errorutil.NewReopenUnauthorized("not yours")

	assert.ErrorIs(t, notFound, errorutil.ErrNotFound)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", expired), errorutil.ErrDeadlineExpired)
	assert.ErrorIs(t, denied, errorutil.ErrReopenUnauthorized)

	assert.NotErrorIs(t, expired, errorutil.ErrReopenUnauthorized)
	assert.NotErrorIs(t, denied, errorutil.ErrDeadlineExpired)
	assert.NotErrorIs(t, notFound, errorutil.ErrDeadlineExpired)
}

func TestConstructorsCarryStatus(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{errorutil.NewNotFound("requester", nil), errorutil.CodeNotFound, http.StatusNotFound},
		{errorutil.NewDeadlineExpired("x", nil), errorutil.CodeDeadlineExpired, http.StatusUnprocessableEntity},
		{errorutil.NewReopenUnauthorized("x"), errorutil.CodeReopenNotAllowed, http.StatusForbidden},
		{errorutil.NewValidationError("x", nil), errorutil.CodeValidation, http.StatusBadRequest},
		{errorutil.NewUnauthorized("x"), errorutil.CodeUnauthorized, http.StatusUnauthorized},
		{errorutil.NewForbidden("x"), errorutil.CodeForbidden, http.StatusForbidden},
		{errorutil.NewInternalError(errors.New("x")), errorutil.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			domainErr := errorutil.ToDomainError(tc.err)
			require.NotNil(t, domainErr)
			assert.Equal(t, tc.code, domainErr.Code)
			assert.Equal(t, tc.status, domainErr.HTTPStatus)
		})
	}
}

func TestNotFoundNamesResource(t *testing.T) {
	err := errorutil.NewNotFound("requester", map[string]any{"id": "u-9"})
	domainErr := errorutil.ToDomainError(err)
	assert.Equal(t, "requester not found", domainErr.Message)
	assert.Equal(t, "requester", domainErr.Details["resource"])
	assert.Equal(t, "u-9", domainErr.Details["id"])
}

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection refused")
	domainErr := errorutil.ToDomainError(fmt.Errorf("load ticket: %w", cause))
	assert.Equal(t, errorutil.CodeInternal, domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	assert.ErrorIs(t, domainErr, cause)

	assert.Nil(t, errorutil.ToDomainError(nil))
}
