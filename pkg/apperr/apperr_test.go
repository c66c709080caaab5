package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAlreadyIn = BadRequest("member is already checked in")

func TestIs_MatchesWrappedSentinel(t *testing.T) {
	err := fmt.Errorf("check in: %w", errAlreadyIn)
	require.ErrorIs(t, err, errAlreadyIn)
	require.ErrorIs(t, errAlreadyIn.Wrap(errors.New("dup")), errAlreadyIn)
	require.NotErrorIs(t, err, BadRequest("member has no active membership"))
	require.NotErrorIs(t, err, NotFound("member is already checked in"))
}

func TestFrom(t *testing.T) {
	require.Nil(t, From(nil))

	e := From(fmt.Errorf("ctx: %w", NotFound("plan not found")))
	assert.Equal(t, KindNotFound, e.Kind)
	assert.Equal(t, "plan not found", e.Message)

	cause := errors.New("connection reset")
	e = From(cause)
	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, "internal server error", e.Message)
	assert.ErrorIs(t, e, cause)
}

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindBadRequest:   http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindInternal:     http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, k.HTTPStatus(), k.String())
	}
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "email already registered", Conflict("email already registered").Error())
	assert.Equal(t, "internal server error: boom", Internal(errors.New("boom")).Error())
}
