package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/gymdesk/pkg/apperr"
)

func TestFromError(t *testing.T) {
	status, body := FromError(fmt.Errorf("check out: %w", apperr.BadRequest("member is already checked out")))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, APIResponseCodeBadRequest, body.Code)
	require.Equal(t, "member is already checked out", body.Message)

	status, body = FromError(errors.New("pq: connection refused"))
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, APIResponseCodeError, body.Code)
	require.Equal(t, "internal server error", body.Message)
}

func TestErrorMsg_DefaultText(t *testing.T) {
	require.Equal(t, "not found", ErrorMsg(APIResponseCodeNotFound, "").Message)
	require.Equal(t, "ok", OKT(1).Message)
}
