package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/pkg/apperr"
)

func testContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestPageFrom(t *testing.T) {
	cases := []struct {
		query string
		want  storage.Page
	}{
		{"", storage.Page{Page: 1, Limit: storage.DefaultLimit}},
		{"?page=3&limit=20", storage.Page{Page: 3, Limit: 20}},
		{"?page=0&limit=0", storage.Page{Page: 1, Limit: storage.DefaultLimit}},
		{"?page=-2&limit=1000", storage.Page{Page: 1, Limit: storage.MaxLimit}},
		{"?page=92233720368547760&limit=100", storage.Page{Page: storage.MaxPage, Limit: storage.MaxLimit}},
	}
	for _, tc := range cases {
		c, _ := testContext(http.MethodGet, "/x"+tc.query, "")
		p, err := pageFrom(c)
		require.NoError(t, err, tc.query)
		assert.Equal(t, tc.want, p, tc.query)
	}

	c, _ := testContext(http.MethodGet, "/x?limit=ten", "")
	_, err := pageFrom(c)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Equal(t, "limit must be an integer", apperr.From(err).Message)
}

func TestPageOf_NilItemsRenderAsEmptyArray(t *testing.T) {
	c, w := testContext(http.MethodGet, "/x", "")
	ok(c, pageOf[string](nil, 0, storage.Page{Page: 1, Limit: 10}))

	res := gjson.Parse(w.Body.String())
	assert.True(t, res.Get("data.items").IsArray())
	assert.EqualValues(t, 0, res.Get("data.total").Int())
}

type bindTarget struct {
	FullName string `json:"fullName" binding:"required"`
	Age      int    `json:"age" binding:"gte=0"`
	Kind     string `json:"kind" binding:"omitempty,oneof=a b"`
}

func TestBindJSON(t *testing.T) {
	c, w := testContext(http.MethodPost, "/x", `{"age":-1,"kind":"c"}`)
	var in bindTarget
	require.False(t, bindJSON(c, &in))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t,
		"fullName is required; age must be greater than or equal to 0; kind must be one of: a b",
		gjson.Get(w.Body.String(), "message").String())

	c, w = testContext(http.MethodPost, "/x", `{not json`)
	require.False(t, bindJSON(c, &in))
	assert.Equal(t, "invalid request body", gjson.Get(w.Body.String(), "message").String())

	c, _ = testContext(http.MethodPost, "/x", `{"fullName":"Jane","kind":"a"}`)
	require.True(t, bindJSON(c, &in))
	assert.Equal(t, "Jane", in.FullName)
}

func TestFail_HidesInternalCause(t *testing.T) {
	c, w := testContext(http.MethodGet, "/x", "")
	fail(c, apperr.Internal(assert.AnError))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	require.Len(t, c.Errors, 1)
}

func TestOperatorID_EmptyWithoutClaims(t *testing.T) {
	c, _ := testContext(http.MethodGet, "/x", "")
	assert.Equal(t, "", operatorID(c))
}
