package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/apierr"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(expose bool, err error) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(ExposeErrors(expose))
	r.GET("/", func(c *gin.Context) { WriteError(c, err) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apierr.ErrorDTO {
	t.Helper()
	var body apierr.ErrorDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWriteErrorMapsStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apierr.ErrInvalid("bad"), http.StatusBadRequest},
		{apierr.ErrUnauthenticated("who"), http.StatusUnauthorized},
		{apierr.ErrNotFound("gone"), http.StatusNotFound},
		{apierr.ErrConflict("out of stock"), http.StatusConflict},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, serve(false, tc.err).Code, tc.err.Error())
	}
}

func TestWriteErrorHidesInternalDetailInRelease(t *testing.T) {
	err := apierr.Internal("issue book failed", errors.New("dial tcp 10.0.0.5:3306: refused"))

	hidden := decode(t, serve(false, err))
	assert.Equal(t, apierr.CodeInternal, hidden.Error.Code)
	assert.Equal(t, "internal error", hidden.Error.Message)

	shown := decode(t, serve(true, err))
	assert.Contains(t, shown.Error.Message, "10.0.0.5")
}

func TestParseID(t *testing.T) {
	r := gin.New()
	var got int64
	var gotErr error
	r.GET("/x/:id", func(c *gin.Context) { got, gotErr = ParseID(c, "id") })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x/42", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, int64(42), got)

	for _, bad := range []string{"0", "-3", "abc"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x/"+bad, nil))
		assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(gotErr), bad)
	}
}
