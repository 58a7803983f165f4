package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func serve(fallback string, req *http.Request) (*httptest.ResponseRecorder, string) {
	e := echo.New()
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = UID(c)
		return c.NoContent(http.StatusOK)
	}, Identity(fallback))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestIdentitySources(t *testing.T) {
	withCookie := httptest.NewRequest(http.MethodGet, "/?uid=U_QUERY", nil)
	withCookie.AddCookie(&http.Cookie{Name: UIDCookie, Value: "U_COOKIE"})
	withHeader := httptest.NewRequest(http.MethodGet, "/", nil)
	withHeader.Header.Set(UIDHeader, "U_HEADER")
	withHeader.AddCookie(&http.Cookie{Name: UIDCookie, Value: "U_COOKIE"})

	cases := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"header wins", withHeader, "U_HEADER"},
		{"cookie over query", withCookie, "U_COOKIE"},
		{"query", httptest.NewRequest(http.MethodGet, "/?uid=U_QUERY", nil), "U_QUERY"},
		{"fallback", httptest.NewRequest(http.MethodGet, "/", nil), DefaultUID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, uid := serve(DefaultUID, tc.req)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want, uid)
		})
	}
}

func TestIdentityRemembersQuery(t *testing.T) {
	rec, _ := serve(DefaultUID, httptest.NewRequest(http.MethodGet, "/?uid=U_QUERY", nil))
	cookies := rec.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, UIDCookie, cookies[0].Name)
		assert.Equal(t, "U_QUERY", cookies[0].Value)
	}
}

func TestIdentityFallbackNotRemembered(t *testing.T) {
	rec, uid := serve(DefaultUID, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, DefaultUID, uid)
	assert.Empty(t, rec.Result().Cookies())
}

func TestIdentityStrict(t *testing.T) {
	rec, uid := serve("", httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, uid)
}
