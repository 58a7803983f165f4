package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"garden/pkg/middleware"
)

type route struct{ method, path string }

func (r route) Register(e *echo.Echo) {
	e.Add(r.method, r.path, func(c echo.Context) error {
		return c.String(http.StatusOK, middleware.UID(c))
	})
}

type groupRoute struct{}

func (groupRoute) Register(g *echo.Group) {
	g.GET("", func(c echo.Context) error { return c.String(http.StatusOK, middleware.UID(c)) })
}

func newTestRouter(devUser string) *echo.Echo {
	return New(echo.New(), Controllers{
		Health:  route{http.MethodGet, "/health"},
		Auth:    route{http.MethodGet, "/whoami"},
		Plots:   route{http.MethodGet, "/plots"},
		Advisor: route{http.MethodPost, "/advisor/plan"},
		Session: groupRoute{},
	}, devUser)
}

func TestRoutesCarryIdentity(t *testing.T) {
	e := newTestRouter("U_DEV")
	for _, r := range []route{{http.MethodGet, "/whoami"}, {http.MethodGet, "/plots"}, {http.MethodPost, "/advisor/plan"}, {http.MethodGet, "/session"}} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(r.method, r.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, r.path)
		assert.Equal(t, "U_DEV", rec.Body.String(), r.path)
	}
}

func TestHealthSkipsIdentity(t *testing.T) {
	e := newTestRouter("")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plots", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
