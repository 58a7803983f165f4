// Package middleware resolves the user id that keys planner sessions.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	UIDCookie = "GARDEN_UID"
	UIDHeader = "X-Garden-Uid"
	UIDKey    = "uid"

	DefaultUID = "U_DEV_DEFAULT"
)

// Identity stores the caller's user id under UIDKey. The id comes from the
// UIDHeader header, the UIDCookie cookie or the ?uid query, in that order;
// a query id is remembered in the cookie. With no id, fallback is used for
// the request without being remembered, and an empty fallback answers 401.
func Identity(fallback string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := c.Request().Header.Get(UIDHeader)
			if uid == "" {
				if ck, err := c.Cookie(UIDCookie); err == nil {
					uid = ck.Value
				}
			}
			if uid == "" {
				if uid = c.QueryParam("uid"); uid != "" {
					Remember(c, uid)
				}
			}
			if uid == "" {
				uid = fallback
			}
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing user id"})
			}
			c.Set(UIDKey, uid)
			return next(c)
		}
	}
}

// Remember sets the user id cookie.
func Remember(c echo.Context, uid string) {
	c.SetCookie(&http.Cookie{Name: UIDCookie, Value: uid, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// UID returns the id stored by Identity.
func UID(c echo.Context) string {
	uid, _ := c.Get(UIDKey).(string)
	return uid
}
