package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"garden/pkg/middleware"
)

// Sessions is the part of the session manager a login switch touches.
type Sessions interface {
	Drop(uid string)
}

type AuthCtrl struct{ sessions Sessions }

func New(sessions Sessions) *AuthCtrl { return &AuthCtrl{sessions: sessions} }

func (h *AuthCtrl) Register(e *echo.Echo) {
	e.GET("/whoami", h.WhoAmI)
	e.GET("/devlogin", h.DevLogin)
}

// DevLogin switches the caller to ?uid and forgets the previous user's
// planner session.
func (h *AuthCtrl) DevLogin(c echo.Context) error {
	uid := c.QueryParam("uid")
	if uid == "" {
		uid = middleware.DefaultUID
	}
	if prev := middleware.UID(c); prev != "" && prev != uid {
		h.sessions.Drop(prev)
	}
	middleware.Remember(c, uid)
	return c.JSON(http.StatusOK, echo.Map{"uid": uid})
}

func (h *AuthCtrl) WhoAmI(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"uid": middleware.UID(c)})
}
