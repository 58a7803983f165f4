package controllerImp

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"garden/pkg/advisor"
)

var validate = validator.New()

type AdvisorCtrl struct{ c advisor.Client }

func New(c advisor.Client) *AdvisorCtrl { return &AdvisorCtrl{c: c} }

func (h *AdvisorCtrl) Register(e *echo.Echo) {
	e.POST("/advisor/plan", h.Plan)
}

// Plan answers 200 with a schedule, or 502 with {error} when the model
// failed to produce one.
func (h *AdvisorCtrl) Plan(c echo.Context) error {
	var req advisor.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	res := h.c.PlanCrop(c.Request().Context(), req)
	if res.Failed() {
		return c.JSON(http.StatusBadGateway, res)
	}
	return c.JSON(http.StatusOK, res)
}
