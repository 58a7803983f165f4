package controllerImp

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"garden/pkg/calendar"
	"garden/pkg/editor"
	"garden/pkg/middleware"
	"garden/pkg/occupancy"
	"garden/pkg/session"
)

var validate = validator.New()

type SessionCtrl struct{ m *session.Manager }

func New(m *session.Manager) *SessionCtrl { return &SessionCtrl{m: m} }

func (h *SessionCtrl) Register(g *echo.Group) {
	g.GET("", h.Get)
	g.POST("/reload", h.Reload)

	g.POST("/calendar/select", h.SelectDate)
	g.POST("/calendar/step", h.Step)
	g.POST("/calendar/today", h.Today)
	g.POST("/calendar/toggle", h.Toggle)

	g.POST("/area", h.SetArea)
	g.GET("/field", h.Field)

	g.GET("/editor", h.Editor)
	g.POST("/editor/plots/:id", h.OpenPlot)
	g.POST("/editor/slots", h.OpenSlot)
	g.POST("/editor/crop", h.ChooseCrop)
	g.POST("/editor/group", h.SetGroup)
	g.PATCH("/editor", h.Edit)
	g.POST("/editor/save", h.Save)
	g.DELETE("/editor", h.Cancel)
}

func (h *SessionCtrl) session(c echo.Context) *session.Session {
	return h.m.Get(c.Request().Context(), middleware.UID(c))
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return errors.New("invalid json")
	}
	return validate.Struct(v)
}

// fail maps session and editor errors onto HTTP statuses.
func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case editor.IsValidation(err),
		errors.Is(err, editor.ErrUnknownField),
		errors.Is(err, occupancy.ErrSlotOutOfRange),
		errors.Is(err, session.ErrUnknownArea):
		status = http.StatusBadRequest
	case errors.Is(err, editor.ErrUnknownPlot),
		errors.Is(err, editor.ErrUnknownCrop),
		errors.Is(err, editor.ErrUnknownGroup):
		status = http.StatusNotFound
	case errors.Is(err, editor.ErrNotOpen),
		errors.Is(err, editor.ErrAlreadyOpen),
		errors.Is(err, editor.ErrFieldLocked):
		status = http.StatusConflict
	case errors.Is(err, session.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case editor.IsPersistence(err):
		status = http.StatusBadGateway
	}
	body := echo.Map{"error": err.Error()}
	var verr *editor.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
	}
	return c.JSON(status, body)
}

func (h *SessionCtrl) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session(c).View())
}

func (h *SessionCtrl) Reload(c echo.Context) error {
	s := h.session(c)
	if err := s.Reload(c.Request().Context()); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s.View())
}

type selectReq struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (h *SessionCtrl) SelectDate(c echo.Context) error {
	var req selectReq
	if err := bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	d, err := calendar.ParseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	s := h.session(c)
	s.SelectDate(d)
	return c.JSON(http.StatusOK, s.View())
}

type stepReq struct {
	Amount int `json:"amount" validate:"gte=-1200,lte=1200"`
}

func (h *SessionCtrl) Step(c echo.Context) error {
	req := stepReq{Amount: 1}
	if err := bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	s := h.session(c)
	s.StepPeriod(req.Amount)
	return c.JSON(http.StatusOK, s.View())
}

func (h *SessionCtrl) Today(c echo.Context) error {
	s := h.session(c)
	s.GoToToday()
	return c.JSON(http.StatusOK, s.View())
}

func (h *SessionCtrl) Toggle(c echo.Context) error {
	s := h.session(c)
	s.ToggleViewMode()
	return c.JSON(http.StatusOK, s.View())
}

type areaReq struct {
	Area string `json:"area" validate:"required"`
}

func (h *SessionCtrl) SetArea(c echo.Context) error {
	var req areaReq
	if err := bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	s := h.session(c)
	if err := s.SetArea(req.Area); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s.View())
}

func (h *SessionCtrl) Field(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session(c).Field())
}

func (h *SessionCtrl) Editor(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session(c).Editor())
}

func (h *SessionCtrl) OpenPlot(c echo.Context) error {
	s := h.session(c)
	if err := s.OpenPlot(c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s.Editor())
}

type slotReq struct {
	Area string `json:"area" validate:"required"`
	Row  int    `json:"row" validate:"required"`
}

func (h *SessionCtrl) OpenSlot(c echo.Context) error {
	var req slotReq
	if err := bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	s := h.session(c)
	if err := s.OpenSlot(occupancy.Slot{Area: req.Area, Row: req.Row}); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s.Editor())
}

type cropReq struct {
	CropID string `json:"crop_id" validate:"required"`
}

func (h *SessionCtrl) ChooseCrop(c echo.Context) error {
	var req cropReq
	if err := bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	s := h.session(c)
	if err := s.ChooseCrop(req.CropID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s.Editor())
}

type groupReq struct {
	GroupID string `json:"group_id" validate:"required"`
}

func (h *SessionCtrl) SetGroup(c echo.Context) error {
	var req groupReq
	if err := bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	s := h.session(c)
	if err := s.SetActiveGroup(req.GroupID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s.Editor())
}

// editReq sets any of the editable draft fields. An empty end_date reopens
// the record.
type editReq struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Status    *string `json:"status"`
}

func (h *SessionCtrl) Edit(c echo.Context) error {
	var req editReq
	if err := bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var changes []editor.Change
	add := func(f editor.Field, v *string) {
		if v != nil {
			changes = append(changes, editor.Change{Field: f, Value: *v})
		}
	}
	add(editor.FieldStartDate, req.StartDate)
	add(editor.FieldEndDate, req.EndDate)
	add(editor.FieldStatus, req.Status)
	s := h.session(c)
	if err := s.EditAll(changes); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s.Editor())
}

func (h *SessionCtrl) Save(c echo.Context) error {
	s := h.session(c)
	if err := s.Save(c.Request().Context()); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s.View())
}

func (h *SessionCtrl) Cancel(c echo.Context) error {
	s := h.session(c)
	s.Cancel()
	return c.JSON(http.StatusOK, s.Editor())
}
