package controllerImp

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"garden/entities"
	"garden/pkg/calendar"
	"garden/pkg/catalog"
	"garden/pkg/export"
	"garden/pkg/occupancy"
	"garden/pkg/plot/repository"
	"garden/pkg/plot/service"
)

var validate = validator.New()

type PlotCtrl struct {
	svc    service.PlotService
	field  occupancy.Field
	locale string
	loc    *time.Location
	now    func() time.Time
}

func New(svc service.PlotService, field occupancy.Field, locale string, loc *time.Location) *PlotCtrl {
	if loc == nil {
		loc = time.UTC
	}
	return &PlotCtrl{svc: svc, field: field, locale: locale, loc: loc, now: time.Now}
}

func (h *PlotCtrl) Register(e *echo.Echo) {
	e.GET("/plots", h.List)
	e.GET("/plots/export.xlsx", h.Export)
	e.GET("/plots/:id", h.Get)
	e.POST("/plots", h.Create)
	e.POST("/plots/batch", h.Batch)
	e.PATCH("/plots/:id", h.Patch)
	e.DELETE("/plots/:id", h.Delete)

	e.GET("/crops", h.Crops)
	e.GET("/crop-groups", h.Groups)
	e.GET("/crop-groups/:id/crops", h.GroupCrops)

	e.GET("/occupancy", h.Occupancy)
}

func storeErr(c echo.Context, err error) error {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalid):
		status = http.StatusBadRequest
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

type listQuery struct {
	Area   string `query:"area"`
	Status string `query:"status" validate:"omitempty,oneof=growing harvested discarded"`
	Limit  int    `query:"limit" validate:"gte=0,lte=1000"`
	Order  string `query:"order" validate:"omitempty,oneof=asc desc"`
}

func (q listQuery) options() repository.ListOptions {
	return repository.ListOptions{
		Area:   q.Area,
		Status: entities.PlotStatus(q.Status),
		Limit:  q.Limit,
		Order:  q.Order,
	}
}

func (h *PlotCtrl) bindList(c echo.Context) (repository.ListOptions, error) {
	var q listQuery
	if err := c.Bind(&q); err != nil {
		return repository.ListOptions{}, errors.New("invalid query")
	}
	if err := validate.Struct(q); err != nil {
		return repository.ListOptions{}, err
	}
	return q.options(), nil
}

func (h *PlotCtrl) List(c echo.Context) error {
	opts, err := h.bindList(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	out, err := h.svc.List(c.Request().Context(), opts)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PlotCtrl) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PlotCtrl) Create(c echo.Context) error {
	var p entities.Plot
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	out, err := h.svc.Create(c.Request().Context(), p)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *PlotCtrl) Batch(c echo.Context) error {
	var plots []entities.Plot
	if err := (&echo.DefaultBinder{}).BindBody(c, &plots); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	if len(plots) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "empty batch"})
	}
	out, err := h.svc.UpsertBatch(c.Request().Context(), plots)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PlotCtrl) Patch(c echo.Context) error {
	var patch entities.PlotPatch
	if err := (&echo.DefaultBinder{}).BindBody(c, &patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	out, err := h.svc.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PlotCtrl) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return storeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PlotCtrl) Export(c echo.Context) error {
	opts, err := h.bindList(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	plots, err := h.svc.List(c.Request().Context(), opts)
	if err != nil {
		return storeErr(c, err)
	}
	var buf bytes.Buffer
	if err := export.PlotsXLSX(&buf, plots); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="plots.xlsx"`)
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *PlotCtrl) Crops(c echo.Context) error {
	crops, err := h.svc.Catalog(c.Request().Context())
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, crops)
}

func (h *PlotCtrl) Groups(c echo.Context) error {
	crops, err := h.svc.Catalog(c.Request().Context())
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, catalog.Groups(crops))
}

func (h *PlotCtrl) GroupCrops(c echo.Context) error {
	crops, err := h.svc.Catalog(c.Request().Context())
	if err != nil {
		return storeErr(c, err)
	}
	gid := c.Param("id")
	if !catalog.HasGroup(crops, gid) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "crop group not found"})
	}
	return c.JSON(http.StatusOK, catalog.CropsInGroup(crops, gid, h.locale))
}

type occupancyResp struct {
	Date  string               `json:"date"`
	Areas []occupancy.AreaView `json:"areas"`
}

// Occupancy classifies the field for ?date (default today). ?area limits
// the answer to one area.
func (h *PlotCtrl) Occupancy(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		date = calendar.FormatDate(calendar.Today(h.now(), h.loc))
	} else if _, err := calendar.ParseDate(date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	area := c.QueryParam("area")
	if area != "" && !h.field.HasArea(area) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "area not found"})
	}

	plots, err := h.svc.List(c.Request().Context(), repository.ListOptions{Area: area})
	if err != nil {
		return storeErr(c, err)
	}
	areas := occupancy.Layout(h.field, occupancy.Compute(entities.Views(plots), date), area)
	if area != "" {
		kept := areas[:0]
		for _, a := range areas {
			if a.Active {
				kept = append(kept, a)
			}
		}
		areas = kept
	}
	return c.JSON(http.StatusOK, occupancyResp{Date: date, Areas: areas})
}
