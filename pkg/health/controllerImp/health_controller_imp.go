package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"garden/pkg/plot/service"
)

var appStart = time.Now()

type check struct {
	OK    bool   `json:"ok"`
	Err   string `json:"err,omitempty"`
	Count *int   `json:"count,omitempty"`
}

type HealthCtrl struct {
	db  *gorm.DB
	svc service.PlotService
}

// NewHealthCtrl takes the local database, nil when plots live behind the
// REST backend.
func NewHealthCtrl(db *gorm.DB, svc service.PlotService) *HealthCtrl {
	return &HealthCtrl{db: db, svc: svc}
}

func (h *HealthCtrl) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	checks := map[string]check{"store": h.store(ctx)}
	if h.db != nil {
		checks["database"] = h.database(ctx)
	}

	allOK := true
	for _, ch := range checks {
		allOK = allOK && ch.OK
	}
	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, map[string]any{
		"status":     map[string]any{"ok": allOK},
		"backend":    h.svc.Backend(),
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks":     checks,
		"time":       time.Now().Format(time.RFC3339),
	})
}

func (h *HealthCtrl) database(ctx context.Context) check {
	sqlDB, err := h.db.DB()
	if err != nil {
		return check{Err: "db.DB(): " + err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return check{Err: "ping: " + err.Error()}
	}
	return check{OK: true}
}

// store reads the crop catalog; its size doubles as a seeding check.
func (h *HealthCtrl) store(ctx context.Context) check {
	crops, err := h.svc.Catalog(ctx)
	if err != nil {
		return check{Err: "catalog: " + err.Error()}
	}
	n := len(crops)
	return check{OK: true, Count: &n}
}
