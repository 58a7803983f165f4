package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garden/config"
	"garden/database"
	"garden/logging"
	"garden/pkg/occupancy"
	"garden/router"

	"garden/pkg/advisor"
	advisorCtrlImp "garden/pkg/advisor/controllerImp"
	authCtrlImp "garden/pkg/auth/controllerImp"
	"garden/pkg/catalog/seed"
	healthCtrlImp "garden/pkg/health/controllerImp"
	plotCtrlImp "garden/pkg/plot/controllerImp"
	plotRepoImp "garden/pkg/plot/repositoryImp"
	plotSvcImp "garden/pkg/plot/serviceImp"
	"garden/pkg/session"
	sessionCtrlImp "garden/pkg/session/controllerImp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "garden:", err)
		os.Exit(1)
	}
}

func run() error {
	// 1) Config + logger
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	l, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	defer l.Sync()
	l.Info("config loaded", zap.Any("config", cfg.Redacted()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2) Store: local sqlite or the hosted REST backend
	var db *gorm.DB
	if cfg.StoreBackend == config.BackendSQLite {
		if db, err = database.OpenSQLite(cfg.DBPath, l); err != nil {
			return err
		}
	}
	repo, err := plotRepoImp.FromConfig(cfg, db)
	if err != nil {
		return err
	}
	field := occupancy.NewField(cfg.Areas, cfg.RowsPerArea)
	plots := plotSvcImp.NewPlotService(repo, field, l)

	// 3) Catalog seed
	if cfg.CatalogSeed != "" {
		cat, err := seed.Load(cfg.CatalogSeed)
		if err != nil {
			return fmt.Errorf("catalog seed: %w", err)
		}
		if err := plots.SeedCatalog(ctx, cat); err != nil {
			return fmt.Errorf("catalog seed: %w", err)
		}
	}

	// 4) Advisory model (mock fallback)
	adv, err := advisor.FromConfig(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer adv.Close()
	l.Info("advisor ready", zap.String("client", adv.Name()))

	// 5) Sessions
	sessions := session.NewManager(plots, session.Options{
		Field:       field,
		DefaultArea: cfg.DefaultArea,
		Locale:      cfg.Locale,
		Location:    cfg.Location(),
		IdleTimeout: cfg.SessionIdle,
		Logger:      l,
	})

	// 6) Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(logging.Echo(l))
	router.New(e, router.Controllers{
		Health:  healthCtrlImp.NewHealthCtrl(db, plots),
		Auth:    authCtrlImp.New(sessions),
		Plots:   plotCtrlImp.New(plots, field, cfg.Locale, cfg.Location()),
		Advisor: advisorCtrlImp.New(adv),
		Session: sessionCtrlImp.New(sessions),
	}, cfg.DevUser)

	// 7) Start
	errc := make(chan error, 1)
	go func() {
		l.Info("listening", zap.String("port", cfg.Port), zap.String("backend", plots.Backend()))
		errc <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	l.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
