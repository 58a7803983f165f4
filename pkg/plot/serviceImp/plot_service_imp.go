package serviceImp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"garden/entities"
	"garden/pkg/calendar"
	"garden/pkg/occupancy"
	"garden/pkg/plot/repository"
	"garden/pkg/plot/service"
)

type plotSvc struct {
	r     repository.PlotRepository
	field occupancy.Field
	l     *zap.Logger
}

func NewPlotService(r repository.PlotRepository, field occupancy.Field, l *zap.Logger) service.PlotService {
	if l == nil {
		l = zap.NewNop()
	}
	return &plotSvc{r: r, field: field, l: l.Named("plot")}
}

func (s *plotSvc) Backend() string { return s.r.Name() }

func (s *plotSvc) List(ctx context.Context, o repository.ListOptions) ([]entities.Plot, error) {
	if o.Status != "" && !o.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", service.ErrInvalid, o.Status)
	}
	return s.r.List(ctx, o)
}

func (s *plotSvc) Get(ctx context.Context, id string) (*entities.Plot, error) {
	return s.r.FindByID(ctx, id)
}

func (s *plotSvc) Create(ctx context.Context, p entities.Plot) (*entities.Plot, error) {
	s.defaults(&p)
	if err := s.validate(p); err != nil {
		return nil, err
	}
	out, err := s.r.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.l.Info("plot created", zap.String("id", out.ID), zap.String("area", out.Area), zap.Int("row", out.RowNo))
	return out, nil
}

// Update applies patch to the stored record. Concurrent writers are not
// detected; the last write wins.
func (s *plotSvc) Update(ctx context.Context, id string, patch entities.PlotPatch) (*entities.Plot, error) {
	cur, err := s.r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *cur
	patch.Apply(&next)
	if err := s.validate(next); err != nil {
		return nil, err
	}
	out, err := s.r.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.l.Info("plot updated", zap.String("id", id), zap.String("status", string(out.Status)))
	return out, nil
}

func (s *plotSvc) Delete(ctx context.Context, id string) error {
	if err := s.r.Delete(ctx, id); err != nil {
		return err
	}
	s.l.Info("plot deleted", zap.String("id", id))
	return nil
}

func (s *plotSvc) UpsertBatch(ctx context.Context, plots []entities.Plot) ([]entities.Plot, error) {
	rows := make([]entities.Plot, len(plots))
	for i, p := range plots {
		s.defaults(&p)
		if err := s.validate(p); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = p
	}
	out, err := s.r.UpsertBatch(ctx, rows)
	if err != nil {
		return nil, err
	}
	s.l.Info("plots upserted", zap.Int("count", len(out)))
	return out, nil
}

func (s *plotSvc) Catalog(ctx context.Context) ([]entities.Crop, error) {
	return s.r.ListCatalog(ctx)
}

func (s *plotSvc) SeedCatalog(ctx context.Context, c repository.Catalog) error {
	if err := s.r.UpsertCatalog(ctx, c); err != nil {
		return err
	}
	s.l.Info("catalog seeded", zap.Int("groups", len(c.Groups)), zap.Int("icons", len(c.Icons)), zap.Int("crops", len(c.Crops)))
	return nil
}

func (s *plotSvc) defaults(p *entities.Plot) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = entities.StatusGrowing
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.EndDate != nil && strings.TrimSpace(*p.EndDate) == "" {
		p.EndDate = nil
	}
}

func (s *plotSvc) validate(p entities.Plot) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", service.ErrInvalid, fmt.Sprintf(format, args...))
	}
	if err := s.field.CheckSlot(occupancy.Slot{Area: p.Area, Row: p.RowNo}); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalid, err)
	}
	if p.Name == "" {
		return invalid("name is required")
	}
	if _, err := calendar.ParseDate(p.StartDate); err != nil {
		return invalid("start_date %q is not YYYY-MM-DD", p.StartDate)
	}
	if p.EndDate != nil {
		if _, err := calendar.ParseDate(*p.EndDate); err != nil {
			return invalid("end_date %q is not YYYY-MM-DD", *p.EndDate)
		}
		if *p.EndDate < p.StartDate {
			return invalid("end_date %s is before start_date %s", *p.EndDate, p.StartDate)
		}
	}
	if !p.Status.Valid() {
		return invalid("unknown status %q", p.Status)
	}
	return nil
}
