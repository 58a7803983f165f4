package service

import (
	"context"
	"errors"

	"garden/entities"
	"garden/pkg/plot/repository"
)

// ErrInvalid marks a plot rejected before it reaches the store.
var ErrInvalid = errors.New("invalid plot")

type PlotService interface {
	Backend() string
	List(ctx context.Context, opts repository.ListOptions) ([]entities.Plot, error)
	Get(ctx context.Context, id string) (*entities.Plot, error)
	Create(ctx context.Context, p entities.Plot) (*entities.Plot, error)
	Update(ctx context.Context, id string, patch entities.PlotPatch) (*entities.Plot, error)
	Delete(ctx context.Context, id string) error
	UpsertBatch(ctx context.Context, plots []entities.Plot) ([]entities.Plot, error)
	Catalog(ctx context.Context) ([]entities.Crop, error)
	SeedCatalog(ctx context.Context, c repository.Catalog) error
}
