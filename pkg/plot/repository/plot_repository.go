package repository

import (
	"context"
	"errors"

	"garden/entities"
)

var ErrNotFound = errors.New("plot not found")

// ListOptions narrows a plot listing. Results are ordered by start_date in
// Order ("asc" unless "desc"), then row_no ascending.
type ListOptions struct {
	Area   string
	Status entities.PlotStatus
	Limit  int
	Order  string
}

func (o ListOptions) Descending() bool { return o.Order == "desc" }

// PlotRepository is the persistence contract for planting records and the
// crop catalog. Reads return plots with crop name, icon and svg joined in.
type PlotRepository interface {
	Name() string
	List(ctx context.Context, opts ListOptions) ([]entities.Plot, error)
	FindByID(ctx context.Context, id string) (*entities.Plot, error)
	Create(ctx context.Context, p entities.Plot) (*entities.Plot, error)
	Update(ctx context.Context, id string, patch entities.PlotPatch) (*entities.Plot, error)
	Delete(ctx context.Context, id string) error
	UpsertBatch(ctx context.Context, plots []entities.Plot) ([]entities.Plot, error)
	ListCatalog(ctx context.Context) ([]entities.Crop, error)
	UpsertCatalog(ctx context.Context, c Catalog) error
}

// Catalog is a set of catalog rows to insert or overwrite by id.
type Catalog struct {
	Groups []entities.CropGroup
	Icons  []entities.IconArt
	Crops  []entities.Crop
}

func (c Catalog) Empty() bool {
	return len(c.Groups) == 0 && len(c.Icons) == 0 && len(c.Crops) == 0
}
