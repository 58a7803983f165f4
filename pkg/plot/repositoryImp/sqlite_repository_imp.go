package repositoryImp

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"garden/entities"
	"garden/pkg/plot/repository"
)

var plotColumns = []string{"area", "row_no", "name", "start_date", "end_date", "status", "crop_id", "updated_at"}

type sqliteRepo struct{ db *gorm.DB }

func NewSQLite(db *gorm.DB) repository.PlotRepository { return &sqliteRepo{db: db} }

func (r *sqliteRepo) Name() string { return "sqlite" }

func (r *sqliteRepo) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&entities.Plot{}).Preload("Crop.Group").Preload("Crop.Art")
}

func (r *sqliteRepo) List(ctx context.Context, o repository.ListOptions) ([]entities.Plot, error) {
	q := r.joined(ctx)
	if o.Area != "" {
		q = q.Where("area = ?", o.Area)
	}
	if o.Status != "" {
		q = q.Where("status = ?", o.Status)
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: "start_date"}, Desc: o.Descending()}).Order("row_no asc")
	if o.Limit > 0 {
		q = q.Limit(o.Limit)
	}
	var out []entities.Plot
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	for i := range out {
		flatten(&out[i])
	}
	return out, nil
}

func (r *sqliteRepo) FindByID(ctx context.Context, id string) (*entities.Plot, error) {
	var p entities.Plot
	if err := r.joined(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	flatten(&p)
	return &p, nil
}

func (r *sqliteRepo) Create(ctx context.Context, p entities.Plot) (*entities.Plot, error) {
	p.Crop, p.Icon, p.SVG = nil, nil, nil
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&p).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, p.ID)
}

func (r *sqliteRepo) Update(ctx context.Context, id string, patch entities.PlotPatch) (*entities.Plot, error) {
	var cur entities.Plot
	if err := r.db.WithContext(ctx).First(&cur, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	patch.Apply(&cur)
	cur.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Model(&entities.Plot{ID: id}).Select(plotColumns).Updates(&cur).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *sqliteRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&entities.Plot{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *sqliteRepo) UpsertBatch(ctx context.Context, plots []entities.Plot) ([]entities.Plot, error) {
	if len(plots) == 0 {
		return nil, nil
	}
	rows := make([]entities.Plot, len(plots))
	ids := make([]string, len(plots))
	for i, p := range plots {
		p.Crop, p.Icon, p.SVG = nil, nil, nil
		rows[i] = p
		ids[i] = p.ID
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(plotColumns),
	}).Create(&rows).Error
	if err != nil {
		return nil, err
	}

	var out []entities.Plot
	if err := r.joined(ctx).Where("id IN ?", ids).Order("start_date asc").Order("row_no asc").Find(&out).Error; err != nil {
		return nil, err
	}
	for i := range out {
		flatten(&out[i])
	}
	return out, nil
}

func (r *sqliteRepo) ListCatalog(ctx context.Context) ([]entities.Crop, error) {
	var out []entities.Crop
	err := r.db.WithContext(ctx).Preload("Group").Preload("Art").
		Order("group_id asc").Order("name asc").Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i := range out {
		if a := out[i].Art; a != nil && a.SVG != "" {
			svg := a.SVG
			out[i].SVG = &svg
		}
	}
	return out, nil
}

func (r *sqliteRepo) UpsertCatalog(ctx context.Context, c repository.Catalog) error {
	if c.Empty() {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		overwrite := clause.OnConflict{UpdateAll: true}
		if len(c.Groups) > 0 {
			if err := tx.Clauses(overwrite).Create(&c.Groups).Error; err != nil {
				return err
			}
		}
		if len(c.Icons) > 0 {
			if err := tx.Clauses(overwrite).Create(&c.Icons).Error; err != nil {
				return err
			}
		}
		if len(c.Crops) > 0 {
			crops := make([]entities.Crop, len(c.Crops))
			for i, cr := range c.Crops {
				cr.Group, cr.Art, cr.SVG = nil, nil, nil
				crops[i] = cr
			}
			if err := tx.Omit(clause.Associations).Clauses(overwrite).Create(&crops).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// flatten copies the joined crop fields onto the plot. The crop name wins
// over the stored name.
func flatten(p *entities.Plot) {
	c := p.Crop
	if c == nil {
		return
	}
	if c.Name != "" {
		p.Name = c.Name
	}
	p.Icon = c.Icon
	if c.Art != nil && c.Art.SVG != "" {
		svg := c.Art.SVG
		p.SVG = &svg
	}
}
