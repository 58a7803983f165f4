package repositoryImp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"garden/entities"
	"garden/pkg/plot/repository"
)

const (
	plotSelect = "id,area,row_no,name,start_date,end_date,status,crop_id,crops(id,name,icon,group_id,icons(svg))"
	cropSelect = "id,name,icon,icon_id,group_id,group:group_id(id,name),icons(svg)"
)

// restRepo talks to a PostgREST (Supabase) endpoint.
type restRepo struct {
	base string
	key  string
	hc   *http.Client
}

// NewPostgREST builds a repository against baseURL (the project URL, without
// /rest/v1). A nil client gets a 15s timeout default.
func NewPostgREST(baseURL, key string, hc *http.Client) repository.PlotRepository {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &restRepo{base: strings.TrimRight(baseURL, "/") + "/rest/v1", key: key, hc: hc}
}

func (r *restRepo) Name() string { return "postgrest" }

type restIcon struct {
	SVG string `json:"svg"`
}

type restCrop struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Icon    *string             `json:"icon"`
	IconID  *string             `json:"icon_id"`
	GroupID *string             `json:"group_id"`
	Group   *entities.CropGroup `json:"group"`
	Icons   *restIcon           `json:"icons"`
}

func (c restCrop) entity() entities.Crop {
	out := entities.Crop{ID: c.ID, Name: c.Name, Icon: c.Icon, IconID: c.IconID, GroupID: c.GroupID, Group: c.Group}
	if c.Icons != nil && c.Icons.SVG != "" {
		svg := c.Icons.SVG
		out.SVG = &svg
	}
	return out
}

type restPlot struct {
	ID        string              `json:"id"`
	Area      string              `json:"area"`
	RowNo     int                 `json:"row_no"`
	Name      string              `json:"name"`
	StartDate string              `json:"start_date"`
	EndDate   *string             `json:"end_date"`
	Status    entities.PlotStatus `json:"status"`
	CropID    *string             `json:"crop_id"`
	Crops     *restCrop           `json:"crops"`
}

func (p restPlot) entity() entities.Plot {
	out := entities.Plot{
		ID: p.ID, Area: p.Area, RowNo: p.RowNo, Name: p.Name,
		StartDate: p.StartDate, EndDate: p.EndDate, Status: p.Status, CropID: p.CropID,
	}
	if c := p.Crops; c != nil {
		if c.Name != "" {
			out.Name = c.Name
		}
		if out.CropID == nil && c.ID != "" {
			id := c.ID
			out.CropID = &id
		}
		out.Icon = c.Icon
		if c.Icons != nil && c.Icons.SVG != "" {
			svg := c.Icons.SVG
			out.SVG = &svg
		}
	}
	return out
}

func plotEntities(rows []restPlot) []entities.Plot {
	out := make([]entities.Plot, len(rows))
	for i, row := range rows {
		out[i] = row.entity()
	}
	return out
}

// plotWrite is the column set sent on insert/upsert. Joined fields never go
// back to the server.
type plotWrite struct {
	ID        string              `json:"id"`
	Area      string              `json:"area"`
	RowNo     int                 `json:"row_no"`
	Name      string              `json:"name"`
	StartDate string              `json:"start_date"`
	EndDate   *string             `json:"end_date"`
	Status    entities.PlotStatus `json:"status"`
	CropID    *string             `json:"crop_id"`
}

func toWrite(p entities.Plot) plotWrite {
	return plotWrite{
		ID: p.ID, Area: p.Area, RowNo: p.RowNo, Name: p.Name,
		StartDate: p.StartDate, EndDate: p.EndDate, Status: p.Status, CropID: p.CropID,
	}
}

// patchBody renders a PlotPatch as a PATCH document; only the set fields are
// sent, and ClearEndDate sends an explicit null.
func patchBody(p entities.PlotPatch) map[string]any {
	m := map[string]any{}
	if p.Area != nil {
		m["area"] = *p.Area
	}
	if p.RowNo != nil {
		m["row_no"] = *p.RowNo
	}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.StartDate != nil {
		m["start_date"] = *p.StartDate
	}
	if p.ClearEndDate {
		m["end_date"] = nil
	} else if p.EndDate != nil {
		m["end_date"] = *p.EndDate
	}
	if p.Status != nil {
		m["status"] = *p.Status
	}
	if p.CropID != nil {
		if *p.CropID == "" {
			m["crop_id"] = nil
		} else {
			m["crop_id"] = *p.CropID
		}
	}
	return m
}

func (r *restRepo) List(ctx context.Context, o repository.ListOptions) ([]entities.Plot, error) {
	q := url.Values{}
	q.Set("select", plotSelect)
	if o.Area != "" {
		q.Set("area", "eq."+o.Area)
	}
	if o.Status != "" {
		q.Set("status", "eq."+string(o.Status))
	}
	dir := "asc"
	if o.Descending() {
		dir = "desc"
	}
	q.Set("order", "start_date."+dir+",row_no.asc")
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	var rows []restPlot
	if err := r.do(ctx, http.MethodGet, "/plots", q, nil, "", &rows); err != nil {
		return nil, err
	}
	return plotEntities(rows), nil
}

func (r *restRepo) FindByID(ctx context.Context, id string) (*entities.Plot, error) {
	q := url.Values{"select": {plotSelect}, "id": {"eq." + id}}
	var rows []restPlot
	if err := r.do(ctx, http.MethodGet, "/plots", q, nil, "", &rows); err != nil {
		return nil, err
	}
	return first(rows)
}

func (r *restRepo) Create(ctx context.Context, p entities.Plot) (*entities.Plot, error) {
	q := url.Values{"select": {plotSelect}}
	var rows []restPlot
	if err := r.do(ctx, http.MethodPost, "/plots", q, toWrite(p), "return=representation", &rows); err != nil {
		return nil, err
	}
	return first(rows)
}

func (r *restRepo) Update(ctx context.Context, id string, patch entities.PlotPatch) (*entities.Plot, error) {
	q := url.Values{"select": {plotSelect}, "id": {"eq." + id}}
	var rows []restPlot
	if err := r.do(ctx, http.MethodPatch, "/plots", q, patchBody(patch), "return=representation", &rows); err != nil {
		return nil, err
	}
	return first(rows)
}

func (r *restRepo) Delete(ctx context.Context, id string) error {
	q := url.Values{"id": {"eq." + id}, "select": {"id"}}
	var rows []restPlot
	if err := r.do(ctx, http.MethodDelete, "/plots", q, nil, "return=representation", &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *restRepo) UpsertBatch(ctx context.Context, plots []entities.Plot) ([]entities.Plot, error) {
	if len(plots) == 0 {
		return nil, nil
	}
	body := make([]plotWrite, len(plots))
	for i, p := range plots {
		body[i] = toWrite(p)
	}
	q := url.Values{"select": {plotSelect}}
	var rows []restPlot
	if err := r.do(ctx, http.MethodPost, "/plots", q, body, "resolution=merge-duplicates,return=representation", &rows); err != nil {
		return nil, err
	}
	return plotEntities(rows), nil
}

func (r *restRepo) ListCatalog(ctx context.Context) ([]entities.Crop, error) {
	q := url.Values{"select": {cropSelect}, "order": {"group_id.asc,name.asc"}}
	var rows []restCrop
	if err := r.do(ctx, http.MethodGet, "/crops", q, nil, "", &rows); err != nil {
		return nil, err
	}
	out := make([]entities.Crop, len(rows))
	for i, c := range rows {
		out[i] = c.entity()
	}
	return out, nil
}

func (r *restRepo) UpsertCatalog(ctx context.Context, c repository.Catalog) error {
	const prefer = "resolution=merge-duplicates,return=minimal"
	if len(c.Groups) > 0 {
		if err := r.do(ctx, http.MethodPost, "/crop_groups", nil, c.Groups, prefer, nil); err != nil {
			return err
		}
	}
	if len(c.Icons) > 0 {
		if err := r.do(ctx, http.MethodPost, "/icons", nil, c.Icons, prefer, nil); err != nil {
			return err
		}
	}
	if len(c.Crops) > 0 {
		type cropWrite struct {
			ID      string  `json:"id"`
			Name    string  `json:"name"`
			Icon    *string `json:"icon"`
			IconID  *string `json:"icon_id"`
			GroupID *string `json:"group_id"`
		}
		body := make([]cropWrite, len(c.Crops))
		for i, cr := range c.Crops {
			body[i] = cropWrite{ID: cr.ID, Name: cr.Name, Icon: cr.Icon, IconID: cr.IconID, GroupID: cr.GroupID}
		}
		if err := r.do(ctx, http.MethodPost, "/crops", nil, body, prefer, nil); err != nil {
			return err
		}
	}
	return nil
}

func first(rows []restPlot) (*entities.Plot, error) {
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	p := rows[0].entity()
	return &p, nil
}

func (r *restRepo) do(ctx context.Context, method, path string, q url.Values, body any, prefer string, out any) error {
	u := r.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", r.key)
	req.Header.Set("Authorization", "Bearer "+r.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := r.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s %s: db error %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
