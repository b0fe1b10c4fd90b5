package api

import (
	"encoding/json"
	"net/http"

	"github.com/campusdeals/api/internal/database"
	"github.com/campusdeals/api/internal/query"
	"github.com/campusdeals/api/internal/types"
)

var campusPolicy = query.Policy{
	DefaultSortBy: "name",
	SortFields:    []string{"name", "created_at"},
	SearchFields:  []string{"name"},
}

type CampusRequest struct {
	Name string   `json:"name"`
	Slug string   `json:"slug"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

func toCampus(c database.Campus) types.Campus {
	campus := types.Campus{
		Id:        c.Id,
		Name:      c.Name,
		Slug:      c.Slug,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Lat.Valid {
		lat := c.Lat.Float64
		campus.Lat = &lat
	}
	if c.Lon.Valid {
		lon := c.Lon.Float64
		campus.Lon = &lon
	}

	return campus
}

func (a *App) listCampuses(w http.ResponseWriter, r *http.Request) {
	p, err := query.Parse(r.URL.Query(), campusPolicy)
	if err != nil {
		a.writeError(w, fromAppError(err))
		return
	}

	filter := query.ParseSlugFilter(r.URL.Query())

	campuses, total, err := a.db.ListCampuses(p, filter)
	if err != nil {
		a.writeError(w, NewInternalServerError(err))
		return
	}

	data := make([]types.Campus, 0, len(campuses))
	for _, c := range campuses {
		data = append(data, toCampus(c))
	}

	a.writeJson(w, http.StatusOK, query.Page[types.Campus]{
		Meta: query.NewMeta(p, total, filter),
		Data: data,
	})
}

func (a *App) getCampus(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	campus, err := a.db.GetCampusById(id)
	if err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	a.writeJson(w, http.StatusOK, toCampus(campus))
}

func (a *App) createCampus(w http.ResponseWriter, r *http.Request) {
	var req CampusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	if req.Name == "" || req.Slug == "" {
		a.writeError(w, NewBadRequestError())
		return
	}

	campus, err := a.db.CreateCampus(database.CreateCampusParams{
		Name: req.Name,
		Slug: req.Slug,
		Lat:  req.Lat,
		Lon:  req.Lon,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			a.writeError(w, NewConflictError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	a.writeJson(w, http.StatusCreated, toCampus(campus))
}

func (a *App) updateCampus(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	var req CampusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	if req.Name == "" || req.Slug == "" {
		a.writeError(w, NewBadRequestError())
		return
	}

	campus, err := a.db.UpdateCampus(database.UpdateCampusParams{
		CampusId: id,
		Name:     req.Name,
		Slug:     req.Slug,
		Lat:      req.Lat,
		Lon:      req.Lon,
	})
	if err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	a.writeJson(w, http.StatusOK, toCampus(campus))
}

func (a *App) deleteCampus(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	if err := a.db.DeleteCampus(id); err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
