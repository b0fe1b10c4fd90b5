package api

import (
	"encoding/json"
	"net/http"

	"github.com/campusdeals/api/internal/database"
	"github.com/campusdeals/api/internal/query"
	"github.com/campusdeals/api/internal/types"
)

var categoryPolicy = query.Policy{
	DefaultSortBy: "name",
	SortFields:    []string{"name", "created_at"},
	SearchFields:  []string{"name"},
}

type CategoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func toCategory(c database.Category) types.Category {
	return types.Category{
		Id:        c.Id,
		Name:      c.Name,
		Slug:      c.Slug,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (a *App) listCategories(w http.ResponseWriter, r *http.Request) {
	p, err := query.Parse(r.URL.Query(), categoryPolicy)
	if err != nil {
		a.writeError(w, fromAppError(err))
		return
	}

	filter := query.ParseSlugFilter(r.URL.Query())

	categories, total, err := a.db.ListCategories(p, filter)
	if err != nil {
		a.writeError(w, NewInternalServerError(err))
		return
	}

	data := make([]types.Category, 0, len(categories))
	for _, c := range categories {
		data = append(data, toCategory(c))
	}

	a.writeJson(w, http.StatusOK, query.Page[types.Category]{
		Meta: query.NewMeta(p, total, filter),
		Data: data,
	})
}

func (a *App) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	category, err := a.db.GetCategoryById(id)
	if err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	a.writeJson(w, http.StatusOK, toCategory(category))
}

func (a *App) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	if req.Name == "" || req.Slug == "" {
		a.writeError(w, NewBadRequestError())
		return
	}

	category, err := a.db.CreateCategory(database.CreateCategoryParams{
		Name: req.Name,
		Slug: req.Slug,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			a.writeError(w, NewConflictError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	a.writeJson(w, http.StatusCreated, toCategory(category))
}

func (a *App) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	if req.Name == "" || req.Slug == "" {
		a.writeError(w, NewBadRequestError())
		return
	}

	category, err := a.db.UpdateCategory(database.UpdateCategoryParams{
		CategoryId: id,
		Name:       req.Name,
		Slug:       req.Slug,
	})
	if err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	a.writeJson(w, http.StatusOK, toCategory(category))
}

func (a *App) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	if err := a.db.DeleteCategory(id); err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
