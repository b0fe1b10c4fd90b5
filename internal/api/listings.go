package api

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/campusdeals/api/internal/database"
	"github.com/campusdeals/api/internal/query"
	"github.com/campusdeals/api/internal/types"
)

var listingPolicy = query.Policy{
	DefaultSortBy: "created_at",
	SortFields:    []string{"created_at", "price", "title"},
	SearchFields:  []string{"title", "description"},
}

type ListingRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Condition   string  `json:"condition"`
	Price       float64 `json:"price"`
	ImageUrl    string  `json:"image_url"`
	CategoryId  *int    `json:"category_id"`
	CampusId    *int    `json:"campus_id"`
	IsAvailable *bool   `json:"is_available"`
}

func (req *ListingRequest) validate() *ApiError {
	if req.Title == "" || req.Price < 0 {
		return NewBadRequestError()
	}
	if !slices.Contains(query.ListingConditions, req.Condition) {
		return NewBadRequestError()
	}

	return nil
}

func toListing(l database.Listing) types.Listing {
	listing := types.Listing{
		Id:          l.Id,
		ExternalId:  l.ExternalId,
		Title:       l.Title,
		Description: l.Description,
		Condition:   l.Condition,
		Price:       l.Price,
		UserId:      l.UserId,
		IsAvailable: l.IsAvailable,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.ImageUrl.Valid {
		listing.ImageUrl = l.ImageUrl.String
	}
	if l.CategoryId.Valid {
		categoryId := int(l.CategoryId.Int64)
		listing.CategoryId = &categoryId
	}
	if l.CampusId.Valid {
		campusId := int(l.CampusId.Int64)
		listing.CampusId = &campusId
	}

	return listing
}

func (a *App) listListings(w http.ResponseWriter, r *http.Request) {
	p, err := query.Parse(r.URL.Query(), listingPolicy)
	if err != nil {
		a.writeError(w, fromAppError(err))
		return
	}

	filter, err := query.ParseListingFilter(r.URL.Query())
	if err != nil {
		a.writeError(w, fromAppError(err))
		return
	}

	listings, total, err := a.db.ListListings(p, filter)
	if err != nil {
		a.writeError(w, NewInternalServerError(err))
		return
	}

	data := make([]types.Listing, 0, len(listings))
	for _, l := range listings {
		data = append(data, toListing(l))
	}

	a.writeJson(w, http.StatusOK, query.Page[types.Listing]{
		Meta: query.NewMeta(p, total, filter),
		Data: data,
	})
}

// getListing resolves either the numeric id or the public short id, so
// shared listing links work without exposing row ids.
func (a *App) getListing(w http.ResponseWriter, r *http.Request) {
	var listing database.Listing

	id, err := pathId(r)
	if err == nil {
		listing, err = a.db.GetListingById(id)
	} else if externalId := r.PathValue("id"); externalId != "" {
		listing, err = a.db.GetListingByExternalId(externalId)
	} else {
		a.writeError(w, NewBadRequestError())
		return
	}

	if err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	a.writeJson(w, http.StatusOK, toListing(listing))
}

func (a *App) createListing(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	var req ListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	if errResp := req.validate(); errResp != nil {
		a.writeError(w, errResp)
		return
	}

	sid, err := a.generateShortId()
	if err != nil {
		a.log.Print("generateShortId:", err)
		a.writeError(w, NewInternalServerError(err))
		return
	}

	listing, err := a.db.CreateListing(database.CreateListingParams{
		ExternalId:  sid,
		Title:       req.Title,
		Description: req.Description,
		Condition:   req.Condition,
		Price:       req.Price,
		ImageUrl:    req.ImageUrl,
		UserId:      userId,
		CategoryId:  req.CategoryId,
		CampusId:    req.CampusId,
	})
	if err != nil {
		a.writeError(w, NewInternalServerError(err))
		return
	}

	a.writeJson(w, http.StatusCreated, toListing(listing))
}

func (a *App) updateListing(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	id, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	current, err := a.db.GetListingById(id)
	if err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	if current.UserId != userId {
		a.writeError(w, NewForbiddenError())
		return
	}

	var req ListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	if errResp := req.validate(); errResp != nil {
		a.writeError(w, errResp)
		return
	}

	isAvailable := current.IsAvailable
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	listing, err := a.db.UpdateListing(database.UpdateListingParams{
		ListingId:   id,
		Title:       req.Title,
		Description: req.Description,
		Condition:   req.Condition,
		Price:       req.Price,
		ImageUrl:    req.ImageUrl,
		CategoryId:  req.CategoryId,
		CampusId:    req.CampusId,
		IsAvailable: isAvailable,
	})
	if err != nil {
		a.writeError(w, NewInternalServerError(err))
		return
	}

	a.writeJson(w, http.StatusOK, toListing(listing))
}

func (a *App) deleteListing(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	id, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	current, err := a.db.GetListingById(id)
	if err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	if current.UserId != userId {
		a.writeError(w, NewForbiddenError())
		return
	}

	if err := a.db.DeleteListing(id); err != nil {
		a.writeError(w, NewInternalServerError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *App) createFavorite(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	listingId, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	if _, err := a.db.GetListingById(listingId); err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	favorite, err := a.db.CreateFavorite(userId, listingId)
	if err != nil {
		if database.IsUniqueViolation(err) {
			a.writeError(w, NewConflictError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	a.writeJson(w, http.StatusCreated, types.Favorite{
		Id:        favorite.Id,
		UserId:    favorite.UserId,
		ListingId: favorite.ListingId,
		CreatedAt: favorite.CreatedAt,
	})
}

func (a *App) deleteFavorite(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	listingId, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	if err := a.db.DeleteFavorite(userId, listingId); err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *App) listFavorites(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	listings, err := a.db.ListFavoriteListings(userId)
	if err != nil {
		a.writeError(w, NewInternalServerError(err))
		return
	}

	data := make([]types.Listing, 0, len(listings))
	for _, l := range listings {
		data = append(data, toListing(l))
	}

	a.writeJson(w, http.StatusOK, data)
}
