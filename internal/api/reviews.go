package api

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/campusdeals/api/internal/database"
	"github.com/campusdeals/api/internal/types"
)

var reviewRatings = []string{"positive", "neutral", "negative"}

type ReviewRequest struct {
	Review string `json:"review"`
	Rating string `json:"rating"`
}

func toReview(rv database.Review) types.Review {
	return types.Review{
		Id:         rv.Id,
		Review:     rv.Review,
		ReviewerId: rv.ReviewerId,
		RevieweeId: rv.RevieweeId,
		Rating:     rv.Rating,
		CreatedAt:  rv.CreatedAt,
		UpdatedAt:  rv.UpdatedAt,
	}
}

func (a *App) createReview(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	revieweeId, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	if revieweeId == userId {
		a.writeError(w, NewBadRequestError())
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	if req.Review == "" || !slices.Contains(reviewRatings, req.Rating) {
		a.writeError(w, NewBadRequestError())
		return
	}

	if _, err := a.db.GetUserById(revieweeId); err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	review, err := a.db.CreateReview(database.CreateReviewParams{
		Review:     req.Review,
		ReviewerId: userId,
		RevieweeId: revieweeId,
		Rating:     req.Rating,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			a.writeError(w, NewConflictError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	a.writeJson(w, http.StatusCreated, toReview(review))
}

func (a *App) listReviews(w http.ResponseWriter, r *http.Request) {
	revieweeId, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	reviews, err := a.db.ListReviewsForUser(revieweeId)
	if err != nil {
		a.writeError(w, NewInternalServerError(err))
		return
	}

	data := make([]types.Review, 0, len(reviews))
	for _, rv := range reviews {
		data = append(data, toReview(rv))
	}

	a.writeJson(w, http.StatusOK, data)
}
