package api

import (
	"encoding/json"
	"net/http"

	"github.com/campusdeals/api/internal/database"
	"github.com/campusdeals/api/internal/query"
	"github.com/campusdeals/api/internal/types"
)

var userPolicy = query.Policy{
	DefaultSortBy: "created_at",
	SortFields:    []string{"created_at", "name", "positive_count"},
	SearchFields:  []string{"name", "email"},
}

type UpdateAccountRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func toUser(u database.User) types.User {
	user := types.User{
		Id:            u.Id,
		Name:          u.Name,
		EmailAddress:  u.EmailAddress,
		Role:          u.Role,
		IsVerified:    u.IsVerified,
		PositiveCount: u.PositiveCount,
		NeutralCount:  u.NeutralCount,
		NegativeCount: u.NegativeCount,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	if u.Phone.Valid {
		user.Phone = u.Phone.String
	}

	return user
}

func (a *App) listUsers(w http.ResponseWriter, r *http.Request) {
	p, err := query.Parse(r.URL.Query(), userPolicy)
	if err != nil {
		a.writeError(w, fromAppError(err))
		return
	}

	filter, err := query.ParseUserFilter(r.URL.Query())
	if err != nil {
		a.writeError(w, fromAppError(err))
		return
	}

	users, total, err := a.db.ListUsers(p, filter)
	if err != nil {
		a.writeError(w, NewInternalServerError(err))
		return
	}

	data := make([]types.User, 0, len(users))
	for _, u := range users {
		data = append(data, toUser(u))
	}

	a.writeJson(w, http.StatusOK, query.Page[types.User]{
		Meta: query.NewMeta(p, total, filter),
		Data: data,
	})
}

func (a *App) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	user, err := a.db.GetUserById(id)
	if err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	a.writeJson(w, http.StatusOK, toUser(user))
}

func (a *App) updateAccount(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	if req.Name == "" || req.Password == "" {
		a.writeError(w, NewBadRequestError())
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		a.writeError(w, NewInternalServerError(err))
		return
	}

	updated, err := a.db.UpdateUser(database.UpdateUserParams{
		UserId:       userId,
		Name:         req.Name,
		PasswordHash: pwdHash,
		Phone:        req.Phone,
	})
	if err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	a.writeJson(w, http.StatusOK, toUser(updated))
}

func (a *App) deleteAccount(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	if err := a.db.DeleteUser(userId); err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	http.SetCookie(w, createJwtCookie("", 0))
	w.WriteHeader(http.StatusNoContent)
}
