package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/campusdeals/api/internal/apperr"
)

// ListingConditions are the values accepted by the listing condition filter.
var ListingConditions = []string{"brand_new", "used"}

type ListingFilter struct {
	CategoryId  *int     `json:"category_id,omitempty"`
	CampusId    *int     `json:"campus_id,omitempty"`
	Condition   string   `json:"condition,omitempty"`
	IsAvailable *bool    `json:"is_available,omitempty"`
	PriceMin    *float64 `json:"price_min,omitempty"`
	PriceMax    *float64 `json:"price_max,omitempty"`
}

func ParseListingFilter(values url.Values) (ListingFilter, error) {
	var f ListingFilter
	var err error

	if f.CategoryId, err = intFilter(values, "categoryId"); err != nil {
		return ListingFilter{}, err
	}
	if f.CampusId, err = intFilter(values, "campusId"); err != nil {
		return ListingFilter{}, err
	}

	if cond := values.Get("condition"); cond != "" {
		if !slices.Contains(ListingConditions, cond) {
			return ListingFilter{}, apperr.InvalidArgument("invalid listing filters",
				apperr.FieldError{Field: "condition", Message: "must be one of: " + strings.Join(ListingConditions, ", ")})
		}
		f.Condition = cond
	}

	if f.IsAvailable, err = boolFilter(values, "isAvailable"); err != nil {
		return ListingFilter{}, err
	}
	if f.PriceMin, err = floatFilter(values, "priceMin"); err != nil {
		return ListingFilter{}, err
	}
	if f.PriceMax, err = floatFilter(values, "priceMax"); err != nil {
		return ListingFilter{}, err
	}

	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMax < *f.PriceMin {
		return ListingFilter{}, apperr.InvalidArgument("invalid listing filters",
			apperr.FieldError{Field: "priceMax", Message: "must be greater than or equal to priceMin"})
	}

	return f, nil
}

type UserFilter struct {
	Role       string `json:"role,omitempty"`
	IsVerified *bool  `json:"is_verified,omitempty"`
}

func ParseUserFilter(values url.Values) (UserFilter, error) {
	var f UserFilter
	var err error

	if role := strings.TrimSpace(values.Get("role")); role != "" {
		f.Role = role
	}
	if f.IsVerified, err = boolFilter(values, "is_verified"); err != nil {
		return UserFilter{}, err
	}

	return f, nil
}

// SlugFilter covers the campus and category list filters.
type SlugFilter struct {
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

func ParseSlugFilter(values url.Values) SlugFilter {
	return SlugFilter{
		Name: strings.TrimSpace(values.Get("name")),
		Slug: strings.TrimSpace(values.Get("slug")),
	}
}

func intFilter(values url.Values, key string) (*int, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid filters",
			apperr.FieldError{Field: key, Message: "must be an integer"})
	}
	return &n, nil
}

func boolFilter(values url.Values, key string) (*bool, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}

	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid filters",
			apperr.FieldError{Field: key, Message: "must be a boolean"})
	}
	return &b, nil
}

func floatFilter(values url.Values, key string) (*float64, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}

	fl, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid filters",
			apperr.FieldError{Field: key, Message: "must be a number"})
	}
	return &fl, nil
}
