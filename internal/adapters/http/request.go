package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/samirrijal/findmypet/internal/core/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("lat", func(fl validator.FieldLevel) bool {
		lat := fl.Field().Float()
		return lat >= -90 && lat <= 90
	})
	_ = v.RegisterValidation("lng", func(fl validator.FieldLevel) bool {
		lng := fl.Field().Float()
		return lng >= -180 && lng <= 180
	})
	_ = v.RegisterValidation("sort_mode", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseSortMode(fl.Field().String())
		return ok
	})
	// Report fields by their wire name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// listQuery is the inbound listing request, from query params or JSON.
type listQuery struct {
	Latitude  *float64 `query:"latitude" json:"latitude" validate:"required,lat"`
	Longitude *float64 `query:"longitude" json:"longitude" validate:"required,lng"`
	RadiusKm  float64  `query:"radiusKm" json:"radiusKm" validate:"gte=1,lte=100"`
	Page      int      `query:"page" json:"page" validate:"gte=0"`
	Size      int      `query:"size" json:"size" validate:"gte=1,lte=50"`
	SortBy    string   `query:"sortBy" json:"sortBy" validate:"sort_mode"`
	Category  string   `query:"category" json:"category" validate:"omitempty,oneof=DOG CAT OTHER"`
	Breed     string   `query:"breed" json:"breed" validate:"max=100"`
	Color     string   `query:"color" json:"color" validate:"max=100"`
	Gender    string   `query:"gender" json:"gender" validate:"omitempty,oneof=MALE FEMALE"`
	HasChip   *bool    `query:"hasChip" json:"hasChip"`
	Found     bool     `query:"found" json:"found"`
}

func defaultListQuery() listQuery {
	return listQuery{
		RadiusKm: domain.DefaultRadiusKm,
		Size:     domain.DefaultPageSize,
	}
}

// validateListQuery normalizes enum casing and returns the failing fields.
func validateListQuery(q *listQuery) []string {
	q.Category = strings.ToUpper(strings.TrimSpace(q.Category))
	q.Gender = strings.ToUpper(strings.TrimSpace(q.Gender))
	return invalidFields(validate.Struct(q))
}

func (q listQuery) toRequest() domain.ListingRequest {
	sort, _ := domain.ParseSortMode(q.SortBy)
	req := domain.ListingRequest{
		Center:   domain.Coordinate{Lat: *q.Latitude, Lng: *q.Longitude},
		RadiusKm: q.RadiusKm,
		Sort:     sort,
		Page:     q.Page,
		Size:     q.Size,
		Filter: domain.FilterSpec{
			HasChip: q.HasChip,
			Found:   q.Found,
		},
	}
	if q.Category != "" {
		c := domain.PetCategory(q.Category)
		req.Filter.Category = &c
	}
	if g := q.Gender; g != "" {
		gender := domain.Gender(g)
		req.Filter.Gender = &gender
	}
	if b := strings.TrimSpace(q.Breed); b != "" {
		req.Filter.Breed = &b
	}
	if col := strings.TrimSpace(q.Color); col != "" {
		req.Filter.Color = &col
	}
	return req
}

// viewerQuery carries the viewer position for the detail endpoint.
type viewerQuery struct {
	Latitude  *float64 `query:"latitude" json:"latitude" validate:"required,lat"`
	Longitude *float64 `query:"longitude" json:"longitude" validate:"required,lng"`
}

// invalidFields lists "field (tag)" for each validation failure.
func invalidFields(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return fields
}

func (q viewerQuery) coordinate() domain.Coordinate {
	return domain.Coordinate{Lat: *q.Latitude, Lng: *q.Longitude}
}
