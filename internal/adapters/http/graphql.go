package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/findmypet/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
		},
	})

	petTypeEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "PetType",
		Values: graphql.EnumValueConfigMap{
			"DOG":   &graphql.EnumValueConfig{Value: "DOG"},
			"CAT":   &graphql.EnumValueConfig{Value: "CAT"},
			"OTHER": &graphql.EnumValueConfig{Value: "OTHER"},
		},
	})

	listItemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LostPet",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"petName":        &graphql.Field{Type: graphql.String},
			"petType":        &graphql.Field{Type: petTypeEnum},
			"mainPhotoUrl":   &graphql.Field{Type: graphql.String},
			"allPhotos":      &graphql.Field{Type: graphql.NewList(graphql.String)},
			"timeAgo":        &graphql.Field{Type: graphql.String},
			"breed":          &graphql.Field{Type: graphql.String},
			"color":          &graphql.Field{Type: graphql.String},
			"gender":         &graphql.Field{Type: graphql.String},
			"hasChip":        &graphql.Field{Type: graphql.Boolean},
			"ownerName":      &graphql.Field{Type: graphql.String},
			"distance":       &graphql.Field{Type: graphql.String},
			"distanceMeters": &graphql.Field{Type: graphql.Float},
			"found":          &graphql.Field{Type: graphql.Boolean},
			"foundAt":        &graphql.Field{Type: graphql.String},
		},
	})

	pageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LostPetPage",
		Fields: graphql.Fields{
			"content":       &graphql.Field{Type: graphql.NewList(listItemType)},
			"page":          &graphql.Field{Type: graphql.Int},
			"size":          &graphql.Field{Type: graphql.Int},
			"totalElements": &graphql.Field{Type: graphql.Int},
			"totalPages":    &graphql.Field{Type: graphql.Int},
			"last":          &graphql.Field{Type: graphql.Boolean},
			"truncated":     &graphql.Field{Type: graphql.Boolean},
		},
	})

	detailType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LostPetDetail",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":            &graphql.Field{Type: graphql.String},
			"petType":          &graphql.Field{Type: petTypeEnum},
			"breed":            &graphql.Field{Type: graphql.String},
			"color":            &graphql.Field{Type: graphql.String},
			"gender":           &graphql.Field{Type: graphql.String},
			"hasChip":          &graphql.Field{Type: graphql.Boolean},
			"address":          &graphql.Field{Type: graphql.String},
			"location":         &graphql.Field{Type: coordinateType},
			"createdAt":        &graphql.Field{Type: graphql.DateTime},
			"timeAgo":          &graphql.Field{Type: graphql.String},
			"photos":           &graphql.Field{Type: graphql.NewList(graphql.String)},
			"distance":         &graphql.Field{Type: graphql.String},
			"distanceInMeters": &graphql.Field{Type: graphql.Float},
			"ownerId":          &graphql.Field{Type: graphql.ID},
			"ownerName":        &graphql.Field{Type: graphql.String},
			"found":            &graphql.Field{Type: graphql.Boolean},
			"foundAt":          &graphql.Field{Type: graphql.DateTime},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"lostPets": &graphql.Field{
				Type:        pageType,
				Description: "Lost pets within a radius of a location",
				Args: graphql.FieldConfigArgument{
					"latitude":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"longitude": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radiusKm":  &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: float64(domain.DefaultRadiusKm)},
					"page":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"size":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: domain.DefaultPageSize},
					"sortBy":    &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.SortNearest)},
					"category":  &graphql.ArgumentConfig{Type: petTypeEnum},
					"breed":     &graphql.ArgumentConfig{Type: graphql.String},
					"color":     &graphql.ArgumentConfig{Type: graphql.String},
					"gender":    &graphql.ArgumentConfig{Type: graphql.String},
					"hasChip":   &graphql.ArgumentConfig{Type: graphql.Boolean},
					"found":     &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := listQueryFromArgs(p.Args)
					if fields := validateListQuery(&q); len(fields) > 0 {
						return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, strings.Join(fields, ", "))
					}
					resp, err := deps.Listing.Search(p.Context, q.toRequest())
					if err != nil {
						return nil, err
					}
					return pageToMap(resp), nil
				},
			},
			"lostPet": &graphql.Field{
				Type:        detailType,
				Description: "A single lost pet report, with distance from the viewer",
				Args: graphql.FieldConfigArgument{
					"id":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"latitude":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"longitude": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := strconv.ParseInt(fmt.Sprint(p.Args["id"]), 10, 64)
					if err != nil || id <= 0 {
						return nil, fmt.Errorf("%w: id must be a positive integer", domain.ErrInvalidRequest)
					}
					lat, _ := p.Args["latitude"].(float64)
					lng, _ := p.Args["longitude"].(float64)
					q := viewerQuery{Latitude: &lat, Longitude: &lng}
					if fields := invalidFields(validate.Struct(&q)); len(fields) > 0 {
						return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, strings.Join(fields, ", "))
					}
					d, err := deps.Pets.Detail(p.Context, id, q.coordinate())
					if err != nil {
						return nil, err
					}
					return detailToMap(d), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func listQueryFromArgs(args map[string]interface{}) listQuery {
	q := defaultListQuery()
	if v, ok := args["latitude"].(float64); ok {
		q.Latitude = &v
	}
	if v, ok := args["longitude"].(float64); ok {
		q.Longitude = &v
	}
	if v, ok := args["radiusKm"].(float64); ok {
		q.RadiusKm = v
	}
	if v, ok := args["page"].(int); ok {
		q.Page = v
	}
	if v, ok := args["size"].(int); ok {
		q.Size = v
	}
	q.SortBy, _ = args["sortBy"].(string)
	q.Category, _ = args["category"].(string)
	q.Breed, _ = args["breed"].(string)
	q.Color, _ = args["color"].(string)
	q.Gender, _ = args["gender"].(string)
	if v, ok := args["hasChip"].(bool); ok {
		q.HasChip = &v
	}
	q.Found, _ = args["found"].(bool)
	return q
}

func pageToMap(r *domain.ListingResponse) map[string]interface{} {
	content := make([]map[string]interface{}, 0, len(r.Content))
	for _, it := range r.Content {
		content = append(content, map[string]interface{}{
			"id":             strconv.FormatInt(it.ID, 10),
			"petName":        it.Title,
			"petType":        string(it.Category),
			"mainPhotoUrl":   it.MainPhotoURL,
			"allPhotos":      it.AllPhotos,
			"timeAgo":        it.TimeAgo,
			"breed":          derefString(it.Breed),
			"color":          it.Color,
			"gender":         it.Gender,
			"hasChip":        it.HasChip,
			"ownerName":      it.OwnerName,
			"distance":       it.Distance,
			"distanceMeters": it.DistanceMeters,
			"found":          it.Found,
			"foundAt":        derefString(it.FoundAgo),
		})
	}
	return map[string]interface{}{
		"content":       content,
		"page":          r.Page,
		"size":          r.Size,
		"totalElements": int(r.TotalElements),
		"totalPages":    r.TotalPages,
		"last":          r.Last,
		"truncated":     r.Truncated,
	}
}

func detailToMap(d *domain.PetDetail) map[string]interface{} {
	m := map[string]interface{}{
		"id":               strconv.FormatInt(d.ID, 10),
		"title":            d.Title,
		"petType":          string(d.Category),
		"breed":            derefString(d.Breed),
		"color":            d.Color,
		"gender":           d.Gender,
		"hasChip":          d.HasChip,
		"address":          d.Address,
		"location":         map[string]interface{}{"latitude": d.Location.Lat, "longitude": d.Location.Lng},
		"createdAt":        d.CreatedAt,
		"timeAgo":          d.TimeAgo,
		"photos":           d.Photos,
		"distance":         d.Distance,
		"distanceInMeters": d.DistanceMeters,
		"ownerId":          strconv.FormatInt(d.OwnerID, 10),
		"ownerName":        d.OwnerName,
		"found":            d.Found,
	}
	if d.FoundAt != nil {
		m["foundAt"] = *d.FoundAt
	}
	return m
}

// derefString returns nil for a nil pointer so GraphQL renders null.
func derefString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// Programming error in the schema definition.
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if strings.TrimSpace(req.Query) == "" {
			return errBadRequest(c, "query is required", "query")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
