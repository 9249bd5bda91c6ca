package http

import (
	"github.com/gofiber/fiber/v2"
)

// ListLostPetsHandler serves GET /v1/lost-pets.
func ListLostPetsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := defaultListQuery()
		if err := c.QueryParser(&q); err != nil {
			return errBadRequest(c, "malformed query parameters: "+err.Error())
		}
		if fields := validateListQuery(&q); len(fields) > 0 {
			return errBadRequest(c, "invalid listing request", fields...)
		}

		resp, err := deps.Listing.Search(c.UserContext(), q.toRequest())
		if err != nil {
			return fromServiceError(c, err, "failed to list lost pets")
		}

		SetLinkHeaders(c, PageLinks{Page: resp.Page, Size: resp.Size, TotalPages: resp.TotalPages})
		c.Set("Cache-Control", "public, max-age=30")
		return c.JSON(resp)
	}
}

// LegacyListLostPetsHandler serves POST /v1/lost-pets/list with the JSON
// body still sent by older mobile clients.
func LegacyListLostPetsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := defaultListQuery()
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&q); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		if fields := validateListQuery(&q); len(fields) > 0 {
			return errBadRequest(c, "invalid listing request", fields...)
		}

		resp, err := deps.Listing.Search(c.UserContext(), q.toRequest())
		if err != nil {
			return fromServiceError(c, err, "failed to list lost pets")
		}
		return c.JSON(resp)
	}
}

// GetLostPetHandler serves GET /v1/lost-pets/:id.
func GetLostPetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return errBadRequest(c, "id must be a positive integer", "id")
		}

		var q viewerQuery
		if err := c.QueryParser(&q); err != nil {
			return errBadRequest(c, "malformed query parameters: "+err.Error())
		}
		if fields := invalidFields(validate.Struct(&q)); len(fields) > 0 {
			return errBadRequest(c, "viewer position is required", fields...)
		}

		detail, err := deps.Pets.Detail(c.UserContext(), int64(id), q.coordinate())
		if err != nil {
			return fromServiceError(c, err, "failed to load lost pet")
		}
		return c.JSON(detail)
	}
}
