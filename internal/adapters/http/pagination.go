package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// PageLinks describes the page-number pagination of a listing response.
type PageLinks struct {
	Page       int
	Size       int
	TotalPages int
}

// SetLinkHeaders adds RFC 8288 Link headers for page-numbered responses.
// Every other query parameter of the current request is kept.
func SetLinkHeaders(c *fiber.Ctx, p PageLinks) {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	c.Request().URI().QueryArgs().CopyTo(args)
	args.Set("size", strconv.Itoa(p.Size))

	base := c.Path()
	link := func(page int, rel string) string {
		args.Set("page", strconv.Itoa(page))
		return fmt.Sprintf(`<%s?%s>; rel="%s"`, base, args.String(), rel)
	}

	lastPage := p.TotalPages - 1
	if lastPage < 0 {
		lastPage = 0
	}

	links := []string{link(0, "first")}
	if p.Page > 0 {
		prev := p.Page - 1
		if prev > lastPage {
			prev = lastPage
		}
		links = append(links, link(prev, "prev"))
	}
	if p.Page < lastPage {
		links = append(links, link(p.Page+1, "next"))
	}
	links = append(links, link(lastPage, "last"))

	c.Set("Link", strings.Join(links, ", "))
}
