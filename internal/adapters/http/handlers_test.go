package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/findmypet/internal/adapters/http"
	"github.com/samirrijal/findmypet/internal/adapters/memory"
	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/core/usecases"
)

// Knez Mihailova, Belgrade.
var center = domain.Coordinate{Lat: 44.8176, Lng: 20.4587}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

// makeDeps wires the real services over an in-memory store seeded with pets.
func makeDeps(pets []domain.PetRecord, opts ...func(*handler.Dependencies)) *handler.Dependencies {
	store := memory.NewPetStore(5000)
	for i := range pets {
		if err := store.Insert(context.Background(), &pets[i]); err != nil {
			panic(err)
		}
	}
	presenter := usecases.NewPresenter()
	d := &handler.Dependencies{
		Listing: usecases.NewListingService(store, nil, presenter, 0),
		Pets:    usecases.NewPetService(store, presenter),
		Version: "test",
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// northOf returns a point roughly meters north of c.
func northOf(c domain.Coordinate, meters float64) domain.Coordinate {
	return domain.Coordinate{Lat: c.Lat + meters/111_195, Lng: c.Lng}
}

// nearbyPets returns n missing dogs 100 m apart heading north from center.
func nearbyPets(n int) []domain.PetRecord {
	pets := make([]domain.PetRecord, n)
	for i := range pets {
		pets[i] = domain.PetRecord{
			Category:  domain.CategoryDog,
			Title:     fmt.Sprintf("Dog %d", i+1),
			Color:     "brown",
			Gender:    domain.GenderMale,
			Location:  northOf(center, float64(100*(i+1))),
			Photos:    []string{fmt.Sprintf("dog-%d.jpg", i+1)},
			OwnerID:   1,
			OwnerName: "Marko",
			CreatedAt: time.Now().Add(-time.Duration(i+1) * time.Hour),
		}
	}
	return pets
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func listURL(extra string) string {
	u := fmt.Sprintf("/v1/lost-pets?latitude=%f&longitude=%f", center.Lat, center.Lng)
	if extra != "" {
		u += "&" + extra
	}
	return u
}

// ---- Listing handler tests ----

func TestListLostPets_Success(t *testing.T) {
	app := setupApp(makeDeps(nearbyPets(12)))

	req := httptest.NewRequest("GET", listURL("radiusKm=5"), nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var result domain.ListingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.TotalElements != 12 {
		t.Errorf("expected total 12, got %d", result.TotalElements)
	}
	if result.TotalPages != 2 {
		t.Errorf("expected 2 pages, got %d", result.TotalPages)
	}
	if len(result.Content) != domain.DefaultPageSize {
		t.Fatalf("expected %d items, got %d", domain.DefaultPageSize, len(result.Content))
	}
	if result.Last {
		t.Error("expected first page not to be last")
	}
	if result.Content[0].Title != "Dog 1" {
		t.Errorf("expected nearest pet first, got %s", result.Content[0].Title)
	}
	if result.Content[0].Distance != "100 m" {
		t.Errorf("expected distance 100 m, got %q", result.Content[0].Distance)
	}
	if result.Content[0].MainPhotoURL != "/uploads/dog-1.jpg" {
		t.Errorf("expected photo url, got %q", result.Content[0].MainPhotoURL)
	}
	for i := 1; i < len(result.Content); i++ {
		if result.Content[i].DistanceMeters < result.Content[i-1].DistanceMeters {
			t.Fatalf("items not ordered by distance at %d", i)
		}
	}
}

func TestListLostPets_SecondPage(t *testing.T) {
	app := setupApp(makeDeps(nearbyPets(12)))

	req := httptest.NewRequest("GET", listURL("page=1"), nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result domain.ListingResponse
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Content) != 2 {
		t.Errorf("expected 2 items, got %d", len(result.Content))
	}
	if !result.Last {
		t.Error("expected last page")
	}
}

func TestListLostPets_HugePage(t *testing.T) {
	app := setupApp(makeDeps(nearbyPets(12)))

	for _, sort := range []string{"NEAREST", "NEWEST"} {
		req := httptest.NewRequest("GET", listURL("size=50&page=184467440737095517&sortBy="+sort), nil)
		resp, _ := app.Test(req, -1)
		if resp.StatusCode != 200 {
			t.Fatalf("%s: expected 200, got %d", sort, resp.StatusCode)
		}

		var result domain.ListingResponse
		json.NewDecoder(resp.Body).Decode(&result)
		if len(result.Content) != 0 || !result.Last || result.TotalElements != 12 {
			t.Errorf("%s: expected empty last page of 12, got %d items last=%v total=%d",
				sort, len(result.Content), result.Last, result.TotalElements)
		}
	}
}

func TestListLostPets_NewestFirst(t *testing.T) {
	app := setupApp(makeDeps(nearbyPets(5)))

	req := httptest.NewRequest("GET", listURL("sortBy=newest"), nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result domain.ListingResponse
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Content) != 5 {
		t.Fatalf("expected 5 items, got %d", len(result.Content))
	}
	// Dog 1 is the most recent report.
	if result.Content[0].Title != "Dog 1" || result.Content[4].Title != "Dog 5" {
		t.Errorf("unexpected order: first %s, last %s", result.Content[0].Title, result.Content[4].Title)
	}
}

func TestListLostPets_Filters(t *testing.T) {
	pets := nearbyPets(4)
	pets[1].Category = domain.CategoryCat
	pets[1].Gender = domain.GenderFemale
	pets[2].HasChip = true
	app := setupApp(makeDeps(pets))

	tests := []struct {
		query string
		want  int64
	}{
		{"category=CAT", 1},
		{"category=cat", 1},
		{"gender=FEMALE", 1},
		{"hasChip=true", 1},
		{"color=BROW", 4},
		{"found=true", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest("GET", listURL(tt.query), nil)
			resp, _ := app.Test(req, -1)
			if resp.StatusCode != 200 {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			var result domain.ListingResponse
			json.NewDecoder(resp.Body).Decode(&result)
			if result.TotalElements != tt.want {
				t.Errorf("expected %d, got %d", tt.want, result.TotalElements)
			}
		})
	}
}

func TestListLostPets_Empty(t *testing.T) {
	app := setupApp(makeDeps(nil))

	req := httptest.NewRequest("GET", listURL(""), nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result domain.ListingResponse
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Content == nil || len(result.Content) != 0 {
		t.Errorf("expected empty content array, got %v", result.Content)
	}
	if !result.Last || result.TotalPages != 0 {
		t.Errorf("expected last=true and 0 pages, got last=%v pages=%d", result.Last, result.TotalPages)
	}
}

func TestListLostPets_Invalid(t *testing.T) {
	app := setupApp(makeDeps(nil))

	tests := []struct {
		name  string
		url   string
		field string
	}{
		{"missing position", "/v1/lost-pets", "latitude"},
		{"latitude out of range", "/v1/lost-pets?latitude=91&longitude=20", "latitude"},
		{"longitude out of range", "/v1/lost-pets?latitude=44&longitude=-181", "longitude"},
		{"radius too small", listURL("radiusKm=0.5"), "radiusKm"},
		{"radius too large", listURL("radiusKm=101"), "radiusKm"},
		{"negative page", listURL("page=-1"), "page"},
		{"size too large", listURL("size=51"), "size"},
		{"zero size", listURL("size=0"), "size"},
		{"unknown sort", listURL("sortBy=oldest"), "sortBy"},
		{"unknown category", listURL("category=HORSE"), "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			resp, _ := app.Test(req, -1)
			if resp.StatusCode != 400 {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}

			var apiErr handler.APIError
			json.NewDecoder(resp.Body).Decode(&apiErr)
			if apiErr.Code != "bad_request" {
				t.Errorf("expected bad_request error, got %s", apiErr.Code)
			}
			found := false
			for _, f := range apiErr.Fields {
				if strings.HasPrefix(f, tt.field) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected field %s in %v", tt.field, apiErr.Fields)
			}
		})
	}
}

func TestListLostPets_CacheControlHeader(t *testing.T) {
	app := setupApp(makeDeps(nearbyPets(1)))

	req := httptest.NewRequest("GET", listURL(""), nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=30" {
		t.Errorf("expected Cache-Control header, got %q", cc)
	}
}

func TestListLostPets_ETag(t *testing.T) {
	app := setupApp(makeDeps(nearbyPets(3)))

	resp, _ := app.Test(httptest.NewRequest("GET", listURL(""), nil), -1)
	etag := resp.Header.Get("ETag")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak ETag, got %q", etag)
	}

	req := httptest.NewRequest("GET", listURL(""), nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

// ---- Legacy POST endpoint ----

func TestLegacyList_Deprecated(t *testing.T) {
	app := setupApp(makeDeps(nearbyPets(3)))

	body := fmt.Sprintf(`{"latitude":%f,"longitude":%f,"radiusKm":5,"page":0,"size":2}`, center.Lat, center.Lng)
	req := httptest.NewRequest("POST", "/v1/lost-pets/list", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header")
	}
	if resp.Header.Get("Sunset") == "" {
		t.Error("expected Sunset header")
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, "/v1/lost-pets") {
		t.Errorf("expected successor link, got %q", link)
	}

	var result domain.ListingResponse
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Content) != 2 || result.TotalElements != 3 {
		t.Errorf("expected 2 of 3 items, got %d of %d", len(result.Content), result.TotalElements)
	}
}

func TestLegacyList_BadBody(t *testing.T) {
	app := setupApp(makeDeps(nil))

	req := httptest.NewRequest("POST", "/v1/lost-pets/list", bytes.NewBufferString(`{"latitude":`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestNonDeprecatedRoute_NoHeader(t *testing.T) {
	app := setupApp(makeDeps(nil))

	resp, _ := app.Test(httptest.NewRequest("GET", listURL(""), nil), -1)
	if resp.Header.Get("Deprecation") != "" {
		t.Error("GET /v1/lost-pets must not be deprecated")
	}
}

// ---- Detail handler tests ----

func TestGetLostPet_Success(t *testing.T) {
	app := setupApp(makeDeps(nearbyPets(2)))

	url := fmt.Sprintf("/v1/lost-pets/2?latitude=%f&longitude=%f", center.Lat, center.Lng)
	resp, _ := app.Test(httptest.NewRequest("GET", url, nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var d domain.PetDetail
	json.NewDecoder(resp.Body).Decode(&d)
	if d.ID != 2 || d.Title != "Dog 2" {
		t.Errorf("unexpected detail %+v", d)
	}
	if d.Distance != "200 m" {
		t.Errorf("expected 200 m, got %q", d.Distance)
	}
	if len(d.Photos) != 1 || d.Photos[0] != "/uploads/dog-2.jpg" {
		t.Errorf("unexpected photos %v", d.Photos)
	}
}

func TestGetLostPet_NotFound(t *testing.T) {
	app := setupApp(makeDeps(nil))

	url := fmt.Sprintf("/v1/lost-pets/99?latitude=%f&longitude=%f", center.Lat, center.Lng)
	resp, _ := app.Test(httptest.NewRequest("GET", url, nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var apiErr handler.APIError
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "not_found" {
		t.Errorf("expected not_found, got %s", apiErr.Code)
	}
}

func TestGetLostPet_BadInput(t *testing.T) {
	app := setupApp(makeDeps(nearbyPets(1)))

	for _, url := range []string{
		"/v1/lost-pets/abc?latitude=44&longitude=20",
		"/v1/lost-pets/0?latitude=44&longitude=20",
		"/v1/lost-pets/1",
		"/v1/lost-pets/1?latitude=100&longitude=20",
	} {
		resp, _ := app.Test(httptest.NewRequest("GET", url, nil), -1)
		if resp.StatusCode != 400 {
			t.Errorf("%s: expected 400, got %d", url, resp.StatusCode)
		}
	}
}

// ---- GraphQL ----

func TestGraphQL_LostPets(t *testing.T) {
	app := setupApp(makeDeps(nearbyPets(3)))

	query := fmt.Sprintf(`{"query":"{ lostPets(latitude: %f, longitude: %f, size: 2) { totalElements last content { id petName distance } } }"}`, center.Lat, center.Lng)
	req := httptest.NewRequest("POST", "/graphql", bytes.NewBufferString(query))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			LostPets struct {
				TotalElements int  `json:"totalElements"`
				Last          bool `json:"last"`
				Content       []struct {
					ID       string `json:"id"`
					PetName  string `json:"petName"`
					Distance string `json:"distance"`
				} `json:"content"`
			} `json:"lostPets"`
		} `json:"data"`
		Errors []map[string]interface{} `json:"errors"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	lp := result.Data.LostPets
	if lp.TotalElements != 3 || len(lp.Content) != 2 || lp.Last {
		t.Errorf("unexpected page: %+v", lp)
	}
	if lp.Content[0].ID != "1" || lp.Content[0].Distance != "100 m" {
		t.Errorf("unexpected first item: %+v", lp.Content[0])
	}
}

func TestGraphQL_InvalidRadius(t *testing.T) {
	app := setupApp(makeDeps(nil))

	query := `{"query":"{ lostPets(latitude: 44.8, longitude: 20.4, radiusKm: 500) { totalElements } }"}`
	req := httptest.NewRequest("POST", "/graphql", bytes.NewBufferString(query))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)

	var result struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0].Message, "radiusKm") {
		t.Errorf("expected radiusKm error, got %+v", result.Errors)
	}
}

// ---- Health handler tests ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps(nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
	if result["version"] != "test" {
		t.Errorf("expected version test, got %v", result["version"])
	}
}

func TestReady_MemoryStore(t *testing.T) {
	// DB, NATS, Cache are nil: not configured, still ready
	app := setupApp(makeDeps(nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Checks map[string]string `json:"checks"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Checks["database"] != "not configured" {
		t.Errorf("expected database not configured, got %q", result.Checks["database"])
	}
}

func TestReady_NoListing(t *testing.T) {
	app := setupApp(makeDeps(nil, func(d *handler.Dependencies) { d.Listing = nil }))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

// ---- X-API-Version header ----

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps(nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if v := resp.Header.Get("X-API-Version"); v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

// ---- Link header on pagination ----

func TestListLostPets_LinkHeader(t *testing.T) {
	app := setupApp(makeDeps(nearbyPets(10)))

	resp, _ := app.Test(httptest.NewRequest("GET", listURL("page=1&size=3"), nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	link := resp.Header.Get("Link")
	if link == "" {
		t.Fatal("expected Link header, got empty")
	}
	for _, rel := range []string{"first", "prev", "next", "last"} {
		if !strings.Contains(link, `rel="`+rel+`"`) {
			t.Errorf("expected %s link, got %s", rel, link)
		}
	}
	if !strings.Contains(link, "page=3") {
		t.Errorf("expected last link to point at page 3, got %s", link)
	}
}

func TestDocs_ServesOpenAPI(t *testing.T) {
	app := setupApp(makeDeps(nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp.Body); !bytes.Contains(body, []byte("Find My Pet API")) {
		t.Error("expected OpenAPI document body")
	}
}

// TestAccessLogMiddleware verifies structured access logging is emitted.
func TestAccessLogMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(handler.AccessLogMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "test-req-123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp.Body); !strings.Contains(string(body), "ok") {
		t.Errorf("expected response body to contain 'ok', got %s", string(body))
	}
}
