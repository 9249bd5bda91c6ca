package domain

import (
	"math"
	"time"
)

// Inbound bounds and defaults for listing requests.
const (
	MinRadiusKm     = 1
	MaxRadiusKm     = 100
	DefaultRadiusKm = 5
	MaxPageSize     = 50
	DefaultPageSize = 10
)

// ListingRequest is a validated listing query.
type ListingRequest struct {
	Center   Coordinate `json:"center"`
	RadiusKm float64    `json:"radius_km"`
	Filter   FilterSpec `json:"filter"`
	Sort     SortMode   `json:"sort"`
	Page     int        `json:"page"`
	Size     int        `json:"size"`
}

// DefaultRequest returns a request centred on c with the inbound defaults.
func DefaultRequest(c Coordinate) ListingRequest {
	return ListingRequest{
		Center:   c,
		RadiusKm: DefaultRadiusKm,
		Sort:     SortNearest,
		Page:     0,
		Size:     DefaultPageSize,
	}
}

// PageRequest addresses one page of a store query.
type PageRequest struct {
	Index int
	Size  int
}

// Offset is the number of rows to skip. It saturates at math.MaxInt
// instead of overflowing for very large page indexes.
func (p PageRequest) Offset() int {
	if p.Index <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Index > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Index * p.Size
}

// RecordPage is one newest-first page from the store. TotalInBox counts
// every match inside the bounding box and ignores the radius.
type RecordPage struct {
	Records    []PetRecord
	TotalInBox int64
}

// CandidateSet is an unpaged store result. Truncated is set when the store
// capped the set; the kept records are the ones closest to the box centre.
type CandidateSet struct {
	Records   []PetRecord
	Truncated bool
}

// Hit pairs a record with its exact distance from the request centre.
type Hit struct {
	Record         PetRecord `json:"record"`
	DistanceMeters float64   `json:"distance_meters"`
}

// ListingPage is the engine output before presentation.
type ListingPage struct {
	Hits          []Hit `json:"hits"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	Last          bool  `json:"last"`
	Truncated     bool  `json:"truncated"`
}

// ListItem is the outward list entry.
type ListItem struct {
	ID             int64       `json:"id"`
	MainPhotoURL   string      `json:"mainPhotoUrl"`
	TimeAgo        string      `json:"timeAgo"`
	Title          string      `json:"petName"`
	Breed          *string     `json:"breed"`
	Color          string      `json:"color"`
	Gender         string      `json:"gender"`
	HasChip        bool        `json:"hasChip"`
	OwnerName      string      `json:"ownerName"`
	Distance       string      `json:"distance"`
	DistanceMeters float64     `json:"distanceMeters"`
	Category       PetCategory `json:"petType"`
	AllPhotos      []string    `json:"allPhotos"`
	Found          bool        `json:"found"`
	FoundAgo       *string     `json:"foundAt"`
}

// ListingResponse is the outward page.
type ListingResponse struct {
	Content       []ListItem `json:"content"`
	Page          int        `json:"page"`
	Size          int        `json:"size"`
	TotalElements int64      `json:"totalElements"`
	TotalPages    int        `json:"totalPages"`
	Last          bool       `json:"last"`
	Truncated     bool       `json:"truncated,omitempty"`
}

// PetDetail is the single-report view.
type PetDetail struct {
	ID             int64       `json:"id"`
	Category       PetCategory `json:"petType"`
	Title          string      `json:"title"`
	Breed          *string     `json:"breed"`
	Color          string      `json:"color"`
	Gender         string      `json:"gender"`
	HasChip        bool        `json:"hasChip"`
	Address        string      `json:"address"`
	Location       Coordinate  `json:"location"`
	CreatedAt      time.Time   `json:"createdAt"`
	TimeAgo        string      `json:"timeAgo"`
	Photos         []string    `json:"photos"`
	Distance       string      `json:"distance"`
	DistanceMeters float64     `json:"distanceInMeters"`
	OwnerID        int64       `json:"ownerId"`
	OwnerName      string      `json:"ownerName"`
	Found          bool        `json:"found"`
	FoundAt        *time.Time  `json:"foundAt"`
}
