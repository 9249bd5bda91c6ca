package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist or was soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest marks input rejected at the request boundary.
	ErrInvalidRequest = errors.New("invalid request")
)

// PetCategory is the kind of animal in a report.
type PetCategory string

const (
	CategoryDog   PetCategory = "DOG"
	CategoryCat   PetCategory = "CAT"
	CategoryOther PetCategory = "OTHER"
)

// Valid reports whether c is a known category.
func (c PetCategory) Valid() bool {
	switch c {
	case CategoryDog, CategoryCat, CategoryOther:
		return true
	}
	return false
}

// Gender of the reported animal.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// PetRecord is a lost-pet report as stored by the record store.
// The listing engine only reads it.
type PetRecord struct {
	ID        int64       `json:"id"`
	Category  PetCategory `json:"category"`
	Title     string      `json:"title"`
	Breed     *string     `json:"breed,omitempty"`
	Color     string      `json:"color"`
	Gender    Gender      `json:"gender"`
	HasChip   bool        `json:"has_chip"`
	Location  Coordinate  `json:"location"`
	Address   string      `json:"address,omitempty"`
	Photos    []string    `json:"photos"`
	OwnerID   int64       `json:"owner_id"`
	OwnerName string      `json:"owner_name"`
	Found     bool        `json:"found"`
	FoundAt   *time.Time  `json:"found_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	Deleted   bool        `json:"-"`
}

// PetEventType names what happened to a report.
type PetEventType string

const (
	PetReported PetEventType = "reported"
	PetFound    PetEventType = "found"
	PetDeleted  PetEventType = "deleted"
)

// PetEvent is published by the reporting side whenever a report changes.
type PetEvent struct {
	ID         string       `json:"id"`
	Type       PetEventType `json:"type"`
	PetID      int64        `json:"pet_id"`
	Location   Coordinate   `json:"location"`
	Category   PetCategory  `json:"category"`
	Title      string       `json:"title"`
	ReporterID int64        `json:"reporter_id"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Watcher is a user who asked to be alerted about reports near a location.
type Watcher struct {
	UserID    int64      `json:"user_id"`
	FullName  string     `json:"full_name"`
	PushToken string     `json:"push_token"`
	Center    Coordinate `json:"center"`
	RadiusKm  float64    `json:"radius_km"`
}

// AlertRecipient is a watcher matched to a report, with its distance.
type AlertRecipient struct {
	Watcher
	DistanceMeters float64 `json:"distance_meters"`
}
