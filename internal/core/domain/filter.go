package domain

import "strings"

// SortMode selects the listing algorithm.
type SortMode string

const (
	SortNearest SortMode = "NEAREST"
	SortNewest  SortMode = "NEWEST"
)

// ParseSortMode accepts the canonical names plus the DISTANCE/LATEST aliases
// still sent by older mobile clients. Empty input yields NEAREST.
func ParseSortMode(s string) (SortMode, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NEAREST", "DISTANCE":
		return SortNearest, true
	case "NEWEST", "LATEST":
		return SortNewest, true
	}
	return "", false
}

// FilterSpec is the attribute predicate of a listing request.
// Nil pointers mean "any".
type FilterSpec struct {
	Category *PetCategory `json:"category,omitempty"`
	Breed    *string      `json:"breed,omitempty"`
	Color    *string      `json:"color,omitempty"`
	Gender   *Gender      `json:"gender,omitempty"`
	HasChip  *bool        `json:"has_chip,omitempty"`
	Found    bool         `json:"found"`
}

// MatchesAttributes applies every present predicate with AND semantics.
// Breed and color are case-insensitive substring matches; the SQL store
// pushes the same predicates down and must stay in step with this.
func (f FilterSpec) MatchesAttributes(r PetRecord) bool {
	if f.Category != nil && r.Category != *f.Category {
		return false
	}
	if b := f.BreedTerm(); b != "" {
		if r.Breed == nil || !containsFold(*r.Breed, b) {
			return false
		}
	}
	if c := f.ColorTerm(); c != "" && !containsFold(r.Color, c) {
		return false
	}
	if f.Gender != nil && r.Gender != *f.Gender {
		return false
	}
	if f.HasChip != nil && r.HasChip != *f.HasChip {
		return false
	}
	return r.Found == f.Found
}

// BreedTerm returns the trimmed breed filter, "" when absent.
func (f FilterSpec) BreedTerm() string { return term(f.Breed) }

// ColorTerm returns the trimmed color filter, "" when absent.
func (f FilterSpec) ColorTerm() string { return term(f.Color) }

func term(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
