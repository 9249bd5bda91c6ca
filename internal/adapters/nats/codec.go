package natsadapter

import (
	"fmt"
	"strconv"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/samirrijal/findmypet/internal/core/domain"
)

// Subject returns lostpets.<type>.<petID>.
func Subject(e *domain.PetEvent) string {
	return fmt.Sprintf("lostpets.%s.%d", e.Type, e.PetID)
}

// EncodePetEvent renders e as a protobuf Struct. IDs travel as strings so
// int64 values survive the float64 number type.
func EncodePetEvent(e *domain.PetEvent) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"id":          e.ID,
		"type":        string(e.Type),
		"pet_id":      strconv.FormatInt(e.PetID, 10),
		"lat":         e.Location.Lat,
		"lng":         e.Location.Lng,
		"category":    string(e.Category),
		"title":       e.Title,
		"reporter_id": strconv.FormatInt(e.ReporterID, 10),
		"occurred_at": e.OccurredAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("build event struct: %w", err)
	}
	return proto.Marshal(s)
}

// DecodePetEvent parses a payload written by EncodePetEvent.
func DecodePetEvent(data []byte) (*domain.PetEvent, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	f := s.GetFields()

	str := func(k string) string { return f[k].GetStringValue() }

	petID, err := strconv.ParseInt(str("pet_id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("event pet_id: %w", err)
	}
	var reporterID int64
	if v := str("reporter_id"); v != "" {
		if reporterID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("event reporter_id: %w", err)
		}
	}
	occurred, err := time.Parse(time.RFC3339Nano, str("occurred_at"))
	if err != nil {
		return nil, fmt.Errorf("event occurred_at: %w", err)
	}

	e := &domain.PetEvent{
		ID:         str("id"),
		Type:       domain.PetEventType(str("type")),
		PetID:      petID,
		Location:   domain.Coordinate{Lat: f["lat"].GetNumberValue(), Lng: f["lng"].GetNumberValue()},
		Category:   domain.PetCategory(str("category")),
		Title:      str("title"),
		ReporterID: reporterID,
		OccurredAt: occurred,
	}
	switch e.Type {
	case domain.PetReported, domain.PetFound, domain.PetDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	return e, nil
}
