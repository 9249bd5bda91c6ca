package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/core/usecases"
)

func TestPetService_Detail(t *testing.T) {
	rec := dog(3, north(knezMihailova, 1500), 2*time.Hour)
	rec.Address = "Knez Mihailova 12"
	svc := usecases.NewPetService(sliceStore([]domain.PetRecord{rec}), fixedPresenter())

	d, err := svc.Detail(context.Background(), 3, knezMihailova)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID != 3 || d.Address != "Knez Mihailova 12" {
		t.Errorf("unexpected detail %+v", d)
	}
	if d.Distance != "1.5 km" {
		t.Errorf("distance = %q", d.Distance)
	}
	if d.TimeAgo != "pre 2 sata" {
		t.Errorf("timeAgo = %q", d.TimeAgo)
	}
	if d.Gender != "Muški" {
		t.Errorf("gender = %q", d.Gender)
	}
	if len(d.Photos) != 1 || d.Photos[0] != "/uploads/dog3.jpg" {
		t.Errorf("photos = %v", d.Photos)
	}
}

func TestPetService_Detail_NotFound(t *testing.T) {
	deleted := dog(4, knezMihailova, time.Hour)
	deleted.Deleted = true
	svc := usecases.NewPetService(sliceStore([]domain.PetRecord{deleted}), nil)

	for _, id := range []int64{4, 99} {
		_, err := svc.Detail(context.Background(), id, knezMihailova)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("id %d: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestPetService_Detail_InvalidInput(t *testing.T) {
	svc := usecases.NewPetService(&mockPetStore{}, nil)

	if _, err := svc.Detail(context.Background(), 0, knezMihailova); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for id 0, got %v", err)
	}
	if _, err := svc.Detail(context.Background(), 1, domain.Coordinate{Lat: 0, Lng: 200}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for bad viewer, got %v", err)
	}
}
