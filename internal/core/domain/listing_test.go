package domain_test

import (
	"math"
	"testing"

	"github.com/samirrijal/findmypet/internal/core/domain"
)

func TestPageRequest_Offset(t *testing.T) {
	tests := []struct {
		name string
		page domain.PageRequest
		want int
	}{
		{"first page", domain.PageRequest{Index: 0, Size: 10}, 0},
		{"third page", domain.PageRequest{Index: 2, Size: 10}, 20},
		{"negative index", domain.PageRequest{Index: -1, Size: 10}, 0},
		{"zero size", domain.PageRequest{Index: 3, Size: 0}, 0},
		{"largest exact", domain.PageRequest{Index: math.MaxInt / 50, Size: 50}, (math.MaxInt / 50) * 50},
		{"saturates", domain.PageRequest{Index: math.MaxInt/50 + 1, Size: 50}, math.MaxInt},
		{"max index", domain.PageRequest{Index: math.MaxInt, Size: 2}, math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.Offset(); got != tt.want {
				t.Errorf("Offset() = %d, want %d", got, tt.want)
			}
		})
	}
}
