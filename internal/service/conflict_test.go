package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vagalivre/internal/db"
)

func TestFindConflict(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }

	existing := []db.Reservation{
		{ID: 1, StartTime: at(10), EndTime: at(12)},
	}

	tests := []struct {
		name       string
		start, end time.Time
		conflict   bool
	}{
		{"inside", at(10).Add(30 * time.Minute), at(11), true},
		{"covers", at(9), at(13), true},
		{"overlaps start", at(9), at(11), true},
		{"overlaps end", at(11), at(13), true},
		{"identical", at(10), at(12), true},
		{"before", at(8), at(9), false},
		{"after", at(13), at(14), false},
		{"back to back before", at(8), at(10), false},
		{"back to back after", at(12), at(14), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindConflict(existing, tt.start, tt.end)
			if tt.conflict {
				assert.NotNil(t, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestFindConflictReturnsFirstMatch(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := []db.Reservation{
		{ID: 1, StartTime: day.Add(8 * time.Hour), EndTime: day.Add(9 * time.Hour)},
		{ID: 2, StartTime: day.Add(10 * time.Hour), EndTime: day.Add(12 * time.Hour)},
	}

	got := FindConflict(existing, day.Add(11*time.Hour), day.Add(13*time.Hour))
	assert.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)
}
