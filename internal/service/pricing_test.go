package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "vagalivre/internal/errors"
)

func TestTotalPriceCents(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		duration  time.Duration
		rateCents int64
		want      int64
	}{
		{"one hour", time.Hour, 1000, 1000},
		{"ninety minutes at 10.00", 90 * time.Minute, 1000, 1500},
		{"fifteen minutes", 15 * time.Minute, 1000, 250},
		{"full day", 24 * time.Hour, 250, 6000},
		{"rounds half up", 100 * time.Minute, 999, 1665},
		{"one minute at 1 cent rounds to zero", time.Minute, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TotalPriceCents(base, base.Add(tt.duration), tt.rateCents)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTotalPriceCentsInvalidInterval(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	_, err := TotalPriceCents(base, base, 1000)
	assert.True(t, apperrors.IsValidation(err))

	_, err = TotalPriceCents(base, base.Add(-time.Hour), 1000)
	assert.True(t, apperrors.IsValidation(err))
}
