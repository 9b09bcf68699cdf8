package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYearLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"FY24", "FY24", true},
		{"FY 24", "FY24", true},
		{"fy23", "FY23", true},
		{"2023", "FY23", true},
		{"FY2024", "FY24", true},
		{"1998", "FY98", true},
		{"2023E", "FY23E", true},
		{"FY25E", "FY25E", true},
		{"2024 est", "FY24E", true},
		{"March 2019", "FY19", true},

		{"abc", "", false},
		{"", "", false},
		{"1899", "", false},
		{"2100", "", false},
		{"42", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := YearLabel(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Labels are equal iff two-digit year and estimate flag both match.
func TestYearLabel_EstimateDistinct(t *testing.T) {
	plain, ok := YearLabel("FY24")
	assert.True(t, ok)
	est, ok := YearLabel("FY24E")
	assert.True(t, ok)
	assert.NotEqual(t, plain, est)
}

func TestYearLabel_FirstMatchWins(t *testing.T) {
	got, ok := YearLabel("FY22 vs FY23")
	assert.True(t, ok)
	assert.Equal(t, "FY22", got)
}

func TestLooksLikeYear(t *testing.T) {
	assert.True(t, LooksLikeYear("FY21"))
	assert.True(t, LooksLikeYear("2022"))
	assert.True(t, LooksLikeYear("Year ended 2021"))
	assert.False(t, LooksLikeYear("Revenue"))
	assert.False(t, LooksLikeYear(""))
}
