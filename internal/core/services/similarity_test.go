package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "Manoir de Katrapat", "Manoir de Katrapat", 100},
		{"case and spacing ignored", "  manoir   DE katrapat ", "Manoir de Katrapat", 100},
		{"misspelled subject", "manoire de katrepa", "Manoir de Katrapat", 89},
		{"exactly seventy", "manoir de katrxxxxxxxx", "Manoir de Katrapat", 70},
		{"just below seventy", "manoir de kxyz", "Manoir de Katrapat", 69},
		{"one dropped letter", "Donjon du Boufto Royal", "Donjon du Bouftou Royal", 98},
		{"nothing in common", "xyz", "abc", 0},
		{"both empty", "", "", 100},
		{"one empty", "", "abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SimilarityRatio(tt.a, tt.b))
		})
	}
}

func TestSimilarityRatio_Symmetric(t *testing.T) {
	assert.Equal(t,
		SimilarityRatio("Donjon des Bworks", "bworkz"),
		SimilarityRatio("bworkz", "Donjon des Bworks"))
}
