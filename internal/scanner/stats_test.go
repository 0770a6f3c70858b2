package scanner

import (
	"math"
	"testing"
)

func TestPstdev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single value", []float64{42}, 0},
		{"constant run", []float64{5, 5, 5, 5, 5}, 0},
		{"known population", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 2},
		{"two values", []float64{1, 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pstdev(tt.values)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("pstdev(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestPstdev_TightPriceRun(t *testing.T) {
	prices := []float64{100, 100.1, 99.9, 100.05, 100, 99.95, 100.1, 100, 99.9, 100.05}
	got := pstdev(prices)
	if got >= 100*0.006 {
		t.Errorf("Expected tight run to sit under the squeeze bound 0.6, got %v", got)
	}
}
