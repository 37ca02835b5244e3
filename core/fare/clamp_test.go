package fare

import "testing"

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{12.5, 12.5},
		{-7.25, 7.25},
		{0, 0},
		{1000, 1000},
		{1000.01, 1000},
		{-999, 999},
		{-5000, 1000},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{12.345678, 12.35},
		{12.344, 12.34},
		{7, 7},
		{0.004, 0},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
