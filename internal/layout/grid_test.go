package layout

import (
	"testing"

	"github.com/1broseidon/winstack/internal/platform"
)

func TestCalculateGrid(t *testing.T) {
	tests := []struct{ n, rows, cols int }{
		{0, 0, 0},
		{1, 1, 1},
		{2, 1, 2},
		{3, 2, 2},
		{5, 2, 3},
		{9, 3, 3},
	}
	for _, tt := range tests {
		rows, cols := CalculateGrid(tt.n)
		if rows != tt.rows || cols != tt.cols {
			t.Fatalf("CalculateGrid(%d) = %dx%d, want %dx%d", tt.n, rows, cols, tt.rows, tt.cols)
		}
	}
}

func TestCalculatePositions_LastRowStretches(t *testing.T) {
	area := platform.Rect{Width: 1000, Height: 800}

	positions, err := CalculatePositions(3, area, 10, ArrangeGrid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// slot = (1000-30)/2 x (800-30)/2; the single window in the last row
	// spans (1000-20).
	want := []platform.Rect{
		{X: 10, Y: 10, Width: 485, Height: 385},
		{X: 505, Y: 10, Width: 485, Height: 385},
		{X: 10, Y: 405, Width: 980, Height: 385},
	}
	for i := range want {
		if positions[i] != want[i] {
			t.Fatalf("position %d = %v, want %v", i, positions[i], want[i])
		}
	}
}

func TestCalculatePositions_MasterStack(t *testing.T) {
	area := platform.Rect{Width: 1000, Height: 800}

	positions, err := CalculatePositions(3, area, 10, ArrangeMasterStack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []platform.Rect{
		{X: 10, Y: 10, Width: 540, Height: 780},
		{X: 560, Y: 10, Width: 430, Height: 385},
		{X: 560, Y: 405, Width: 430, Height: 385},
	}
	for i := range want {
		if positions[i] != want[i] {
			t.Fatalf("position %d = %v, want %v", i, positions[i], want[i])
		}
	}
}

func TestCalculatePositions_ErrorsWhenInsufficientSpace(t *testing.T) {
	_, err := CalculatePositions(2, platform.Rect{Width: 20, Height: 10}, 20, ArrangeColumns)
	if err == nil {
		t.Fatalf("expected error for insufficient space")
	}
}

func TestParseArrangement(t *testing.T) {
	if a, err := ParseArrangement(""); err != nil || a != ArrangeGrid {
		t.Fatalf("empty arrangement = %q, %v", a, err)
	}
	if _, err := ParseArrangement("spiral"); err == nil {
		t.Fatalf("expected error for unknown arrangement")
	}
}
