package layout

import (
	"fmt"
	"math"

	"github.com/1broseidon/winstack/internal/platform"
)

// Arrangement selects how tiled windows share the limit rect.
type Arrangement string

const (
	ArrangeGrid        Arrangement = "grid"
	ArrangeColumns     Arrangement = "columns"
	ArrangeRows        Arrangement = "rows"
	ArrangeMasterStack Arrangement = "master_stack"
)

// ParseArrangement validates an arrangement name; empty means grid.
func ParseArrangement(s string) (Arrangement, error) {
	switch a := Arrangement(s); a {
	case "":
		return ArrangeGrid, nil
	case ArrangeGrid, ArrangeColumns, ArrangeRows, ArrangeMasterStack:
		return a, nil
	default:
		return "", fmt.Errorf("unknown tile arrangement %q", s)
	}
}

// CalculateGrid determines the grid dimensions for n windows: the square
// root rounded up for columns, then as many rows as needed.
func CalculateGrid(n int) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = int(math.Ceil(float64(n) / float64(cols)))
	return rows, cols
}

// masterPercent is the share of the width given to the first window in a
// master-stack arrangement.
const masterPercent = 55

// CalculatePositions lays n windows out in area with gap pixels around
// every cell. In a grid a short last row stretches to fill the width.
func CalculatePositions(n int, area platform.Rect, gap int, arrange Arrangement) ([]platform.Rect, error) {
	if n <= 0 {
		return nil, nil
	}

	var rows, cols int
	switch arrange {
	case ArrangeGrid, "":
		rows, cols = CalculateGrid(n)
	case ArrangeColumns:
		rows, cols = 1, n
	case ArrangeRows:
		rows, cols = n, 1
	case ArrangeMasterStack:
		return masterStack(n, area, gap)
	default:
		return nil, fmt.Errorf("unsupported tile arrangement: %q", arrange)
	}

	slotW := (area.Width - (cols+1)*gap) / cols
	slotH := (area.Height - (rows+1)*gap) / rows
	if slotW <= 0 || slotH <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for tiling: area=%dx%d rows=%d cols=%d gap=%d",
			area.Width, area.Height, rows, cols, gap,
		)
	}

	lastRow := rows - 1
	inLastRow := n - lastRow*cols
	lastW := slotW
	if inLastRow < cols {
		lastW = (area.Width - (inLastRow+1)*gap) / inLastRow
	}

	out := make([]platform.Rect, n)
	for i := range n {
		row, col := i/cols, i%cols
		w := slotW
		if row == lastRow {
			w = lastW
		}
		out[i] = platform.Rect{
			X:      area.X + gap + col*(w+gap),
			Y:      area.Y + gap + row*(slotH+gap),
			Width:  w,
			Height: slotH,
		}
	}
	return out, nil
}

func masterStack(n int, area platform.Rect, gap int) ([]platform.Rect, error) {
	height := area.Height - 2*gap
	if n == 1 {
		return []platform.Rect{{
			X:      area.X + gap,
			Y:      area.Y + gap,
			Width:  area.Width - 2*gap,
			Height: height,
		}}, nil
	}

	masterW := area.Width*masterPercent/100 - gap
	stackX := area.X + masterW + 2*gap
	stackW := area.Width - masterW - 3*gap
	stack := n - 1
	cellH := (height - (stack-1)*gap) / stack
	if masterW <= 0 || stackW <= 0 || cellH <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for master-stack tiling: area=%dx%d windows=%d gap=%d",
			area.Width, area.Height, n, gap,
		)
	}

	out := make([]platform.Rect, n)
	out[0] = platform.Rect{X: area.X + gap, Y: area.Y + gap, Width: masterW, Height: height}
	for i := range stack {
		out[i+1] = platform.Rect{
			X:      stackX,
			Y:      area.Y + gap + i*(cellH+gap),
			Width:  stackW,
			Height: cellH,
		}
	}
	return out, nil
}
