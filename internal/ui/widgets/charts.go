package widgets

import (
	"math"
	"strings"
)

// Bar renders v in [0, 1] as a filled bar of width cells. Any non-zero value
// fills at least one cell.
func Bar(v float64, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	fill := int(math.Round(v * float64(width)))

	if v > 0 && fill == 0 {
		fill = 1
	}
	if fill > width {
		fill = width
	}

	return strings.Repeat("█", fill) + strings.Repeat("░", width-fill)
}

// Percent is Bar for a 0-100 percentage.
func Percent(p float64, width int) string { return Bar(p/100, width) }
