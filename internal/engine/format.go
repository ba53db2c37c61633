package engine

import (
	"fmt"
	"math"
	"strconv"
)

var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB"}

// FormatBytes renders b in the largest unit up to TiB, e.g. "1.5 GiB".
func FormatBytes(b int64) string {
	if b <= 0 {
		return "0 B"
	}
	i := 0
	for v := b; v >= 1024 && i < len(byteUnits)-1; v /= 1024 {
		i++
	}
	return oneDecimal(float64(b)/math.Pow(1024, float64(i))) + " " + byteUnits[i]
}

// FormatBytesRaw divides by 1024 while the value is at least 1024 and falls
// through to PiB, e.g. "1.5KiB". Used for summed totals.
func FormatBytesRaw(b int64) string {
	v := float64(b)
	for _, u := range byteUnits {
		if v < 1024 {
			return oneDecimal(v) + u
		}
		v /= 1024
	}
	return oneDecimal(v) + "PiB"
}

// FormatCores renders millicores as cores with one decimal.
func FormatCores(millicores int64) string {
	t := roundDiv(millicores, 100)
	sign := ""
	if t < 0 {
		sign, t = "-", -t
	}
	return fmt.Sprintf("%s%d.%d", sign, t/10, t%10)
}

// Utilization returns used/allocatable as a percentage with one decimal,
// rounded half up. It is 0 whenever allocatable is not positive and never
// leaves [0, 100].
func Utilization(used, allocatable int64) float64 {
	if allocatable <= 0 || used <= 0 {
		return 0
	}
	if used >= allocatable {
		return 100
	}
	var permille int64
	if allocatable <= math.MaxInt64/2000 {
		permille = (used*2000 + allocatable) / (2 * allocatable)
	} else {
		permille = int64(math.Floor(float64(used)/float64(allocatable)*1000 + 0.5))
	}
	return float64(permille) / 10
}

// roundDiv divides n by d > 0, rounding half away from zero.
func roundDiv(n, d int64) int64 {
	if n < 0 {
		return -((-n + d/2) / d)
	}
	return (n + d/2) / d
}

// oneDecimal rounds half away from zero at the first decimal.
func oneDecimal(v float64) string {
	r := math.Round(v*10) / 10
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

func coresDisplay(millicores int64) string { return FormatCores(millicores) + " cores" }

func countDisplay(n int64) string { return strconv.FormatInt(n, 10) }
