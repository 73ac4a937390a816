package tui

import (
	"fmt"
	"strconv"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// num prints a float compactly for the status line and the stats table.
func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func pair(x, y float64) string {
	return fmt.Sprintf("(%s, %s)", num(x), num(y))
}
