// Package format renders numbers for display. Nothing here feeds back into
// distance comparisons or ranking.
package format

import (
	"fmt"
	"math"
	"strconv"
)

// Round rounds v to the given number of decimal places.
func Round(v float64, decimals int) float64 {
	if decimals < 0 {
		decimals = 0
	}
	m := math.Pow(10, float64(decimals))
	return math.Round(v*m) / m
}

// Coord formats a render-space coordinate with one decimal place, dropping a
// trailing ".0".
func Coord(v float64) string {
	return strconv.FormatFloat(Round(v, 1), 'f', -1, 64)
}

// Distance formats a walking distance: whole meters below one kilometer,
// kilometers with one decimal above.
func Distance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	return fmt.Sprintf("%s km", strconv.FormatFloat(Round(meters/1000, 1), 'f', 1, 64))
}

// Duration formats a walking time given in minutes. Anything under a minute
// shows as "<1 min".
func Duration(minutes float64) string {
	if minutes < 1 {
		return "<1 min"
	}
	total := int(math.Round(minutes))
	if total < 60 {
		return fmt.Sprintf("%d min", total)
	}
	return fmt.Sprintf("%d h %d min", total/60, total%60)
}
