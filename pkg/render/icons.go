package render

import (
	"github.com/paulmach/orb"

	"campusnav/pkg/campus"
)

// IconKind is the category of a node marker.
type IconKind string

const (
	IconRestroom IconKind = "wc"
	IconMen      IconKind = "wc_man"
	IconWomen    IconKind = "wc_woman"
	IconEntrance IconKind = "entrance"
)

// Tint returns the marker colour of the icon.
func (k IconKind) Tint() string {
	switch k {
	case IconRestroom:
		return "#9B27AF"
	case IconMen:
		return "#4A90E2"
	case IconWomen:
		return "#E91E63"
	case IconEntrance:
		return "#4CAF50"
	}
	return "#000000"
}

// Icon is a category marker at a node position in output space.
type Icon struct {
	Kind IconKind
	At   orb.Point
	Tint string
}

// IconFor picks the icon for n. A node tagged for both sexes gets the shared
// restroom icon; otherwise men's, women's and entrance icons are checked in
// that order.
func IconFor(n *campus.IndoorNode) (IconKind, bool) {
	man, woman := n.Has(campus.WCMan), n.Has(campus.WCWoman)
	switch {
	case man && woman:
		return IconRestroom, true
	case man:
		return IconMen, true
	case woman:
		return IconWomen, true
	case n.Has(campus.MainEntrance):
		return IconEntrance, true
	}
	return "", false
}
