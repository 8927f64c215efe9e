package navigation

// WalkingSpeed is the average walking speed in meters per minute.
const WalkingSpeed = 80.0

// Badge is a short ranking label attached to a direction.
type Badge string

const (
	BadgeNone         Badge = ""
	BadgeFastest      Badge = "Fastest"
	BadgeMostlyIndoor Badge = "Mostly Indoor"
	BadgeRecommended  Badge = "Recommended"
	BadgeBalanced     Badge = "Balanced"
)

// Direction is one ranked route. It is built fresh per call and never
// modified afterwards.
type Direction struct {
	Steps                 []Step
	TotalDistanceMeters   float64
	OutdoorDistanceMeters float64
	Badge                 Badge
}

// EstimatedTimeMinutes is the walking time at WalkingSpeed.
func (d Direction) EstimatedTimeMinutes() float64 {
	return d.TotalDistanceMeters / WalkingSpeed
}
