package simbench

// Rating bounds for generated players.
const (
	minRating = 40.0
	maxRating = 99.0
)

// PercentageMultiplier turns ratios into percentages.
const PercentageMultiplier = 100

// squadShape lists the position tags of a generated eleven.
var squadShape = []string{"GK", "DEF", "DEF", "DEF", "DEF", "MID", "MID", "MID", "FWD", "FWD", "FWD"}
