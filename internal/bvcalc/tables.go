package bvcalc

import "math"

// TMM returns the target movement modifier for the given movement points.
func TMM(mp int) int {
	switch {
	case mp <= 2:
		return 0
	case mp <= 4:
		return 1
	case mp <= 6:
		return 2
	case mp <= 9:
		return 3
	case mp <= 17:
		return 4
	case mp <= 24:
		return 5
	default:
		return 6
	}
}

// DefensiveFactor returns 1 + TMM/10
func DefensiveFactor(tmm int) float64 {
	return 1.0 + float64(tmm)/10.0
}

// speedMP is run MP plus half the jump MP, rounded down.
func speedMP(runMP, jumpMP int) int {
	return runMP + jumpMP/2
}

// SpeedFactor is the offensive speed multiplier, rounded to two places.
// It never drops below 1.0 and has no upper bound.
func SpeedFactor(runMP, jumpMP int) float64 {
	mp := speedMP(runMP, jumpMP)
	if mp <= 5 {
		return 1.0
	}
	sf := math.Pow(1.0+float64(mp-5)/10.0, 1.2)
	return math.Round(sf*100) / 100
}

const legacySpeedFactorCap = 2.24

// LegacySpeedFactor is SpeedFactor capped at 2.24, as used by the
// heat-unaware offensive rating.
func LegacySpeedFactor(runMP, jumpMP int) float64 {
	return math.Min(SpeedFactor(runMP, jumpMP), legacySpeedFactorCap)
}

// RunMP derives running MP from walking MP.
func RunMP(walkMP int) int {
	return int(math.Ceil(float64(walkMP) * 1.5))
}

// structurePoints per location by tonnage: center torso, side torso, arm, leg.
// The head always has 3.
var structurePoints = map[int][4]int{
	10: {4, 3, 1, 2}, 15: {5, 4, 2, 3}, 20: {6, 5, 3, 4}, 25: {8, 6, 4, 6},
	30: {10, 7, 5, 7}, 35: {11, 8, 6, 8}, 40: {12, 10, 6, 10}, 45: {14, 11, 7, 11},
	50: {16, 12, 8, 12}, 55: {18, 13, 9, 13}, 60: {20, 14, 10, 14}, 65: {21, 15, 10, 15},
	70: {22, 15, 11, 15}, 75: {23, 16, 12, 16}, 80: {25, 17, 13, 17}, 85: {27, 18, 14, 18},
	90: {29, 19, 15, 19}, 95: {30, 20, 16, 20}, 100: {31, 21, 17, 21},
}

// StandardStructure returns the internal structure points of a unit of the
// given tonnage, per location. Quads carry leg values in all four limbs.
// Tonnages off the 5-ton grid round down to the nearest entry.
func StandardStructure(tonnage int, quad bool) map[Location]int {
	t := min(max(tonnage-tonnage%5, 10), 100)
	p := structurePoints[t]
	arm := p[2]
	if quad {
		arm = p[3]
	}
	return map[Location]int{
		Head:        3,
		CenterTorso: p[0],
		LeftTorso:   p[1],
		RightTorso:  p[1],
		LeftArm:     arm,
		RightArm:    arm,
		LeftLeg:     p[3],
		RightLeg:    p[3],
	}
}

func sumPoints(m map[Location]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}
