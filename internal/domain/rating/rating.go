// Package rating implements the per-game Elo update used for team ratings.
//
// The K-factor scales with margin of victory and is damped by the rating
// gap, so blowouts by favourites move ratings less than upsets.
package rating

import "math"

// Fixed domain parameters.
const (
	Baseline      = 1505.0 // league-average rating
	HomeAdvantage = 100.0  // added to the home rating once per game
	Scale         = 400.0  // rating gap for 10:1 expected odds

	kBase        = 20.0
	movOffset    = 3.0
	movExponent  = 0.8
	kDamping     = 7.5
	kDiffScaling = 0.006
)

// Delta is the signed rating change for each side of one game.
type Delta struct {
	Home float64
	Away float64
}

// Expected returns the expected score of a side rated a against a side
// rated b.
func Expected(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/Scale))
}

// Outcome returns the actual score of each side: 1 for a win, 0 for a
// loss and 0.5 each on a tie.
func Outcome(ptsHome, ptsAway int) (home, away float64) {
	switch {
	case ptsHome > ptsAway:
		return 1, 0
	case ptsAway > ptsHome:
		return 0, 1
	default:
		return 0.5, 0.5
	}
}

// KFactor returns the update magnitude for a margin of victory mov
// (home minus away) and an adjusted rating difference eloDiff (home
// minus away). Both sides share the returned value.
func KFactor(mov, eloDiff float64) float64 {
	if mov > 0 {
		return kBase * math.Pow(mov+movOffset, movExponent) / (kDamping + kDiffScaling*eloDiff)
	}
	return kBase * math.Pow(-mov+movOffset, movExponent) / (kDamping + kDiffScaling*(-eloDiff))
}

// Update returns the rating changes for a completed game. homeRating and
// awayRating are the raw pre-game ratings; the home advantage is applied
// here and must not be added by the caller.
func Update(ptsHome, ptsAway int, homeRating, awayRating float64) Delta {
	home := homeRating + HomeAdvantage

	eHome := Expected(home, awayRating)
	eAway := 1 - eHome
	sHome, sAway := Outcome(ptsHome, ptsAway)
	k := KFactor(float64(ptsHome-ptsAway), home-awayRating)

	return Delta{
		Home: k * (sHome - eHome),
		Away: k * (sAway - eAway),
	}
}

// Regress pulls a rating a quarter of the way back toward Baseline.
func Regress(r float64) float64 {
	return r*0.75 + Baseline*0.25
}
