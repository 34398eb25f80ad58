// Package rating owns the appropriateness-rating tier mapping. Every place
// that derives a tier from a numeric rating must call TierFor; the thresholds
// are defined nowhere else.
package rating

// Tier is the display bucket for a 1-9 appropriateness rating.
type Tier string

const (
	UsuallyAppropriate    Tier = "Usually Appropriate"
	MayBeAppropriate      Tier = "May Be Appropriate"
	UsuallyNotAppropriate Tier = "Usually Not Appropriate"
)

const (
	usuallyAppropriateMin = 7
	mayBeAppropriateMin   = 4
)

// TierFor maps a numeric rating to its tier: >=7 usually appropriate,
// 4-6 may be appropriate, <4 usually not appropriate.
func TierFor(r float64) Tier {
	switch {
	case r >= usuallyAppropriateMin:
		return UsuallyAppropriate
	case r >= mayBeAppropriateMin:
		return MayBeAppropriate
	default:
		return UsuallyNotAppropriate
	}
}
