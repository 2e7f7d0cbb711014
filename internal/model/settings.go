package model

// Goal is the family-wide target everyone's quest payouts feed into.
// GoalCurrent only ever increases; redemptions and box losses never
// pull it back down.
type Goal struct {
	Title   string  `json:"title"`
	Target  float64 `json:"target"`
	Current float64 `json:"current"`
}

// Fraction returns progress toward the target clamped to [0, 1].
// A zero target reads as no progress rather than a division blowup.
func (g Goal) Fraction() float64 {
	if g.Target <= 0 {
		return 0
	}
	f := g.Current / g.Target
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
