// Package level derives a member's level, title, and progress from
// lifetime XP. Everything here is a pure function of xp and the curve
// constant.
package level

import "math"

// DefaultCurve is the canonical k in level(xp) = floor(sqrt(xp)/k)+1.
const DefaultCurve = 2.0

// titles runs levels 1 through 9; anyone past the table carries
// titleBeyond for good.
var titles = [...]string{
	"Fresh Recruit",
	"Helping Hand",
	"Chore Apprentice",
	"Task Tamer",
	"Quest Runner",
	"Household Hero",
	"Streak Sage",
	"House Legend",
	"Grand Questmaster",
}

const titleBeyond = "Eternal Questmaster"

// Engine computes levels on a fixed curve.
type Engine struct {
	k float64
}

// NewEngine returns an Engine with the given curve constant. A
// non-positive k falls back to the default.
func NewEngine(k float64) Engine {
	if k <= 0 {
		k = DefaultCurve
	}
	return Engine{k: k}
}

// Level maps xp to a level, minimum 1. Monotonic non-decreasing in xp.
func (e Engine) Level(xp float64) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(xp)/e.k)) + 1
}

// Threshold returns the xp at which level n+1 begins: (k*n)^2.
// Threshold(0) is 0, the floor of level 1.
func (e Engine) Threshold(n int) float64 {
	if n <= 0 {
		return 0
	}
	v := e.k * float64(n)
	return v * v
}

// Title returns the title for a level, falling into the terminal title
// past the table.
func (e Engine) Title(lvl int) string {
	if lvl < 1 {
		lvl = 1
	}
	if lvl > len(titles) {
		return titleBeyond
	}
	return titles[lvl-1]
}

// Progress is the fraction of the way from the current level's floor
// to the next level's floor, clamped to [0, 1].
func (e Engine) Progress(xp float64) float64 {
	if xp < 0 {
		xp = 0
	}
	lvl := e.Level(xp)
	lo := e.Threshold(lvl - 1)
	hi := e.Threshold(lvl)
	if hi <= lo {
		return 0
	}
	p := (xp - lo) / (hi - lo)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
