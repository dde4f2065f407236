package xp

import (
	"fmt"
	"sort"
)

// DefaultThresholds are the XP totals at which levels 2, 3, ... begin.
var DefaultThresholds = []int64{100, 250, 500, 1000, 2000, 3500, 5500, 8000, 11000, 15000}

// DefaultStep is the XP per level beyond the last threshold.
const DefaultStep = 5000

// Curve maps total XP to a level. Level 1 starts at 0 XP; level i+2 starts at
// Thresholds[i]. Past the last threshold a level is gained every Step XP.
type Curve struct {
	thresholds []int64
	step       int64
}

// NewCurve validates that thresholds are positive and strictly increasing, which
// keeps Level monotonic non-decreasing in total XP.
func NewCurve(thresholds []int64, step int64) (Curve, error) {
	for i, t := range thresholds {
		if t <= 0 {
			return Curve{}, fmt.Errorf("threshold %d must be > 0, got %d", i, t)
		}
		if i > 0 && t <= thresholds[i-1] {
			return Curve{}, fmt.Errorf("thresholds must increase: %d after %d", t, thresholds[i-1])
		}
	}
	if step < 0 {
		return Curve{}, fmt.Errorf("step must be >= 0, got %d", step)
	}
	return Curve{thresholds: append([]int64(nil), thresholds...), step: step}, nil
}

// DefaultCurve returns the built-in level curve.
func DefaultCurve() Curve {
	c, _ := NewCurve(DefaultThresholds, DefaultStep)
	return c
}

// Level returns the level for a total. Negative totals are level 1.
func (c Curve) Level(total int64) int {
	n := sort.Search(len(c.thresholds), func(i int) bool { return c.thresholds[i] > total })
	level := n + 1
	if n == len(c.thresholds) && n > 0 && c.step > 0 {
		level += int((total - c.thresholds[n-1]) / c.step)
	}
	return level
}

// NextLevelXP returns the total at which the next level begins, or 0 when the
// curve has no further levels.
func (c Curve) NextLevelXP(total int64) int64 {
	n := sort.Search(len(c.thresholds), func(i int) bool { return c.thresholds[i] > total })
	if n < len(c.thresholds) {
		return c.thresholds[n]
	}
	if c.step == 0 || n == 0 {
		return 0
	}
	last := c.thresholds[n-1]
	return last + ((total-last)/c.step+1)*c.step
}

// Thresholds returns a copy of the curve's thresholds.
func (c Curve) Thresholds() []int64 {
	return append([]int64(nil), c.thresholds...)
}
