// Package progression derives a user's level and badges from the coin
// balance. Everything here is a pure function of the balance, no state
// is stored besides the coins themselves.
package progression

import (
	"math"
	"strings"
)

// LevelThresholds holds the coin floor of each level, 1-indexed:
// level 1 starts at 0 coins, level 2 at 10 and so on.
var LevelThresholds = []int{0, 10, 25, 50, 100, 200, 400, 700, 1100, 1600}

type LevelInfo struct {
	Level           int
	CurrentFloor    int
	NextFloor       int // 0 at max level, check HasNext
	HasNext         bool
	ProgressPercent int
	ToNext          int
}

// LevelByCoins returns the level whose floor is the highest threshold not
// exceeding coins. Negative balances are treated as zero.
func LevelByCoins(coins int) LevelInfo {
	if coins < 0 {
		coins = 0
	}

	idx := 0
	for i, th := range LevelThresholds {
		if coins >= th {
			idx = i
		} else {
			break
		}
	}

	info := LevelInfo{
		Level:        idx + 1,
		CurrentFloor: LevelThresholds[idx],
	}

	if idx+1 >= len(LevelThresholds) {
		info.ProgressPercent = 100
		return info
	}

	info.HasNext = true
	info.NextFloor = LevelThresholds[idx+1]

	span := info.NextFloor - info.CurrentFloor
	percent := 100
	if span > 0 {
		percent = int(math.Round(100 * float64(coins-info.CurrentFloor) / float64(span)))
	}
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	info.ProgressPercent = percent

	toNext := info.NextFloor - coins
	if toNext < 0 {
		toNext = 0
	}
	info.ToNext = toNext
	return info
}

// ProgressBar renders a text scale like ▰▰▰▰▱▱▱▱▱▱ for profile cards.
func ProgressBar(percent int, width int) string {
	if width <= 0 {
		width = 10
	}
	filled := int(math.Round(float64(width) * float64(percent) / 100))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
}
