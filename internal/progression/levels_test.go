package progression

import "testing"

func TestLevelByCoinsBoundaries(t *testing.T) {
	cases := []struct {
		coins   int
		level   int
		percent int
		hasNext bool
	}{
		{0, 1, 0, true},
		{9, 1, 90, true},
		{10, 2, 0, true},
		{24, 2, 93, true}, // round(100*14/15)
		{25, 3, 0, true},
		{1599, 9, 100, true},
		{1600, 10, 100, false},
		{5000, 10, 100, false},
		{-3, 1, 0, true},
	}
	for _, c := range cases {
		got := LevelByCoins(c.coins)
		if got.Level != c.level {
			t.Fatalf("coins=%d: expected level %d, got %d", c.coins, c.level, got.Level)
		}
		if got.ProgressPercent != c.percent {
			t.Fatalf("coins=%d: expected %d%%, got %d%%", c.coins, c.percent, got.ProgressPercent)
		}
		if got.HasNext != c.hasNext {
			t.Fatalf("coins=%d: expected hasNext=%v, got %v", c.coins, c.hasNext, got.HasNext)
		}
	}
}

func TestLevelByCoinsToNext(t *testing.T) {
	got := LevelByCoins(9)
	if got.ToNext != 1 {
		t.Fatalf("expected 1 coin to next level, got %d", got.ToNext)
	}
	if got.CurrentFloor != 0 || got.NextFloor != 10 {
		t.Fatalf("unexpected floors: %d..%d", got.CurrentFloor, got.NextFloor)
	}

	max := LevelByCoins(1600)
	if max.HasNext {
		t.Fatalf("max level must not have a next floor")
	}
	if max.CurrentFloor != 1600 {
		t.Fatalf("expected floor 1600, got %d", max.CurrentFloor)
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0, 10); got != "▱▱▱▱▱▱▱▱▱▱" {
		t.Fatalf("unexpected empty bar: %q", got)
	}
	if got := ProgressBar(100, 10); got != "▰▰▰▰▰▰▰▰▰▰" {
		t.Fatalf("unexpected full bar: %q", got)
	}
	if got := ProgressBar(45, 10); got != "▰▰▰▰▱▱▱▱▱▱" {
		t.Fatalf("unexpected bar for 45%%: %q", got)
	}
}
