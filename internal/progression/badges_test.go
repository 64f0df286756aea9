package progression

import "testing"

func TestBadgesForCoins(t *testing.T) {
	if got := BadgesForCoins(0); len(got) != 1 || got[0].Title != "Новичок" {
		t.Fatalf("expected only the starter badge at 0 coins, got %v", got)
	}

	// 25 coins is level 3: starter + activist.
	got := BadgesForCoins(25)
	if len(got) != 2 || got[1].Level != 3 {
		t.Fatalf("expected two badges at level 3, got %v", got)
	}

	// Max level holds the whole table.
	if got := BadgesForCoins(1600); len(got) != 5 {
		t.Fatalf("expected all 5 badges at max level, got %d", len(got))
	}
}

func TestNewlyUnlocked(t *testing.T) {
	if _, ok := NewlyUnlocked(2, 2); ok {
		t.Fatalf("no badge expected without a level change")
	}
	if _, ok := NewlyUnlocked(3, 2); ok {
		t.Fatalf("no badge expected on a level drop")
	}

	b, ok := NewlyUnlocked(2, 3)
	if !ok || b.Level != 3 {
		t.Fatalf("expected the level-3 badge, got %v ok=%v", b, ok)
	}

	// Jump across several thresholds returns the lowest crossed badge.
	b, ok = NewlyUnlocked(2, 8)
	if !ok || b.Level != 3 {
		t.Fatalf("expected the lowest crossed badge (level 3), got %v ok=%v", b, ok)
	}

	if _, ok := NewlyUnlocked(1, 2); ok {
		t.Fatalf("level 2 unlocks nothing")
	}
}
