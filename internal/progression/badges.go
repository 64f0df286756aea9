package progression

import "strings"

type Badge struct {
	Level int
	Title string
	Icon  string
}

// badgeTable lists which levels unlock a badge, ordered by level.
var badgeTable = []Badge{
	{Level: 1, Title: "Новичок", Icon: "🟢"},
	{Level: 3, Title: "Активист", Icon: "🔸"},
	{Level: 5, Title: "Про", Icon: "🟣"},
	{Level: 7, Title: "Ментор", Icon: "🛠️"},
	{Level: 9, Title: "Легенда", Icon: "🏆"},
}

// BadgesForCoins returns every badge whose level threshold is reached by
// the current balance.
func BadgesForCoins(coins int) []Badge {
	level := LevelByCoins(coins).Level
	var got []Badge
	for _, b := range badgeTable {
		if level >= b.Level {
			got = append(got, b)
		}
	}
	return got
}

// NewlyUnlocked returns the first badge crossed when the level changed
// from before to after, or false if none was crossed. Used to decide
// whether an approval notification should mention a new badge.
func NewlyUnlocked(levelBefore, levelAfter int) (Badge, bool) {
	if levelAfter <= levelBefore {
		return Badge{}, false
	}
	for _, b := range badgeTable {
		if levelBefore < b.Level && b.Level <= levelAfter {
			return b, true
		}
	}
	return Badge{}, false
}

// BadgesLine is the short profile representation: icons, then titles.
func BadgesLine(coins int) string {
	got := BadgesForCoins(coins)
	if len(got) == 0 {
		return "—"
	}
	icons := make([]string, len(got))
	titles := make([]string, len(got))
	for i, b := range got {
		icons[i] = b.Icon
		titles[i] = b.Title
	}
	return strings.Join(icons, " ") + "  " + strings.Join(titles, ", ")
}
