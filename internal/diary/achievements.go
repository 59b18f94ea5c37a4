package diary

// Achievement is a badge derived from the log. It is never stored.
type Achievement struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Desc     string `json:"desc"`
	Icon     string `json:"icon"`
	Unlocked bool   `json:"unlocked"`
}

// Rule unlocks an achievement once Count(log) reaches Threshold. Count must only
// grow when entries are added to the log.
type Rule struct {
	ID        string
	Title     string
	Desc      string
	Icon      string
	Threshold int
	Count     func(log []FinishedRecipe) int
}

func total(log []FinishedRecipe) int { return len(log) }

func inCategory(category string) func([]FinishedRecipe) int {
	return func(log []FinishedRecipe) int {
		n := 0
		for _, f := range log {
			if f.Category == category {
				n++
			}
		}
		return n
	}
}

// Rules is the achievement table, in display order.
var Rules = []Rule{
	{ID: "first_cook", Title: "Junior Chef", Desc: "Selesaikan resep pertamamu", Icon: "restaurant", Threshold: 1, Count: total},
	{ID: "five_cooks", Title: "Steady Cook", Desc: "Selesaikan 5 resep", Icon: "flame", Threshold: 5, Count: total},
	{ID: "seafood_master", Title: "Seafood Master", Desc: "Masak 3 resep Seafood", Icon: "fish", Threshold: 3, Count: inCategory("Seafood")},
	{ID: "vegetarian_warrior", Title: "Vegetarian Warrior", Desc: "Masak 3 resep Vegetarian", Icon: "leaf", Threshold: 3, Count: inCategory("Vegetarian")},
	{ID: "dessert_king", Title: "Dessert King", Desc: "Masak 3 resep Dessert", Icon: "ice-cream", Threshold: 3, Count: inCategory("Dessert")},
}

// ComputeAchievements evaluates Rules against log.
func ComputeAchievements(log []FinishedRecipe) []Achievement {
	return Evaluate(Rules, log)
}

// Evaluate evaluates rules against log.
func Evaluate(rules []Rule, log []FinishedRecipe) []Achievement {
	out := make([]Achievement, 0, len(rules))
	for _, r := range rules {
		out = append(out, Achievement{
			ID:       r.ID,
			Title:    r.Title,
			Desc:     r.Desc,
			Icon:     r.Icon,
			Unlocked: r.Count(log) >= r.Threshold,
		})
	}
	return out
}

// UnlockedCount counts unlocked achievements.
func UnlockedCount(achievements []Achievement) int {
	n := 0
	for _, a := range achievements {
		if a.Unlocked {
			n++
		}
	}
	return n
}
