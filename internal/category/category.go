// Package category holds the closed recipe-category taxonomy and the visual theme for each category.
package category

import "slices"

// Theme is the colour set a shell uses to render a category.
type Theme struct {
	Primary   string    `json:"primary"`
	Secondary string    `json:"secondary"`
	Text      string    `json:"text"`
	Gradient  [2]string `json:"gradient"`
}

var (
	green  = Theme{Primary: "#4CAF50", Secondary: "#E8F5E9", Text: "#1B5E20", Gradient: [2]string{"#4CAF50", "#2E7D32"}}
	cyan   = Theme{Primary: "#00BCD4", Secondary: "#E0F7FA", Text: "#006064", Gradient: [2]string{"#00BCD4", "#0097A7"}}
	pink   = Theme{Primary: "#E91E63", Secondary: "#FCE4EC", Text: "#880E4F", Gradient: [2]string{"#E91E63", "#C2185B"}}
	red    = Theme{Primary: "#D32F2F", Secondary: "#FFEBEE", Text: "#B71C1C", Gradient: [2]string{"#D32F2F", "#C62828"}}
	orange = Theme{Primary: "#FF9800", Secondary: "#FFF3E0", Text: "#E65100", Gradient: [2]string{"#FF9800", "#F57C00"}}
	yellow = Theme{Primary: "#FBC02D", Secondary: "#FFFDE7", Text: "#F57F17", Gradient: [2]string{"#FBC02D", "#F9A825"}}
)

// DefaultTheme is used for categories outside the taxonomy.
var DefaultTheme = Theme{Primary: "#ff7a18", Secondary: "#fdeee3", Text: "#bf5c12", Gradient: [2]string{"#ff7a18", "#ff4d00"}}

// themes maps every themed name, aliases included, to its theme.
var themes = map[string]Theme{
	"Vegetarian": green,
	"Vegan":      green,
	"Starter":    green,
	"Seafood":    cyan,
	"Dessert":    pink,
	"Sweet":      pink,
	"Beef":       red,
	"Lamb":       red,
	"Pork":       red,
	"Goat":       red,
	"Chicken":    orange,
	"Pasta":      yellow,
	"Breakfast":  yellow,
}

// allowed is the taxonomy the planner may suggest from. Sweet is a theme alias, not a
// TheMealDB category, so it is excluded.
var allowed = []string{
	"Beef", "Breakfast", "Chicken", "Dessert", "Goat", "Lamb",
	"Pasta", "Pork", "Seafood", "Starter", "Vegan", "Vegetarian",
}

// Browse lists the categories offered as filters on the home screen. "All" means no filter.
var Browse = []string{"All", "Breakfast", "Chicken", "Dessert", "Seafood", "Vegetarian"}

// Categories returns the allowed taxonomy in sorted order.
func Categories() []string {
	return slices.Clone(allowed)
}

// IsCategory reports whether name is in the taxonomy. The match is exact.
func IsCategory(name string) bool {
	_, found := slices.BinarySearch(allowed, name)
	return found
}

// ThemeFor returns the theme of a category, or DefaultTheme.
func ThemeFor(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return DefaultTheme
}
