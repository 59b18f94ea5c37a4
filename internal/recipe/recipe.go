package recipe

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxIngredients is the number of numbered ingredient slots a TheMealDB record carries.
const MaxIngredients = 20

// Ingredient is one resolved ingredient slot.
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// String renders the ingredient as "measure name".
func (i Ingredient) String() string {
	return strings.TrimSpace(i.Measure + " " + i.Name)
}

// Summary identifies a recipe wherever a full record is not needed.
type Summary struct {
	ID       string `json:"idMeal"`
	Name     string `json:"strMeal"`
	Thumb    string `json:"strMealThumb"`
	Category string `json:"strCategory"`
}

// Recipe is a TheMealDB meal record.
type Recipe struct {
	ID           string `json:"idMeal"`
	Name         string `json:"strMeal"`
	Category     string `json:"strCategory"`
	Area         string `json:"strArea"`
	Instructions string `json:"strInstructions"`
	Thumb        string `json:"strMealThumb"`
	Tags         string `json:"strTags"`
	YouTube      string `json:"strYoutube"`

	// Slots holds strIngredientN/strMeasureN at index N-1, blanks included.
	Slots [MaxIngredients]Ingredient `json:"-"`
}

// UnmarshalJSON decodes the named fields and the numbered ingredient slots.
// Slots may be absent, null or blank.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type plain Recipe
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for i := range MaxIngredients {
		p.Slots[i] = Ingredient{
			Name:    slotValue(raw, fmt.Sprintf("strIngredient%d", i+1)),
			Measure: slotValue(raw, fmt.Sprintf("strMeasure%d", i+1)),
		}
	}

	*r = Recipe(p)
	return nil
}

func slotValue(raw map[string]json.RawMessage, key string) string {
	msg, ok := raw[key]
	if !ok {
		return ""
	}
	var s *string
	if err := json.Unmarshal(msg, &s); err != nil || s == nil {
		return ""
	}
	return *s
}

// Summary returns the identifying fields of r.
func (r *Recipe) Summary() Summary {
	return Summary{ID: r.ID, Name: r.Name, Thumb: r.Thumb, Category: r.Category}
}

// Ingredients returns the non-blank ingredient slots in slot order.
func (r *Recipe) Ingredients() []Ingredient {
	var out []Ingredient
	for _, slot := range r.Slots {
		name := strings.TrimSpace(slot.Name)
		if name == "" {
			continue
		}
		out = append(out, Ingredient{Name: name, Measure: strings.TrimSpace(slot.Measure)})
	}
	return out
}

var (
	lineBreak  = regexp.MustCompile(`\r?\n`)
	sentence   = regexp.MustCompile(`\.\s+`)
	stepMarker = regexp.MustCompile(`(?i)^(\d+[\.\)\-\s]*|step\s*\d+[\.\:\-\s]*)`)
	numeric    = regexp.MustCompile(`^\d+$`)
)

// Steps segments the instructions into cleaned, ordered steps.
func (r *Recipe) Steps() []string {
	return SplitSteps(r.Instructions)
}

// SplitSteps splits instruction text on line breaks. A single line falls back to
// sentence boundaries. Leading ordinals and "step N" markers are removed, and
// fragments of two characters or fewer or made only of digits are dropped.
func SplitSteps(instructions string) []string {
	var lines []string
	for _, l := range lineBreak.Split(instructions, -1) {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	if len(lines) == 1 {
		var sentences []string
		for _, s := range sentence.Split(lines[0], -1) {
			if strings.TrimSpace(s) != "" {
				sentences = append(sentences, s)
			}
		}
		lines = sentences
	}

	var steps []string
	for _, l := range lines {
		step := strings.TrimSpace(stepMarker.ReplaceAllString(l, ""))
		if utf8.RuneCountInString(step) <= 2 || numeric.MatchString(step) {
			continue
		}
		steps = append(steps, step)
	}
	return steps
}
