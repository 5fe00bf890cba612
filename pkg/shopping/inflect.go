package shopping

import "strings"

// Inflector maps a unit lemma and a count to the grammatically correct
// unit string ("cup" vs "cups"). The lexicon is built once and the
// inflector is injected into the renderer rather than used as ambient
// global state.
type Inflector struct {
	plurals   map[string]string
	invariant map[string]bool
}

func NewInflector() *Inflector {
	return &Inflector{
		plurals: map[string]string{
			"cup":        "cups",
			"tablespoon": "tablespoons",
			"teaspoon":   "teaspoons",
			"pinch":      "pinches",
			"slice":      "slices",
			"clove":      "cloves",
			"piece":      "pieces",
			"can":        "cans",
			"jar":        "jars",
			"bunch":      "bunches",
			"leaf":       "leaves",
			"loaf":       "loaves",
			"stick":      "sticks",
			"drop":       "drops",
			"head":       "heads",
			"stalk":      "stalks",
		},
		// Measurement abbreviations do not inflect.
		invariant: map[string]bool{
			"g":   true,
			"kg":  true,
			"mg":  true,
			"ml":  true,
			"l":   true,
			"pcs": true,
			"tbsp": true,
			"tsp":  true,
			"oz":   true,
			"lb":   true,
		},
	}
}

// Inflect returns the unit form agreeing with count. Unknown units get
// a best-effort English plural.
func (i *Inflector) Inflect(unitLemma string, count int) string {
	lemma := strings.ToLower(strings.TrimSpace(unitLemma))
	if lemma == "" {
		return unitLemma
	}
	if count == 1 || i.invariant[lemma] {
		return lemma
	}
	if plural, ok := i.plurals[lemma]; ok {
		return plural
	}
	if strings.HasSuffix(lemma, "s") || strings.HasSuffix(lemma, "x") ||
		strings.HasSuffix(lemma, "ch") || strings.HasSuffix(lemma, "sh") {
		return lemma + "es"
	}
	return lemma + "s"
}
