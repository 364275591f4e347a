package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// resolveCategory maps user input onto a catalog name. Matching ignores case
// so "food" is stored as "Food". Unknown names are rejected with the closest
// catalog entry as a hint.
func resolveCategory(input string, catalog []string) (string, error) {
	for _, name := range catalog {
		if name == input {
			return name, nil
		}
	}
	for _, name := range catalog {
		if strings.EqualFold(name, input) {
			return name, nil
		}
	}

	reason := fmt.Sprintf("category %q is not a known category", input)
	if s := suggestCategory(input, catalog); s != "" {
		reason += fmt.Sprintf(", did you mean %q?", s)
	}
	return "", invalid("category", reason, ErrUnknownCategory)
}

// suggestCategory returns the closest catalog name, or "" when nothing is close
func suggestCategory(input string, catalog []string) string {
	if input == "" || len(catalog) == 0 {
		return ""
	}

	// abbreviations and dropped letters, e.g. "trnsp" for "Transport"
	ranks := fuzzy.RankFindNormalizedFold(input, catalog)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	// typos, e.g. "Fodo" for "Food"
	best, bestDistance := "", -1
	lower := strings.ToLower(input)
	for _, name := range catalog {
		d := fuzzy.LevenshteinDistance(lower, strings.ToLower(name))
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = name, d
		}
	}

	maxDistance := len(input) / 3
	if maxDistance < 2 {
		maxDistance = 2
	}
	if bestDistance > maxDistance {
		return ""
	}
	return best
}
