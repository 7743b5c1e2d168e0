package analytics

import (
	"sort"
	"strings"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

// Classification tables shared by the distribution, heatmap and volatility
// builders. Order matters: it is the priority order for formats and the
// axis order for heatmaps.
var (
	FormatPriority = []string{
		"commander",
		"pioneer",
		"modern",
		"standard",
		"legacy",
		"vintage",
		"historic",
		"pauper",
		"alchemy",
	}

	ColorBuckets = []string{"W", "U", "B", "R", "G", ColorMulti, ColorColorless}

	RarityTiers = []string{"mythic", "rare", "uncommon", "common", "special"}
)

const (
	ColorMulti     = "Multi"
	ColorColorless = "Colorless"

	bucketOther = "Other"
	keyOther    = "other"
)

var colorLabels = map[string]string{
	"W":            "White",
	"U":            "Blue",
	"B":            "Black",
	"R":            "Red",
	"G":            "Green",
	ColorMulti:     "Multicolor",
	ColorColorless: "Colorless",
}

// PrimaryColorBucket collapses a color identity to one bucket: Colorless when
// empty, the color itself when mono-colored, Multi otherwise.
func PrimaryColorBucket(identity []string) string {
	seen := make(map[string]struct{}, len(identity))
	for _, c := range identity {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		seen[c] = struct{}{}
	}

	switch len(seen) {
	case 0:
		return ColorColorless
	case 1:
		for c := range seen {
			if isManaColor(c) {
				return c
			}
		}
		return ColorColorless
	default:
		return ColorMulti
	}
}

func isManaColor(c string) bool {
	switch c {
	case "W", "U", "B", "R", "G":
		return true
	}
	return false
}

func isPlayable(legality string) bool {
	switch strings.ToLower(legality) {
	case "legal", "restricted":
		return true
	}
	return false
}

// PrimaryFormat picks the first format in FormatPriority where the card is
// legal or restricted. Formats outside the priority list are considered in
// alphabetical order. Returns nil when the card is playable nowhere.
func PrimaryFormat(legalities map[string]string) *string {
	normalized := make(map[string]string, len(legalities))
	for format, legality := range legalities {
		normalized[strings.ToLower(strings.TrimSpace(format))] = legality
	}

	for _, format := range FormatPriority {
		if isPlayable(normalized[format]) {
			f := format
			return &f
		}
	}

	others := make([]string, 0, len(normalized))
	for format := range normalized {
		others = append(others, format)
	}
	sort.Strings(others)
	for _, format := range others {
		if isPlayable(normalized[format]) {
			f := format
			return &f
		}
	}
	return nil
}

// NormalizeRarity maps Scryfall rarities onto the fixed tiers; anything else
// (bonus, empty, typos) becomes "other".
func NormalizeRarity(rarity string) string {
	r := strings.ToLower(strings.TrimSpace(rarity))
	for _, tier := range RarityTiers {
		if r == tier {
			return r
		}
	}
	return keyOther
}

func isPriorityFormat(format string) bool {
	for _, f := range FormatPriority {
		if f == format {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func colorLabel(bucket string) string {
	if label, ok := colorLabels[bucket]; ok {
		return label
	}
	return bucket
}

func finishLabel(f models.Finish) string {
	return capitalize(strings.ToLower(string(f)))
}
