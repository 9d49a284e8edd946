// internal/cleaning/colors.go
package cleaning

import (
	"strings"
)

// validColorWords is the closed set of English color vocabulary (fashion
// terms included) that bypasses advisor suggestion even in all caps. All
// entries lower-case.
var validColorWords = map[string]bool{}

func init() {
	for _, w := range []string{
		"black", "white", "red", "blue", "green", "yellow", "orange", "purple",
		"pink", "brown", "gray", "grey", "navy", "ivory", "cream", "beige",
		"tan", "gold", "silver", "bronze", "copper", "champagne", "nude",
		"blush", "mauve", "lilac", "lavender", "violet", "plum", "eggplant",
		"magenta", "fuchsia", "rose", "coral", "salmon", "peach", "apricot",
		"rust", "terracotta", "burgundy", "maroon", "wine", "merlot",
		"crimson", "scarlet", "cherry", "berry", "raspberry", "strawberry",
		"watermelon", "cranberry", "sangria", "garnet", "ruby", "brick",
		"teal", "turquoise", "aqua", "cyan", "peacock", "sapphire", "cobalt",
		"royal", "indigo", "denim", "periwinkle", "cornflower", "sky", "ice",
		"powder", "slate", "steel", "charcoal", "graphite", "smoke", "ash",
		"pewter", "gunmetal", "platinum", "pearl", "opal", "frost", "snow",
		"emerald", "jade", "forest", "hunter", "olive", "sage", "moss",
		"mint", "pistachio", "lime", "chartreuse", "kelly", "fern", "pine",
		"seafoam", "spruce", "juniper", "basil", "clover", "kiwi", "apple",
		"mustard", "honey", "amber", "butter", "lemon", "canary", "daffodil",
		"sunflower", "marigold", "saffron", "ochre", "wheat", "sand", "camel",
		"khaki", "taupe", "mocha", "coffee", "espresso", "chocolate", "cocoa",
		"caramel", "toffee", "hazelnut", "chestnut", "walnut", "mahogany",
		"cognac", "brandy", "whiskey", "sienna", "umber", "clay", "adobe",
		"melon", "tangerine", "mango", "papaya", "persimmon", "pumpkin",
		"carrot", "ginger", "cinnamon", "paprika", "chili", "cayenne",
		"orchid", "iris", "wisteria", "heather", "thistle", "amethyst",
		"grape", "mulberry", "aubergine", "raisin", "fig", "currant",
		"flamingo", "bubblegum", "carnation", "petal", "ballet", "dusty",
		"rosewood", "cameo", "shell", "oyster", "linen", "bone", "eggshell",
		"vanilla", "buttercream", "porcelain", "alabaster", "chalk", "dove",
		"mist", "fog", "cloud", "storm", "midnight", "twilight", "dusk",
		"ocean", "marine", "nautical", "lagoon", "caribbean", "riviera",
		"azure", "cerulean", "capri", "malibu", "pacific", "atlantic",
		"stone", "granite", "cement", "concrete", "silver-gray", "nickel",
		"blossom", "petunia", "tulip", "poppy", "dahlia", "peony", "zinnia",
		"multi", "rainbow", "print", "floral", "leopard", "animal", "ombre",
	} {
		validColorWords[w] = true
	}
}

// knownColorCodes is the closed set of abbreviation codes that are
// candidate input for advisor suggestion.
var knownColorCodes = map[string]bool{}

func init() {
	for _, c := range []string{
		"BLK", "BK", "BLCK", "WHT", "WT", "WHI", "IVY", "IVR", "IV", "CRM",
		"NVY", "NV", "NAV", "RD", "RED", "BRG", "BURG", "BUR", "WNE", "MRN",
		"BLU", "BL", "RYL", "ROY", "RBL", "LBL", "SKY", "TRQ", "TEAL", "TL",
		"GRN", "GN", "EMR", "EM", "HTR", "FOR", "OLV", "SAG", "MNT", "LIM",
		"YLW", "YEL", "YL", "GLD", "GD", "MUS", "CHM", "CHAMP", "CPG",
		"PNK", "PK", "BLSH", "BSH", "FCH", "FUS", "HPK", "LPK", "ROS", "CRL",
		"PCH", "SLM", "PUR", "PRP", "PPL", "LAV", "LIL", "PLM", "EGG", "ORC",
		"ORG", "ORN", "OR", "TGR", "RST", "COP", "BRZ", "SLV", "SIL", "SV",
		"GRY", "GRE", "GY", "CHAR", "CHR", "SLT", "STL", "PWT", "SMK",
		"BRN", "BWN", "BR", "TPE", "TAN", "CML", "KHK", "MOC", "CHO", "COF",
		"NUD", "ND", "BGE", "SND", "MVE", "MAU", "DRS", "DST",
	} {
		knownColorCodes[c] = true
	}
}

// NormalizeColor trims, collapses internal whitespace, strips whitespace
// around "/" and "-", and single-spaces around "&".
func NormalizeColor(color string) string {
	s := strings.Join(strings.Fields(strings.TrimSpace(color)), " ")
	s = collapseAround(s, "/")
	s = collapseAround(s, "-")
	s = spaceAround(s, "&")
	return s
}

func collapseAround(s, sep string) string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, sep)
}

func spaceAround(s, sep string) string {
	if !strings.Contains(s, sep) {
		return s
	}
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, " "+sep+" ")
}

// TitleCaseColor lowercases then capitalizes the first letter of each token,
// splitting on space, "-", "/" and "&".
func TitleCaseColor(color string) string {
	lower := strings.ToLower(color)
	var b strings.Builder
	capitalizeNext := true
	for _, r := range lower {
		switch r {
		case ' ', '-', '/', '&':
			capitalizeNext = true
			b.WriteRune(r)
		default:
			if capitalizeNext {
				b.WriteString(strings.ToUpper(string(r)))
				capitalizeNext = false
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// IsValidColorName reports whether every token of the color is ordinary
// color vocabulary, in which case no advisor suggestion is needed.
func IsValidColorName(color string) bool {
	tokens := splitColorTokens(color)
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !validColorWords[strings.ToLower(t)] {
			return false
		}
	}
	return true
}

// IsKnownColorCode reports whether the value looks like one of the known
// abbreviation codes worth asking the advisor about.
func IsKnownColorCode(color string) bool {
	tokens := splitColorTokens(color)
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !knownColorCodes[strings.ToUpper(t)] {
			return false
		}
	}
	return true
}

// LooksLikeAbbreviation flags short all-caps consonant-heavy values that are
// not valid color words; these are advisor candidates even when not in the
// known-code list.
func LooksLikeAbbreviation(color string) bool {
	s := strings.TrimSpace(color)
	if len(s) < 2 || len(s) > 6 {
		return false
	}
	if s != strings.ToUpper(s) {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return !validColorWords[strings.ToLower(s)]
}

func splitColorTokens(color string) []string {
	return strings.FieldsFunc(color, func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == '&'
	})
}
