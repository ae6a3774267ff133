package market

import "strings"

// CatalogMarket is one market of a match's display catalog, as delivered by
// the read side.
type CatalogMarket struct {
	MarketID    int    `json:"market_id"`
	Description string `json:"market_description"`
	OddsCount   int    `json:"odds_count"`
}

// Category is a display bucket of the classified catalog.
type Category struct {
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	OddsCount int             `json:"odds_count"`
	Markets   []CatalogMarket `json:"markets,omitempty"`
}

// ClassifiedCatalog is the result of bucketing a match's markets.
type ClassifiedCatalog struct {
	Categories []Category `json:"categories"`
	TotalOdds  int        `json:"total_odds"`
}

// categoryDef mirrors the identifier technique: numeric ids first, keyword
// phrases second, first matching category wins, leftovers land in "others".
type categoryDef struct {
	ID       string
	Label    string
	IDs      []int
	Keywords []string
}

var categoryDefs = []categoryDef{
	{ID: "full-time", Label: "Full Time",
		IDs:      []int{1, 52, 13, 14, 80},
		Keywords: []string{"full time", "match result", "1x2", "winner", "moneyline", "final result"}},
	{ID: "player-shots-on-target", Label: "Player Shots on Target",
		Keywords: []string{"shots on target"}},
	{ID: "player-cards", Label: "Player Cards",
		Keywords: []string{"yellow card", "red card", "booking", "cards"}},
	{ID: "goal-scorer", Label: "Goal Scorer",
		IDs:      []int{247, 11},
		Keywords: []string{"goal scorer", "goalscorer", "first goal", "last goal", "anytime scorer", "scorer"}},
	{ID: "player-goals", Label: "Player Goals",
		IDs:      []int{18, 19},
		Keywords: []string{"player goals", "hat trick", "goals scored"}},
	{ID: "half-time", Label: "Half Time",
		IDs:      []int{31, 97, 49, 28, 15, 16, 45, 124, 26},
		Keywords: []string{"1st half", "2nd half", "halftime", "first half", "second half", "half"}},
	{ID: "corners", Label: "Corners",
		Keywords: []string{"corner"}},
	{ID: "three-way-handicap", Label: "3 Way Handicap",
		Keywords: []string{"3 way handicap", "three way handicap"}},
	{ID: "asian-lines", Label: "Asian Lines",
		IDs:      []int{6, 26},
		Keywords: []string{"asian handicap", "asian lines", "asian"}},
	{ID: "specials", Label: "Specials",
		IDs:      []int{44, 45, 124, 46, 40, 101, 266},
		Keywords: []string{"odd", "even", "win to nil", "both halves", "special"}},
}

// Classify buckets a match's market catalog into display categories using
// the same id-then-keyword technique as the identifier. Categories with no
// markets are omitted; "others" collects everything unmatched.
func Classify(catalog []CatalogMarket) ClassifiedCatalog {
	buckets := make(map[string]*Category, len(categoryDefs)+1)
	order := make([]string, 0, len(categoryDefs)+1)
	for _, def := range categoryDefs {
		buckets[def.ID] = &Category{ID: def.ID, Label: def.Label}
		order = append(order, def.ID)
	}
	buckets["others"] = &Category{ID: "others", Label: "Others"}
	order = append(order, "others")

	total := 0
	for _, m := range catalog {
		id := classifyOne(m)
		b := buckets[id]
		b.Markets = append(b.Markets, m)
		b.OddsCount += m.OddsCount
		total += m.OddsCount
	}

	out := ClassifiedCatalog{TotalOdds: total}
	out.Categories = append(out.Categories, Category{ID: "all", Label: "All", OddsCount: total})
	for _, id := range order {
		if b := buckets[id]; len(b.Markets) > 0 {
			out.Categories = append(out.Categories, *b)
		}
	}
	return out
}

func classifyOne(m CatalogMarket) string {
	desc := strings.ToLower(m.Description)
	for _, def := range categoryDefs {
		for _, id := range def.IDs {
			if m.MarketID == id {
				return def.ID
			}
		}
		for _, kw := range def.Keywords {
			if strings.Contains(desc, kw) {
				return def.ID
			}
		}
	}
	return "others"
}
