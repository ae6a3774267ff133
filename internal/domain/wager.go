package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WagerStatus tracks the lifecycle of a wager or one of its legs.
type WagerStatus string

const (
	StatusPending  WagerStatus = "pending"
	StatusWon      WagerStatus = "won"
	StatusLost     WagerStatus = "lost"
	StatusPush     WagerStatus = "push"
	StatusVoid     WagerStatus = "void"
	StatusCanceled WagerStatus = "canceled"
	StatusError    WagerStatus = "error"
)

// Terminal reports whether the status permits no further settlement mutation.
func (s WagerStatus) Terminal() bool {
	switch s {
	case StatusWon, StatusLost, StatusPush, StatusVoid, StatusCanceled:
		return true
	}
	return false
}

// BetType distinguishes single, accumulator, and system wagers.
type BetType string

const (
	BetSingle      BetType = "single"
	BetAccumulator BetType = "accumulator"
	BetSystem      BetType = "system"
)

// Leg is one selection within a wager. Market fields arrive raw from the
// adapter layer; the market package derives the canonical view at
// settlement time.
type Leg struct {
	ID             uuid.UUID        `json:"id"`
	MatchID        string           `json:"match_id"`
	SelectionID    string           `json:"selection_id"`
	MarketID       *int             `json:"market_id,omitempty"`
	MarketName     string           `json:"market_name"`
	CriterionLabel string           `json:"criterion_label,omitempty"`
	OutcomeLabel   string           `json:"outcome_label"`
	Participant    string           `json:"participant,omitempty"`
	ParticipantID  *int64           `json:"participant_id,omitempty"`
	OfferTypeID    *int             `json:"offer_type_id,omitempty"`
	Line           *decimal.Decimal `json:"line,omitempty"`
	RawLine        *int64           `json:"raw_line,omitempty"`
	Odds           decimal.Decimal  `json:"odds"`
}

type legAlias Leg

// UnmarshalJSON decodes a leg while tolerating the legacy field names some
// upstream feeds still send: marketId for market_id, marketName and
// market_description for market_name, and handicapLine/handicapRaw for
// line/raw_line. The canonical key wins when both forms are present.
func (l *Leg) UnmarshalJSON(data []byte) error {
	aux := struct {
		*legAlias
		LegacyMarketID   *int             `json:"marketId"`
		LegacyMarketName string           `json:"marketName"`
		LegacyMarketDesc string           `json:"market_description"`
		LegacyLine       *decimal.Decimal `json:"handicapLine"`
		LegacyRawLine    *int64           `json:"handicapRaw"`
	}{legAlias: (*legAlias)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if l.MarketID == nil {
		l.MarketID = aux.LegacyMarketID
	}
	if l.MarketName == "" {
		l.MarketName = aux.LegacyMarketName
	}
	if l.MarketName == "" {
		l.MarketName = aux.LegacyMarketDesc
	}
	if l.Line == nil {
		l.Line = aux.LegacyLine
	}
	if l.RawLine == nil {
		l.RawLine = aux.LegacyRawLine
	}
	return nil
}

// SystemConfig describes a system bet: every size-k combination of the
// legs, for each k in Sizes, is settled as an independent accumulator
// staked at UnitStake, and the system wins when at least MinWins of them
// win. When Sizes is empty a recognized preset Name supplies the sizes.
type SystemConfig struct {
	Name      string          `json:"name,omitempty"`
	Sizes     []int           `json:"sizes,omitempty"`
	MinWins   int             `json:"min_wins"`
	UnitStake decimal.Decimal `json:"unit_stake"`
}

type systemConfigAlias SystemConfig

// UnmarshalJSON accepts the older single "size" form alongside "sizes".
func (c *SystemConfig) UnmarshalJSON(data []byte) error {
	aux := struct {
		*systemConfigAlias
		LegacySize int `json:"size"`
	}{systemConfigAlias: (*systemConfigAlias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(c.Sizes) == 0 && aux.LegacySize > 0 {
		c.Sizes = []int{aux.LegacySize}
	}
	return nil
}

// systemPresets maps preset names to their combination sizes and the leg
// count each is defined on.
var systemPresets = map[string]struct {
	sizes []int
	legs  int
}{
	"trixie":   {sizes: []int{2, 3}, legs: 3},
	"patent":   {sizes: []int{1, 2, 3}, legs: 3},
	"yankee":   {sizes: []int{2, 3, 4}, legs: 4},
	"lucky 15": {sizes: []int{1, 2, 3, 4}, legs: 4},
}

// CombinationSizes returns the sizes to generate combinations at: the
// explicit list when present, otherwise the preset named by Name. Nil when
// neither names a size.
func (c *SystemConfig) CombinationSizes() []int {
	if len(c.Sizes) > 0 {
		return c.Sizes
	}
	if p, ok := systemPresets[strings.ToLower(strings.TrimSpace(c.Name))]; ok {
		return p.sizes
	}
	return nil
}

// PresetLegCount returns the leg count the named preset is defined on, or 0
// for an unrecognized name.
func PresetLegCount(name string) int {
	if p, ok := systemPresets[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p.legs
	}
	return 0
}

// Wager is a placed bet: one leg for singles, two or more for combinations.
// Stake is the full stake for single/accumulator wagers; system wagers stake
// SystemConfig.UnitStake per generated combination instead.
type Wager struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	BetType   BetType         `json:"bet_type"`
	Legs      []Leg           `json:"legs"`
	Stake     decimal.Decimal `json:"stake"`
	Status    WagerStatus     `json:"status"`
	System    *SystemConfig   `json:"system,omitempty"`
	Payout    decimal.Decimal `json:"payout"`
	Reason    string          `json:"reason,omitempty"`
	PlacedAt  time.Time       `json:"placed_at"`
	SettledAt *time.Time      `json:"settled_at,omitempty"`
}

// IsCombination reports whether the wager has multiple legs.
func (w *Wager) IsCombination() bool { return len(w.Legs) > 1 }

// TotalStake is the amount deducted at placement. A system wager stakes
// UnitStake on every combination it generates across all of its sizes.
func (w *Wager) TotalStake() decimal.Decimal {
	if w.BetType == BetSystem && w.System != nil {
		combos := 0
		for _, k := range w.System.CombinationSizes() {
			combos += CombinationCount(len(w.Legs), k)
		}
		return w.System.UnitStake.Mul(decimal.NewFromInt(int64(combos)))
	}
	return w.Stake
}

// CombinationCount returns C(n, k) without overflow for the small n used by
// system bets.
func CombinationCount(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	c := 1
	for i := 1; i <= k; i++ {
		c = c * (n - k + i) / i
	}
	return c
}
