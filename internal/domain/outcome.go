package domain

// Side identifies a team (or the draw) in a match.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
	SideDraw Side = "draw"
	SideNone Side = ""
)

// EventType classifies a discrete in-match event.
type EventType string

const (
	EventGoal         EventType = "goal"
	EventCard         EventType = "card"
	EventRedCard      EventType = "red_card"
	EventCorner       EventType = "corner"
	EventFoul         EventType = "foul"
	EventShotOnTarget EventType = "shot_on_target"
)

// MatchEvent is one discrete occurrence within a match, used by
// time-windowed and player-prop markets.
type MatchEvent struct {
	Type     EventType `json:"type"`
	Minute   int       `json:"minute"`
	Player   string    `json:"player,omitempty"`
	PlayerID *int64    `json:"player_id,omitempty"`
	Side     Side      `json:"side,omitempty"`
}

// MatchOutcome is the authoritative state of a match as delivered by the
// result feed. Read-only to the settlement core. Half-time scores are
// optional; markets that need them void when they are absent.
type MatchOutcome struct {
	MatchID      string       `json:"match_id"`
	HomeScore    int          `json:"home_score"`
	AwayScore    int          `json:"away_score"`
	HTHomeScore  *int         `json:"ht_home_score,omitempty"`
	HTAwayScore  *int         `json:"ht_away_score,omitempty"`
	Minute       int          `json:"minute"`
	Finished     bool         `json:"finished"`
	Events       []MatchEvent `json:"events,omitempty"`
}

// TotalGoals returns the full-time goal count.
func (o *MatchOutcome) TotalGoals() int { return o.HomeScore + o.AwayScore }

// Winner returns the side ahead at full time, or SideDraw.
func (o *MatchOutcome) Winner() Side {
	switch {
	case o.HomeScore > o.AwayScore:
		return SideHome
	case o.AwayScore > o.HomeScore:
		return SideAway
	}
	return SideDraw
}

// HalfScores returns the goal counts for the requested half (1 or 2).
// ok is false when half-time data is unavailable.
func (o *MatchOutcome) HalfScores(half int) (home, away int, ok bool) {
	if o.HTHomeScore == nil || o.HTAwayScore == nil {
		return 0, 0, false
	}
	switch half {
	case 1:
		return *o.HTHomeScore, *o.HTAwayScore, true
	case 2:
		return o.HomeScore - *o.HTHomeScore, o.AwayScore - *o.HTAwayScore, true
	}
	return 0, 0, false
}

// TeamScore returns the goals scored by the given side at full time.
func (o *MatchOutcome) TeamScore(side Side) int {
	if side == SideAway {
		return o.AwayScore
	}
	return o.HomeScore
}
