package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
		errMsg  string
	}{
		{"valid email", "user@example.com", false, ""},
		{"valid email with dots", "first.last@example.co.uk", false, ""},
		{"valid email with plus", "user+tag@example.com", false, ""},
		{"valid email with dash", "user-name@exam-ple.com", false, ""},
		{"empty string", "", true, "email is required"},
		{"no at sign", "userexample.com", true, "invalid email format"},
		{"no domain", "user@", true, "invalid email format"},
		{"no user", "@example.com", true, "invalid email format"},
		{"double at", "user@@example.com", true, "invalid email format"},
		{"no tld", "user@example", true, "invalid email format"},
		{"single char tld", "user@example.c", true, "invalid email format"},
		{"spaces", "user @example.com", true, "invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateCurrency(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		wantErr  bool
	}{
		{"valid EUR", "EUR", false},
		{"valid USD", "USD", false},
		{"valid GBP", "GBP", false},
		{"lowercase", "eur", true},
		{"mixed case", "Eur", true},
		{"too short", "EU", true},
		{"too long", "EURO", true},
		{"empty", "", true},
		{"numbers", "123", true},
		{"with space", "EU ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCurrency(tt.currency)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid currency code")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func validLeg() Leg {
	return Leg{
		ID:           uuid.New(),
		MatchID:      "match-1",
		SelectionID:  "sel-1",
		MarketName:   "Match Result",
		OutcomeLabel: "1",
		Odds:         decimal.RequireFromString("2.10"),
	}
}

func TestValidateLeg(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateLeg(validLeg()))
	})

	t.Run("missing match id", func(t *testing.T) {
		leg := validLeg()
		leg.MatchID = ""
		err := ValidateLeg(leg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "match id")
	})

	t.Run("missing selection id", func(t *testing.T) {
		leg := validLeg()
		leg.SelectionID = ""
		err := ValidateLeg(leg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "selection id")
	})

	t.Run("missing outcome label", func(t *testing.T) {
		leg := validLeg()
		leg.OutcomeLabel = ""
		err := ValidateLeg(leg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outcome label")
	})

	t.Run("odds exactly one", func(t *testing.T) {
		leg := validLeg()
		leg.Odds = decimal.NewFromInt(1)
		err := ValidateLeg(leg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "odds must be greater than 1.0")
	})

	t.Run("odds below one", func(t *testing.T) {
		leg := validLeg()
		leg.Odds = decimal.RequireFromString("0.5")
		require.Error(t, ValidateLeg(leg))
	})

	t.Run("empty market name allowed", func(t *testing.T) {
		leg := validLeg()
		leg.MarketName = ""
		require.NoError(t, ValidateLeg(leg))
	})
}

func TestValidateWager(t *testing.T) {
	base := func(betType BetType, legCount int) Wager {
		legs := make([]Leg, legCount)
		for i := range legs {
			legs[i] = validLeg()
		}
		return Wager{
			ID:      uuid.New(),
			UserID:  uuid.New(),
			BetType: betType,
			Legs:    legs,
			Stake:   decimal.NewFromInt(10),
		}
	}

	t.Run("valid single", func(t *testing.T) {
		require.NoError(t, ValidateWager(base(BetSingle, 1)))
	})

	t.Run("valid accumulator", func(t *testing.T) {
		require.NoError(t, ValidateWager(base(BetAccumulator, 3)))
	})

	t.Run("valid system", func(t *testing.T) {
		w := base(BetSystem, 3)
		w.System = &SystemConfig{Sizes: []int{2}, MinWins: 1, UnitStake: decimal.NewFromInt(5)}
		require.NoError(t, ValidateWager(w))
	})

	t.Run("valid system with size list", func(t *testing.T) {
		w := base(BetSystem, 3)
		w.System = &SystemConfig{Sizes: []int{1, 2, 3}, MinWins: 1, UnitStake: decimal.NewFromInt(5)}
		require.NoError(t, ValidateWager(w))
	})

	t.Run("valid trixie by preset name", func(t *testing.T) {
		w := base(BetSystem, 3)
		w.System = &SystemConfig{Name: "Trixie", MinWins: 1, UnitStake: decimal.NewFromInt(5)}
		require.NoError(t, ValidateWager(w))
	})

	t.Run("preset with wrong leg count", func(t *testing.T) {
		w := base(BetSystem, 3)
		w.System = &SystemConfig{Name: "Yankee", MinWins: 1, UnitStake: decimal.NewFromInt(5)}
		err := ValidateWager(w)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "yankee requires exactly 4 legs")
	})

	t.Run("missing user", func(t *testing.T) {
		w := base(BetSingle, 1)
		w.UserID = uuid.Nil
		err := ValidateWager(w)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "user id")
	})

	t.Run("no legs", func(t *testing.T) {
		w := base(BetSingle, 0)
		require.Error(t, ValidateWager(w))
	})

	t.Run("bad leg reported with index", func(t *testing.T) {
		w := base(BetAccumulator, 2)
		w.Legs[1].SelectionID = ""
		err := ValidateWager(w)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "leg 1")
	})

	t.Run("single with two legs", func(t *testing.T) {
		w := base(BetSingle, 2)
		require.Error(t, ValidateWager(w))
	})

	t.Run("accumulator with one leg", func(t *testing.T) {
		w := base(BetAccumulator, 1)
		require.Error(t, ValidateWager(w))
	})

	t.Run("zero stake", func(t *testing.T) {
		w := base(BetSingle, 1)
		w.Stake = decimal.Zero
		err := ValidateWager(w)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stake must be positive")
	})

	t.Run("system without config", func(t *testing.T) {
		w := base(BetSystem, 3)
		require.Error(t, ValidateWager(w))
	})

	t.Run("system without sizes or preset", func(t *testing.T) {
		w := base(BetSystem, 3)
		w.System = &SystemConfig{Name: "mystery", MinWins: 1, UnitStake: decimal.NewFromInt(5)}
		require.Error(t, ValidateWager(w))
	})

	t.Run("system size exceeds leg count", func(t *testing.T) {
		w := base(BetSystem, 3)
		w.System = &SystemConfig{Sizes: []int{4}, MinWins: 1, UnitStake: decimal.NewFromInt(5)}
		require.Error(t, ValidateWager(w))
	})

	t.Run("system full cover size allowed", func(t *testing.T) {
		w := base(BetSystem, 3)
		w.System = &SystemConfig{Sizes: []int{3}, MinWins: 1, UnitStake: decimal.NewFromInt(5)}
		require.NoError(t, ValidateWager(w))
	})

	t.Run("system duplicate size", func(t *testing.T) {
		w := base(BetSystem, 3)
		w.System = &SystemConfig{Sizes: []int{2, 2}, MinWins: 1, UnitStake: decimal.NewFromInt(5)}
		err := ValidateWager(w)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "more than once")
	})

	t.Run("system min wins zero", func(t *testing.T) {
		w := base(BetSystem, 3)
		w.System = &SystemConfig{Sizes: []int{2}, MinWins: 0, UnitStake: decimal.NewFromInt(5)}
		require.Error(t, ValidateWager(w))
	})

	t.Run("system zero unit stake", func(t *testing.T) {
		w := base(BetSystem, 3)
		w.System = &SystemConfig{Sizes: []int{2}, MinWins: 1, UnitStake: decimal.Zero}
		require.Error(t, ValidateWager(w))
	})

	t.Run("unknown bet type", func(t *testing.T) {
		w := base(BetType("parlay"), 2)
		err := ValidateWager(w)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown bet type")
	})
}

// --- Wager Tests ---

func TestWagerStatus_Terminal(t *testing.T) {
	tests := []struct {
		status WagerStatus
		want   bool
	}{
		{StatusPending, false},
		{StatusError, false},
		{StatusWon, true},
		{StatusLost, true},
		{StatusPush, true},
		{StatusVoid, true},
		{StatusCanceled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Terminal())
		})
	}
}

func TestWager_TotalStake(t *testing.T) {
	t.Run("single uses stake", func(t *testing.T) {
		w := Wager{BetType: BetSingle, Stake: decimal.NewFromInt(25)}
		assert.True(t, w.TotalStake().Equal(decimal.NewFromInt(25)))
	})

	t.Run("system multiplies unit stake by combinations", func(t *testing.T) {
		// 3 legs, size 2 -> 3 doubles at 5 each.
		w := Wager{
			BetType: BetSystem,
			Legs:    []Leg{validLeg(), validLeg(), validLeg()},
			System:  &SystemConfig{Sizes: []int{2}, MinWins: 1, UnitStake: decimal.NewFromInt(5)},
		}
		assert.True(t, w.TotalStake().Equal(decimal.NewFromInt(15)))
	})

	t.Run("system sums all sizes", func(t *testing.T) {
		// Trixie: 3 doubles plus the treble at 5 each.
		w := Wager{
			BetType: BetSystem,
			Legs:    []Leg{validLeg(), validLeg(), validLeg()},
			System:  &SystemConfig{Name: "Trixie", MinWins: 1, UnitStake: decimal.NewFromInt(5)},
		}
		assert.True(t, w.TotalStake().Equal(decimal.NewFromInt(20)))
	})
}

func TestSystemConfig_CombinationSizes(t *testing.T) {
	tests := []struct {
		name string
		cfg  SystemConfig
		want []int
	}{
		{"explicit sizes win", SystemConfig{Name: "Trixie", Sizes: []int{2}}, []int{2}},
		{"trixie", SystemConfig{Name: "trixie"}, []int{2, 3}},
		{"patent", SystemConfig{Name: "Patent"}, []int{1, 2, 3}},
		{"yankee", SystemConfig{Name: " Yankee "}, []int{2, 3, 4}},
		{"lucky 15", SystemConfig{Name: "Lucky 15"}, []int{1, 2, 3, 4}},
		{"unknown name", SystemConfig{Name: "mystery"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.CombinationSizes())
		})
	}
}

func TestSystemConfig_UnmarshalLegacySize(t *testing.T) {
	var cfg SystemConfig
	require.NoError(t, json.Unmarshal([]byte(`{"size": 2, "min_wins": 1, "unit_stake": "5"}`), &cfg))
	assert.Equal(t, []int{2}, cfg.Sizes)

	cfg = SystemConfig{}
	require.NoError(t, json.Unmarshal([]byte(`{"size": 2, "sizes": [2, 3], "min_wins": 1, "unit_stake": "5"}`), &cfg))
	assert.Equal(t, []int{2, 3}, cfg.Sizes, "sizes wins over legacy size")
}

func TestLeg_UnmarshalLegacyAliases(t *testing.T) {
	t.Run("legacy keys fill canonical fields", func(t *testing.T) {
		var l Leg
		require.NoError(t, json.Unmarshal([]byte(`{
			"match_id": "m1",
			"selection_id": "s1",
			"marketId": 6,
			"marketName": "Asian Handicap",
			"handicapLine": "-1.5",
			"outcome_label": "home",
			"odds": "1.9"
		}`), &l))
		require.NotNil(t, l.MarketID)
		assert.Equal(t, 6, *l.MarketID)
		assert.Equal(t, "Asian Handicap", l.MarketName)
		require.NotNil(t, l.Line)
		assert.True(t, l.Line.Equal(decimal.NewFromFloat(-1.5)))
	})

	t.Run("market_description as last resort name", func(t *testing.T) {
		var l Leg
		require.NoError(t, json.Unmarshal([]byte(`{"market_description": "Total Goals", "odds": "2.0"}`), &l))
		assert.Equal(t, "Total Goals", l.MarketName)
	})

	t.Run("canonical keys win", func(t *testing.T) {
		var l Leg
		require.NoError(t, json.Unmarshal([]byte(`{
			"market_id": 1,
			"marketId": 6,
			"market_name": "Match Result",
			"marketName": "Asian Handicap",
			"line": "2.5",
			"handicapLine": "-1.5",
			"odds": "2.0"
		}`), &l))
		require.NotNil(t, l.MarketID)
		assert.Equal(t, 1, *l.MarketID)
		assert.Equal(t, "Match Result", l.MarketName)
		assert.True(t, l.Line.Equal(decimal.NewFromFloat(2.5)))
	})

	t.Run("handicapRaw fills raw_line", func(t *testing.T) {
		var l Leg
		require.NoError(t, json.Unmarshal([]byte(`{"handicapRaw": 2500, "odds": "2.0"}`), &l))
		require.NotNil(t, l.RawLine)
		assert.Equal(t, int64(2500), *l.RawLine)
	})
}

func TestCombinationCount(t *testing.T) {
	tests := []struct {
		n, k, want int
	}{
		{3, 2, 3},
		{4, 2, 6},
		{4, 3, 4},
		{5, 2, 10},
		{8, 4, 70},
		{3, 3, 1},
		{3, 0, 1},
		{3, 4, 0},
		{3, -1, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CombinationCount(tt.n, tt.k), "C(%d,%d)", tt.n, tt.k)
	}
}

// --- MatchOutcome Tests ---

func TestMatchOutcome_Winner(t *testing.T) {
	tests := []struct {
		name       string
		home, away int
		want       Side
	}{
		{"home win", 2, 1, SideHome},
		{"away win", 0, 3, SideAway},
		{"draw", 1, 1, SideDraw},
		{"goalless draw", 0, 0, SideDraw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := MatchOutcome{HomeScore: tt.home, AwayScore: tt.away}
			assert.Equal(t, tt.want, o.Winner())
		})
	}
}

func TestMatchOutcome_HalfScores(t *testing.T) {
	ht := func(h, a int) (*int, *int) { return &h, &a }

	t.Run("first half", func(t *testing.T) {
		o := MatchOutcome{HomeScore: 3, AwayScore: 1}
		o.HTHomeScore, o.HTAwayScore = ht(1, 0)
		home, away, ok := o.HalfScores(1)
		require.True(t, ok)
		assert.Equal(t, 1, home)
		assert.Equal(t, 0, away)
	})

	t.Run("second half is difference", func(t *testing.T) {
		o := MatchOutcome{HomeScore: 3, AwayScore: 1}
		o.HTHomeScore, o.HTAwayScore = ht(1, 0)
		home, away, ok := o.HalfScores(2)
		require.True(t, ok)
		assert.Equal(t, 2, home)
		assert.Equal(t, 1, away)
	})

	t.Run("missing half-time data", func(t *testing.T) {
		o := MatchOutcome{HomeScore: 3, AwayScore: 1}
		_, _, ok := o.HalfScores(1)
		assert.False(t, ok)
	})

	t.Run("invalid half", func(t *testing.T) {
		o := MatchOutcome{HomeScore: 3, AwayScore: 1}
		o.HTHomeScore, o.HTAwayScore = ht(1, 0)
		_, _, ok := o.HalfScores(3)
		assert.False(t, ok)
	})
}

func TestMatchOutcome_TeamScore(t *testing.T) {
	o := MatchOutcome{HomeScore: 2, AwayScore: 5}
	assert.Equal(t, 2, o.TeamScore(SideHome))
	assert.Equal(t, 5, o.TeamScore(SideAway))
	assert.Equal(t, 7, o.TotalGoals())
}

// --- AppError Tests ---

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := ErrNotFound("wager", "abc-123")
		assert.Equal(t, "NOT_FOUND: wager abc-123 not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrInternal("database error", cause)
		assert.Contains(t, err.Error(), "INTERNAL_ERROR")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrInternal("wrapped", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestErrorFactories(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"ErrNotFound", ErrNotFound("wager", "123"), "NOT_FOUND", 404},
		{"ErrConflict", ErrConflict("already exists"), "CONFLICT", 409},
		{"ErrValidation", ErrValidation("bad input"), "VALIDATION_ERROR", 400},
		{"ErrUnauthorized", ErrUnauthorized("no token"), "UNAUTHORIZED", 401},
		{"ErrForbidden", ErrForbidden("not allowed"), "FORBIDDEN", 403},
		{"ErrInsufficientBalance", ErrInsufficientBalance(), "INSUFFICIENT_BALANCE", 400},
		{"ErrInternal", ErrInternal("oops", nil), "INTERNAL_ERROR", 500},
		{"ErrUnresolvableMarket", ErrUnresolvableMarket("Weird Market"), "UNRESOLVABLE_MARKET", 422},
		{"ErrIncompleteMatchData", ErrIncompleteMatchData("m1", "no half-time score"), "INCOMPLETE_MATCH_DATA", 422},
		{"ErrArithmeticInconsistency", ErrArithmeticInconsistency("half line tie"), "ARITHMETIC_INCONSISTENCY", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
