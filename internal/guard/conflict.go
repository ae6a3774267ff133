// Package guard enforces admission rules for new wagers against a user's
// existing open wagers. Decisions are pure; callers serialize concurrent
// placements per user before consulting the guard.
package guard

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/oddsward/platform/internal/domain"
)

// Decision is the guard's verdict on one candidate wager.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	// ConflictsWith names the existing wager that blocked admission.
	ConflictsWith *domain.Wager `json:"-"`
}

func allow() Decision { return Decision{Allowed: true} }

func reject(w *domain.Wager, reason string) Decision {
	return Decision{Allowed: false, Reason: reason, ConflictsWith: w}
}

// CheckAdmission decides whether candidate may be placed alongside the
// user's open wagers. Single wagers are never restricted. A combination may
// use each match at most once, and is rejected when its selection set
// duplicates or is a strict subset of an open combination's set: such a
// wager adds correlated exposure without adding a new position. Strict
// supersets and partial overlaps are allowed.
func CheckAdmission(candidate domain.Wager, open []domain.Wager) Decision {
	if candidate.UserID == uuid.Nil {
		return reject(nil, "wager is missing user id")
	}
	for _, leg := range candidate.Legs {
		if leg.MatchID == "" {
			return reject(nil, "leg is missing match id")
		}
	}
	if !candidate.IsCombination() {
		return allow()
	}

	matches := make(map[string]struct{}, len(candidate.Legs))
	for _, leg := range candidate.Legs {
		if _, dup := matches[leg.MatchID]; dup {
			return reject(nil, fmt.Sprintf("combination uses match %s more than once", leg.MatchID))
		}
		matches[leg.MatchID] = struct{}{}
	}
	candSet := selectionSet(candidate)

	for i := range open {
		o := &open[i]
		if o.Status.Terminal() || !o.IsCombination() {
			continue
		}
		openSet := selectionSet(*o)

		switch {
		case setsEqual(candSet, openSet):
			return reject(o, fmt.Sprintf("duplicate of open wager %s", o.ID))
		case isStrictSubset(candSet, openSet):
			return reject(o, fmt.Sprintf("selections are a subset of open wager %s", o.ID))
		}
	}
	return allow()
}

// selectionSet keys a wager's legs by match and selection. Two legs on the
// same match but different selections are distinct positions.
func selectionSet(w domain.Wager) map[string]struct{} {
	set := make(map[string]struct{}, len(w.Legs))
	for _, leg := range w.Legs {
		set[leg.MatchID+":"+leg.SelectionID] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// isStrictSubset reports whether every element of a is in b and b has more.
func isStrictSubset(a, b map[string]struct{}) bool {
	if len(a) >= len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
