package core

import (
	"fmt"
	"time"
)

// Commit-time tag heuristics, evaluated against the document's shape.
// The engine does not validate domain semantics: these probes treat
// well-known keys as advisory and back off when absent.

const roundMilestone = 10

func (e *Engine) autoTags(doc interface{}, existing []string, now time.Time) []string {
	tags := make([]string, 0, 4)
	m, ok := doc.(map[string]interface{})
	if !ok {
		return tags
	}

	if round, ok := numberField(m, "round", "currentRound", "turn"); ok {
		r := int64(round)
		if r > 0 && r%roundMilestone == 0 {
			tags = append(tags, fmt.Sprintf("round-%d", r))
		}
	}

	if phase, ok := m["gamePhase"].(string); ok && phase == "ended" {
		tags = append(tags, "game-end")
	} else if winner, ok := m["winner"]; ok && winner != nil {
		tags = append(tags, "game-end")
	}

	if players, ok := m["players"].([]interface{}); ok {
		for _, p := range players {
			player, ok := p.(map[string]interface{})
			if !ok {
				continue
			}
			if money, ok := numberField(player, "money", "cash"); ok && money <= 0 {
				tags = append(tags, "bankruptcy")
				break
			}
		}
	}

	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		tags = append(tags, "weekend-save")
	default:
	}

	// a caller-requested tag may collide with a heuristic one
	kept := tags[:0]
	for _, t := range tags {
		if !contains(existing, t) {
			kept = append(kept, t)
		}
	}
	return kept
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// numberField fetches the first present key as a number.
// JSON-decoded documents carry float64, in-memory ones may carry ints.
func numberField(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := m[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		case int32:
			return float64(n), true
		case int64:
			return float64(n), true
		case uint64:
			return float64(n), true
		}
	}
	return 0, false
}
