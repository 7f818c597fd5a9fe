package enums

import "strings"

type SwipeDecision string

const (
	SwipeDecisionLike      SwipeDecision = "LIKE"
	SwipeDecisionDislike   SwipeDecision = "DISLIKE"
	SwipeDecisionSuperLike SwipeDecision = "SUPER_LIKE"
	SwipeDecisionRewind    SwipeDecision = "REWIND"
)

// ParseSwipeDecision accepts any casing and tolerates missing or extra
// underscores, so "superlike", "super_like" and "SUPER_LIKE" are equal.
func ParseSwipeDecision(input string) (SwipeDecision, bool) {
	value := strings.ToUpper(strings.TrimSpace(input))
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	switch value {
	case "LIKE":
		return SwipeDecisionLike, true
	case "DISLIKE", "PASS", "NOPE":
		return SwipeDecisionDislike, true
	case "SUPERLIKE":
		return SwipeDecisionSuperLike, true
	case "REWIND", "UNDO":
		return SwipeDecisionRewind, true
	default:
		return "", false
	}
}

func (d SwipeDecision) IsPositive() bool {
	return d == SwipeDecisionLike || d == SwipeDecisionSuperLike
}

// WireAction is the action name the remote API expects.
func (d SwipeDecision) WireAction() string {
	switch d {
	case SwipeDecisionLike:
		return "like"
	case SwipeDecisionDislike:
		return "dislike"
	case SwipeDecisionSuperLike:
		return "superlike"
	case SwipeDecisionRewind:
		return "rewind"
	default:
		return ""
	}
}
