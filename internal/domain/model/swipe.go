package model

import (
	"time"

	"github.com/RCDNC/swipedeck/internal/domain/enums"
)

type SwipeRecord struct {
	ID        int64               `json:"id"`
	UserID    string              `json:"user_id"`
	TargetID  string              `json:"target_id"`
	Decision  enums.SwipeDecision `json:"decision"`
	Matched   bool                `json:"matched"`
	MatchID   string              `json:"match_id,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}
