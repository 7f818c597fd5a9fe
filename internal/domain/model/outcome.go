package model

import (
	"time"

	"github.com/RCDNC/swipedeck/internal/domain/enums"
)

type MatchData struct {
	ID        string    `json:"id"`
	MatchedAt time.Time `json:"matched_at"`
	Message   string    `json:"message"`
}

type SwipeOutcome struct {
	Decision  enums.SwipeDecision `json:"decision"`
	Candidate Candidate           `json:"candidate"`
	Matched   bool                `json:"matched"`
	Match     *MatchData          `json:"match,omitempty"`
}
