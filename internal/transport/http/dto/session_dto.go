package dto

import (
	"time"

	"github.com/RCDNC/swipedeck/internal/domain/model"
	"github.com/RCDNC/swipedeck/internal/services/swipes"
)

type CandidateFiltersRequest struct {
	MinAge        int      `json:"min_age"`
	MaxAge        int      `json:"max_age"`
	MaxDistanceKM int      `json:"max_distance_km"`
	Gender        string   `json:"gender"`
	OnlineOnly    bool     `json:"online_only"`
	VerifiedOnly  bool     `json:"verified_only"`
	Interests     []string `json:"interests"`
	Limit         int      `json:"limit"`
}

type CreateSessionRequest struct {
	Filters *CandidateFiltersRequest `json:"filters,omitempty"`
}

type LoadCandidatesRequest struct {
	Refresh bool                    `json:"refresh"`
	Filters CandidateFiltersRequest `json:"filters"`
}

type SessionResponse struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Degraded  bool        `json:"degraded,omitempty"`
	View      swipes.View `json:"view"`
}

type QuotaResponse struct {
	Quota               model.QuotaState `json:"quota"`
	LikesRemaining      int              `json:"likes_remaining"`
	SuperLikesRemaining int              `json:"super_likes_remaining"`
	RewindsRemaining    int              `json:"rewinds_remaining"`
}

type CanSubmitResponse struct {
	Decision string `json:"decision"`
	Allowed  bool   `json:"allowed"`
}
