package apihttp

import (
	"strings"
	"time"

	"github.com/RCDNC/swipedeck/internal/domain/model"
	"github.com/RCDNC/swipedeck/internal/domain/rules"
)

type candidateWire struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Age               int        `json:"age"`
	Photos            []string   `json:"photos"`
	Bio               string     `json:"bio"`
	Location          string     `json:"location"`
	DistanceKM        *float64   `json:"distance_km"`
	Gender            string     `json:"gender"`
	Interests         []string   `json:"interests"`
	Verified          bool       `json:"is_verified"`
	Premium           bool       `json:"is_premium"`
	Online            bool       `json:"is_online"`
	LastSeenAt        *time.Time `json:"last_seen_at"`
	Rating            float64    `json:"rating"`
	ProfileCompletion int        `json:"profile_completion"`
	MutualConnections int        `json:"mutual_connections"`
	MutualInterests   []string   `json:"mutual_interests"`
}

func (w candidateWire) toModel() model.Candidate {
	c := model.Candidate{
		ID:                strings.TrimSpace(w.ID),
		DisplayName:       strings.TrimSpace(w.Name),
		Age:               w.Age,
		Photos:            w.Photos,
		Bio:               w.Bio,
		Location:          w.Location,
		DistanceKM:        -1,
		Gender:            w.Gender,
		Interests:         w.Interests,
		Verified:          w.Verified,
		Premium:           w.Premium,
		Online:            w.Online,
		LastSeenAt:        w.LastSeenAt,
		Rating:            w.Rating,
		ProfileCompletion: clampPercent(w.ProfileCompletion),
		MutualConnections: w.MutualConnections,
		MutualInterests:   w.MutualInterests,
	}
	if w.DistanceKM != nil {
		c.DistanceKM = *w.DistanceKM
	}
	return c
}

type candidatesResponse struct {
	Items []candidateWire `json:"items"`
}

type swipeRequest struct {
	TargetID string `json:"target_id"`
	Action   string `json:"action"`
}

type matchWire struct {
	ID        string     `json:"id"`
	MatchedAt *time.Time `json:"matched_at"`
	Message   string     `json:"message"`
}

type quotaRemainingWire struct {
	LikesRemaining      *int `json:"likes_remaining"`
	SuperLikesRemaining *int `json:"super_likes_remaining"`
	RewindsRemaining    *int `json:"rewinds_remaining"`
}

type swipeResponse struct {
	Matched bool                `json:"matched"`
	Match   *matchWire          `json:"match"`
	Quota   *quotaRemainingWire `json:"quota"`
}

type rewindRequest struct {
	TargetID string `json:"target_id"`
}

type rewindResponse struct {
	Candidate *candidateWire `json:"candidate"`
}

// metricsResponse keeps limits as pointers so an absent field can be told
// apart from a zero limit.
type metricsResponse struct {
	LikesUsed       int        `json:"likes_used"`
	LikesLimit      *int       `json:"likes_limit"`
	SuperLikesUsed  int        `json:"super_likes_used"`
	SuperLikesLimit *int       `json:"super_likes_limit"`
	RewindsUsed     int        `json:"rewinds_used"`
	RewindsLimit    *int       `json:"rewinds_limit"`
	Premium         bool       `json:"is_premium"`
	ResetAt         *time.Time `json:"reset_at"`
}

// toModel fills every limit the response left out from the tier defaults.
func (m metricsResponse) toModel(limits rules.Limits) model.QuotaState {
	q := limits.Quota(m.Premium, time.Time{})
	q.LikesUsed = m.LikesUsed
	q.SuperLikesUsed = m.SuperLikesUsed
	q.RewindsUsed = m.RewindsUsed
	if m.LikesLimit != nil {
		q.LikesLimit = *m.LikesLimit
	}
	if m.SuperLikesLimit != nil {
		q.SuperLikesLimit = *m.SuperLikesLimit
	}
	if m.RewindsLimit != nil {
		q.RewindsLimit = *m.RewindsLimit
	}
	if m.ResetAt != nil {
		q.ResetAt = m.ResetAt.UTC()
	}
	return q.Normalized()
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
