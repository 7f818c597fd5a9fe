package model

import "time"

type Candidate struct {
	ID                string     `json:"id"`
	DisplayName       string     `json:"display_name"`
	Age               int        `json:"age"`
	Photos            []string   `json:"photos"`
	Bio               string     `json:"bio"`
	Location          string     `json:"location"`
	DistanceKM        float64    `json:"distance_km"`
	DistanceLabel     string     `json:"distance_label"`
	Gender            string     `json:"gender,omitempty"`
	Interests         []string   `json:"interests"`
	Verified          bool       `json:"verified"`
	Premium           bool       `json:"premium"`
	Online            bool       `json:"online"`
	LastSeenAt        *time.Time `json:"last_seen_at,omitempty"`
	Rating            float64    `json:"rating"`
	ProfileCompletion int        `json:"profile_completion"`
	MutualConnections int        `json:"mutual_connections"`
	MutualInterests   []string   `json:"mutual_interests"`
}

// Clone returns a deep copy so queued candidates stay immutable for callers.
func (c Candidate) Clone() Candidate {
	out := c
	out.Photos = append([]string(nil), c.Photos...)
	out.Interests = append([]string(nil), c.Interests...)
	out.MutualInterests = append([]string(nil), c.MutualInterests...)
	if c.LastSeenAt != nil {
		seen := *c.LastSeenAt
		out.LastSeenAt = &seen
	}
	return out
}
