package model

import "github.com/RCDNC/swipedeck/internal/domain/enums"

type CandidateFilters struct {
	MinAge        int                    `json:"min_age"`
	MaxAge        int                    `json:"max_age"`
	MaxDistanceKM int                    `json:"max_distance_km"`
	Gender        enums.GenderPreference `json:"gender"`
	OnlineOnly    bool                   `json:"online_only"`
	VerifiedOnly  bool                   `json:"verified_only"`
	Interests     []string               `json:"interests"`
	Limit         int                    `json:"limit"`
}
