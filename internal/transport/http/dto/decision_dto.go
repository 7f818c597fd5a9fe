package dto

import (
	"github.com/RCDNC/swipedeck/internal/domain/model"
	"github.com/RCDNC/swipedeck/internal/services/swipes"
)

type DecisionRequest struct {
	CandidateID string `json:"candidate_id"`
	Decision    string `json:"decision"`
}

type DecisionResponse struct {
	Outcome model.SwipeOutcome `json:"outcome"`
	View    swipes.View        `json:"view"`
}

type HistoryResponse struct {
	Items []model.SwipeRecord `json:"items"`
}
