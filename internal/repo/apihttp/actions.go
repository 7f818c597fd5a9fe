package apihttp

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/RCDNC/swipedeck/internal/domain/enums"
	"github.com/RCDNC/swipedeck/internal/domain/model"
	"github.com/RCDNC/swipedeck/internal/services/swipes"
)

func (c *Client) Submit(ctx context.Context, userID, targetID string, decision enums.SwipeDecision) (swipes.ActionResult, error) {
	action := decision.WireAction()
	if action == "" || decision == enums.SwipeDecisionRewind {
		return swipes.ActionResult{}, &RequestError{Op: "submit swipe", Err: errors.New("unsupported decision " + string(decision))}
	}

	var resp swipeResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/swipes", requestOptions{userID: userID, idempotent: true}, swipeRequest{
		TargetID: strings.TrimSpace(targetID),
		Action:   action,
	}, &resp)
	if err != nil {
		return swipes.ActionResult{}, err
	}

	result := swipes.ActionResult{Matched: resp.Matched}
	if resp.Match != nil {
		result.MatchID = resp.Match.ID
		result.MatchMessage = resp.Match.Message
		result.MatchedAt = resp.Match.MatchedAt
	}
	if resp.Quota != nil {
		result.LikesRemaining = resp.Quota.LikesRemaining
		result.SuperLikesRemaining = resp.Quota.SuperLikesRemaining
		result.RewindsRemaining = resp.Quota.RewindsRemaining
	}
	return result, nil
}

func (c *Client) Rewind(ctx context.Context, userID, targetID string) (*model.Candidate, error) {
	var resp rewindResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/rewind", requestOptions{userID: userID, idempotent: true}, rewindRequest{
		TargetID: strings.TrimSpace(targetID),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Candidate == nil {
		return nil, nil
	}
	candidate := resp.Candidate.toModel()
	return &candidate, nil
}
