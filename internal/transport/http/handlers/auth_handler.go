package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/RCDNC/swipedeck/internal/pkg/validate"
	authsvc "github.com/RCDNC/swipedeck/internal/services/auth"
	"github.com/RCDNC/swipedeck/internal/transport/http/dto"
	httperrors "github.com/RCDNC/swipedeck/internal/transport/http/errors"
)

// DemoAuthHandler issues access tokens for demo user ids only. Real users get
// their tokens from the identity provider in front of the gateway.
type DemoAuthHandler struct {
	tokens  *authsvc.JWTManager
	pattern *regexp.Regexp
}

func NewDemoAuthHandler(tokens *authsvc.JWTManager, pattern *regexp.Regexp) *DemoAuthHandler {
	return &DemoAuthHandler{tokens: tokens, pattern: pattern}
}

func (h *DemoAuthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.tokens == nil || h.pattern == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "demo auth is unavailable")
		return
	}

	var req dto.DemoTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if !validate.Identifier(userID) {
		writeBadRequest(w, "VALIDATION_ERROR", "user_id is required")
		return
	}
	if !h.pattern.MatchString(userID) {
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
			Code:    "NOT_A_DEMO_USER",
			Message: "only demo user ids can request a token here",
		})
		return
	}

	token, expiresAt, err := h.tokens.GenerateAccessToken(userID, true)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to issue token")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC(),
		UserID:      userID,
	})
}
