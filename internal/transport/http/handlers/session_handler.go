package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/RCDNC/swipedeck/internal/domain/enums"
	"github.com/RCDNC/swipedeck/internal/domain/model"
	"github.com/RCDNC/swipedeck/internal/pkg/validate"
	authsvc "github.com/RCDNC/swipedeck/internal/services/auth"
	"github.com/RCDNC/swipedeck/internal/services/sessions"
	"github.com/RCDNC/swipedeck/internal/transport/http/dto"
	httperrors "github.com/RCDNC/swipedeck/internal/transport/http/errors"
)

type SessionHandler struct {
	registry *sessions.Registry
	logger   *zap.Logger
}

func NewSessionHandler(registry *sessions.Registry, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{registry: registry, logger: logger}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req dto.CreateSessionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	var filters model.CandidateFilters
	if req.Filters != nil {
		parsed, ok := mapFilters(*req.Filters)
		if !ok {
			writeBadRequest(w, "VALIDATION_ERROR", "unsupported gender filter")
			return
		}
		filters = parsed
	}

	handle, err := h.registry.Create(r.Context(), identity.UserID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	degraded := handle.OpenErr != nil
	if req.Filters != nil {
		if err := handle.Session.LoadCandidates(r.Context(), filters, true); err != nil {
			h.logger.Warn("initial candidate load failed",
				zap.String("session_id", handle.ID),
				zap.String("user_id", identity.UserID),
				zap.Error(err),
			)
			degraded = true
		}
	}

	httperrors.Write(w, http.StatusCreated, dto.SessionResponse{
		ID:        handle.ID,
		CreatedAt: handle.CreatedAt,
		Degraded:  degraded,
		View:      handle.Session.View(),
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.session(w, r)
	if !ok {
		return
	}
	httperrors.Write(w, http.StatusOK, dto.SessionResponse{
		ID:        handle.ID,
		CreatedAt: handle.CreatedAt,
		View:      handle.Session.View(),
	})
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if err := h.registry.Delete(chi.URLParam(r, "id"), identity.UserID); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) LoadCandidates(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.LoadCandidatesRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	filters, ok := mapFilters(req.Filters)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unsupported gender filter")
		return
	}

	if err := handle.Session.LoadCandidates(r.Context(), filters, req.Refresh); err != nil {
		writeSessionError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, handle.Session.View())
}

func (h *SessionHandler) Decide(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.DecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	decision, ok := enums.ParseSwipeDecision(req.Decision)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unsupported decision")
		return
	}
	if decision != enums.SwipeDecisionRewind && !validate.Identifier(req.CandidateID) {
		writeBadRequest(w, "VALIDATION_ERROR", "candidate_id is required")
		return
	}

	outcome, err := handle.Session.SubmitDecision(r.Context(), req.CandidateID, decision)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	if _, err := handle.Session.RefillIfLow(r.Context()); err != nil {
		h.logger.Warn("refill after decision failed",
			zap.String("session_id", handle.ID),
			zap.Error(err),
		)
	}

	httperrors.Write(w, http.StatusOK, dto.DecisionResponse{
		Outcome: outcome,
		View:    handle.Session.View(),
	})
}

func (h *SessionHandler) Quota(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.session(w, r)
	if !ok {
		return
	}
	quota := handle.Session.Quota()
	httperrors.Write(w, http.StatusOK, dto.QuotaResponse{
		Quota:               quota,
		LikesRemaining:      quota.RemainingLikes(),
		SuperLikesRemaining: quota.RemainingSuperLikes(),
		RewindsRemaining:    quota.RemainingRewinds(),
	})
}

func (h *SessionHandler) CanSubmit(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.session(w, r)
	if !ok {
		return
	}
	decision, ok := enums.ParseSwipeDecision(r.URL.Query().Get("decision"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unsupported decision")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CanSubmitResponse{
		Decision: string(decision),
		Allowed:  handle.Session.CanSubmit(decision),
	})
}

func (h *SessionHandler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.session(w, r)
	if !ok {
		return
	}
	handle.Session.DismissNotice()
	httperrors.Write(w, http.StatusOK, handle.Session.View())
}

func (h *SessionHandler) authorize(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok || identity.UserID == "" {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, false
	}
	if h.registry == nil {
		writeInternal(w, "SESSION_SERVICE_UNAVAILABLE", "session service is unavailable")
		return authsvc.Identity{}, false
	}
	return identity, true
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (sessions.Handle, bool) {
	identity, ok := h.authorize(w, r)
	if !ok {
		return sessions.Handle{}, false
	}
	handle, err := h.registry.Get(chi.URLParam(r, "id"), identity.UserID)
	if err != nil {
		writeSessionError(w, err)
		return sessions.Handle{}, false
	}
	return handle, true
}

func mapFilters(req dto.CandidateFiltersRequest) (model.CandidateFilters, bool) {
	gender, ok := enums.ParseGenderPreference(req.Gender)
	if !ok {
		return model.CandidateFilters{}, false
	}
	return model.CandidateFilters{
		MinAge:        req.MinAge,
		MaxAge:        req.MaxAge,
		MaxDistanceKM: req.MaxDistanceKM,
		Gender:        gender,
		OnlineOnly:    req.OnlineOnly,
		VerifiedOnly:  req.VerifiedOnly,
		Interests:     req.Interests,
		Limit:         req.Limit,
	}, true
}
