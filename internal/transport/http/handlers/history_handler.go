package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/RCDNC/swipedeck/internal/domain/model"
	authsvc "github.com/RCDNC/swipedeck/internal/services/auth"
	"github.com/RCDNC/swipedeck/internal/transport/http/dto"
	httperrors "github.com/RCDNC/swipedeck/internal/transport/http/errors"
)

const defaultHistoryLimit = 20

type HistoryReader interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]model.SwipeRecord, error)
}

type HistoryHandler struct {
	reader HistoryReader
	logger *zap.Logger
}

func NewHistoryHandler(reader HistoryReader, logger *zap.Logger) *HistoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryHandler{reader: reader, logger: logger}
}

func (h *HistoryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok || identity.UserID == "" {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.reader == nil {
		writeInternal(w, "HISTORY_UNAVAILABLE", "history store is unavailable")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	items, err := h.reader.ListRecent(r.Context(), identity.UserID, limit)
	if err != nil {
		h.logger.Warn("list swipe history failed", zap.String("user_id", identity.UserID), zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to load history")
		return
	}
	if items == nil {
		items = []model.SwipeRecord{}
	}
	httperrors.Write(w, http.StatusOK, dto.HistoryResponse{Items: items})
}
