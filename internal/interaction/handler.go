package interaction

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"redshare/internal/common"
)

type Handler struct {
	interactionService InteractionService
	logger             *zap.Logger
}

func NewHandler(interactionService InteractionService, logger *zap.Logger) *Handler {
	return &Handler{interactionService: interactionService, logger: logger}
}

func (h *Handler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/gallery/{id}/like", common.RequireAuth(h.toggle("like", h.interactionService.Like))).Methods(http.MethodPost)
	api.HandleFunc("/gallery/{id}/like", common.RequireAuth(h.toggle("unlike", h.interactionService.Unlike))).Methods(http.MethodDelete)
	api.HandleFunc("/gallery/{id}/save", common.RequireAuth(h.toggle("save", h.interactionService.Save))).Methods(http.MethodPost)
	api.HandleFunc("/gallery/{id}/save", common.RequireAuth(h.toggle("unsave", h.interactionService.Unsave))).Methods(http.MethodDelete)
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *Handler) toggle(op string, fn func(ctx context.Context, userID, galleryID uint64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		galleryID, err := common.PathID(r, "id")
		if err != nil {
			common.WriteError(w, err)
			return
		}
		if err := fn(r.Context(), common.ViewerID(r.Context()), galleryID); err != nil {
			if common.StatusFromError(err) == http.StatusInternalServerError {
				h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
			}
			common.WriteError(w, err)
			return
		}
		common.WriteJSON(w, http.StatusOK, successResponse{Success: true})
	}
}
