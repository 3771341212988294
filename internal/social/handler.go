package social

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"redshare/internal/common"
)

type Handler struct {
	socialService SocialService
	logger        *zap.Logger
}

func NewHandler(socialService SocialService, logger *zap.Logger) *Handler {
	return &Handler{socialService: socialService, logger: logger}
}

func (h *Handler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/users/{username}/follow", common.RequireAuth(h.Follow)).Methods(http.MethodPost)
	api.HandleFunc("/users/{username}/follow", common.RequireAuth(h.Unfollow)).Methods(http.MethodDelete)
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	err := h.socialService.FollowByUsername(r.Context(), common.ViewerID(r.Context()), mux.Vars(r)["username"])
	h.respond(w, "follow", err)
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	err := h.socialService.UnfollowByUsername(r.Context(), common.ViewerID(r.Context()), mux.Vars(r)["username"])
	h.respond(w, "unfollow", err)
}

func (h *Handler) respond(w http.ResponseWriter, op string, err error) {
	if err != nil {
		if common.StatusFromError(err) == http.StatusInternalServerError {
			h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
		}
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
