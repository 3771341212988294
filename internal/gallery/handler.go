package gallery

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"redshare/internal/common"
)

type Handler struct {
	galleryService GalleryService
	logger         *zap.Logger
}

func NewHandler(galleryService GalleryService, logger *zap.Logger) *Handler {
	return &Handler{galleryService: galleryService, logger: logger}
}

func (h *Handler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/users/{username}/content", h.ListUserContent).Methods(http.MethodGet)
	api.HandleFunc("/gallery/{id}/visibility", common.RequireAuth(h.SetVisibility)).Methods(http.MethodPut)
	api.HandleFunc("/gallery/{id}", common.RequireAuth(h.Delete)).Methods(http.MethodDelete)
}

type visibilityRequest struct {
	Visibility string `json:"visibility"`
}

func (h *Handler) ListUserContent(w http.ResponseWriter, r *http.Request) {
	cards, err := h.galleryService.ListUserGalleries(r.Context(), common.ViewerID(r.Context()), mux.Vars(r)["username"], common.ParsePage(r))
	if err != nil {
		h.writeError(w, "list user content", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, cards)
}

func (h *Handler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var req visibilityRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	gallery, err := h.galleryService.SetVisibility(r.Context(), common.ViewerID(r.Context()), id, req.Visibility)
	if err != nil {
		h.writeError(w, "set visibility", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, gallery)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.galleryService.DeleteGallery(r.Context(), common.ViewerID(r.Context()), id); err != nil {
		h.writeError(w, "delete gallery", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	if common.StatusFromError(err) == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	}
	common.WriteError(w, err)
}
