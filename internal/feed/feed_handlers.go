package feed

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"redshare/internal/common"
)

type FeedHandlers struct {
	FeedSvc FeedUsecase
	logger  *zap.Logger
}

func NewFeedHandlers(svc FeedUsecase, logger *zap.Logger) *FeedHandlers {
	return &FeedHandlers{FeedSvc: svc, logger: logger}
}

func (h *FeedHandlers) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/content", h.GetAllContent).Methods(http.MethodGet)
	api.HandleFunc("/feed", common.RequireAuth(h.GetFeed)).Methods(http.MethodGet)
	api.HandleFunc("/saved", common.RequireAuth(h.GetSaved)).Methods(http.MethodGet)
	api.HandleFunc("/gallery/{id}", h.GetGallery).Methods(http.MethodGet)
}

func (h *FeedHandlers) GetAllContent(w http.ResponseWriter, r *http.Request) {
	sortBy := common.ParseSortBy(r.URL.Query().Get("sortBy"))
	cards, err := h.FeedSvc.GetAllContent(r.Context(), common.ParsePage(r), sortBy)
	if err != nil {
		h.writeError(w, "list content", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, cards)
}

func (h *FeedHandlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	cards, err := h.FeedSvc.GetFeedContent(r.Context(), common.ViewerID(r.Context()), common.ParsePage(r))
	if err != nil {
		h.writeError(w, "feed", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, cards)
}

func (h *FeedHandlers) GetSaved(w http.ResponseWriter, r *http.Request) {
	cards, err := h.FeedSvc.GetSavedContent(r.Context(), common.ViewerID(r.Context()), common.ParsePage(r))
	if err != nil {
		h.writeError(w, "saved", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, cards)
}

func (h *FeedHandlers) GetGallery(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	detail, err := h.FeedSvc.GetGalleryDetail(r.Context(), common.ViewerID(r.Context()), id)
	if err != nil {
		h.writeError(w, "gallery detail", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, detail)
}

func (h *FeedHandlers) writeError(w http.ResponseWriter, op string, err error) {
	if common.StatusFromError(err) == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	}
	common.WriteError(w, err)
}
