package comment

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"redshare/internal/common"
)

type Handler struct {
	commentService CommentService
	logger         *zap.Logger
}

func NewHandler(commentService CommentService, logger *zap.Logger) *Handler {
	return &Handler{commentService: commentService, logger: logger}
}

func (h *Handler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/gallery/{id}/comments", h.List).Methods(http.MethodGet)
	api.HandleFunc("/gallery/{id}/comments", common.RequireAuth(h.Create)).Methods(http.MethodPost)
	api.HandleFunc("/gallery/{id}/comments/{commentId}/replies", common.RequireAuth(h.Reply)).Methods(http.MethodPost)
}

type createRequest struct {
	Text string `json:"text"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	galleryID, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	threads, err := h.commentService.GetComments(r.Context(), common.ViewerID(r.Context()), galleryID)
	if err != nil {
		h.writeError(w, "list comments", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, threads)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, nil)
}

func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	parentID, err := common.PathID(r, "commentId")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	h.create(w, r, &parentID)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, parentID *uint64) {
	galleryID, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var req createRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	comment, err := h.commentService.CreateComment(r.Context(), galleryID, common.ViewerID(r.Context()), req.Text, parentID)
	if err != nil {
		h.writeError(w, "create comment", err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, comment)
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	if common.StatusFromError(err) == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	}
	common.WriteError(w, err)
}
