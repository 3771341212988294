package user

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"redshare/internal/common"
	"redshare/internal/dbmysql"
)

// Handler exposes registration, sessions and profiles over HTTP.
type Handler struct {
	userService UserService
	logger      *zap.Logger
}

func NewHandler(userService UserService, logger *zap.Logger) *Handler {
	return &Handler{userService: userService, logger: logger}
}

func (h *Handler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/logout", common.RequireAuth(h.Logout)).Methods(http.MethodPost)
	api.HandleFunc("/user", common.RequireAuth(h.CurrentUser)).Methods(http.MethodGet)
	api.HandleFunc("/user", common.RequireAuth(h.UpdateProfile)).Methods(http.MethodPut)
	api.HandleFunc("/users/{username}", h.GetProfile).Methods(http.MethodGet)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *dbmysql.User `json:"user"`
	Token string        `json:"token"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	user, token, err := h.userService.RegisterUser(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, "register", err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	user, token, err := h.userService.LoginUser(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, "login", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, _ := common.IdentityFrom(r.Context())
	if err := h.userService.Logout(r.Context(), identity); err != nil {
		h.writeError(w, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.GetCurrentUser(r.Context(), common.ViewerID(r.Context()))
	if err != nil {
		h.writeError(w, "current user", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), common.ViewerID(r.Context()), req)
	if err != nil {
		h.writeError(w, "update profile", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	profile, err := h.userService.GetProfile(r.Context(), common.ViewerID(r.Context()), username)
	if err != nil {
		h.writeError(w, "get profile", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	if common.StatusFromError(err) == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	}
	common.WriteError(w, err)
}
