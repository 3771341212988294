// Package server assembles the HTTP surface: the /api routes, media
// serving and the ops endpoints.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"redshare/internal/comment"
	"redshare/internal/common"
	"redshare/internal/config"
	"redshare/internal/feed"
	"redshare/internal/gallery"
	"redshare/internal/interaction"
	"redshare/internal/media"
	"redshare/internal/metrics"
	"redshare/internal/social"
	"redshare/internal/user"
)

const serviceName = "redshare"

type Handlers struct {
	User        *user.Handler
	Social      *social.Handler
	Gallery     *gallery.Handler
	Interaction *interaction.Handler
	Comment     *comment.Handler
	Feed        *feed.FeedHandlers
	Upload      *media.Uploader
	Media       *media.HTTPServer
}

type Auth struct {
	Tokens  *common.TokenManager
	Revoker common.TokenRevoker
}

// NewRouter returns the root handler. Outermost first: tracing, CORS,
// panic recovery and request logging wrap the mux; metrics, span naming
// and authentication run per matched route.
func NewRouter(cfg *config.Config, h Handlers, auth Auth, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	logger = logger.Named("http")

	router := mux.NewRouter()
	router.Use(m.Middleware, spanNameMiddleware, common.Authenticate(auth.Tokens, auth.Revoker, logger))
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		common.WriteError(w, common.ErrNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		common.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
	})

	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	h.User.RegisterRoutes(api)
	h.Social.RegisterRoutes(api)
	h.Gallery.RegisterRoutes(api)
	h.Interaction.RegisterRoutes(api)
	h.Comment.RegisterRoutes(api)
	h.Feed.RegisterRoutes(api)
	h.Upload.RegisterRoutes(api)

	h.Media.RegisterRoutes(router)

	var handler http.Handler = router
	handler = loggingMiddleware(logger)(handler)
	handler = recoverMiddleware(logger)(handler)
	handler = corsMiddleware(cfg.Server.AllowedOrigin)(handler)
	return otelhttp.NewHandler(handler, serviceName)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}
