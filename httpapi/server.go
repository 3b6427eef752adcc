// Package httpapi wires together every HTTP handler the daemon exposes
// (C9): upload, download, list.json, login, whoami, registration code
// minting/checking, account creation, delete, and the CORS preflight for
// upload. Routing follows the mux-based style storj-storj uses for its
// own HTTP surface rather than the teacher's cluster-membership-aware
// router, which has no equivalent here.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aqasend/aqasend/authz"
	"github.com/aqasend/aqasend/blob"
	"github.com/aqasend/aqasend/config"
	"github.com/aqasend/aqasend/session"
	"github.com/aqasend/aqasend/snapshot"
	"github.com/aqasend/aqasend/store"
)

// allowedHeaders is the explicit CORS allow-list for the four aqa-*
// request headers (§8 "CORS").
var allowedHeaders = []string{"aqa-download-count", "aqa-visibility", "aqa-password", "aqa-lifetime"}

// Server holds every dependency a handler needs. Handlers are methods on
// Server so they can share db/blobs/sessions without a global.
type Server struct {
	db       *store.DB
	blobs    *blob.Store
	sessions *session.Store
	authz    *authz.Resolver
	cfg      *config.Owner
	log      *zap.Logger
	metrics  *metrics
}

// NewServer wires up a Server from its dependencies. Call Router to get
// an http.Handler to pass to an http.Server.
func NewServer(db *store.DB, blobs *blob.Store, sessions *session.Store, cfg *config.Owner, log *zap.Logger, reg prometheus.Registerer) *Server {
	return &Server{
		db:       db,
		blobs:    blobs,
		sessions: sessions,
		authz:    authz.New(sessions, db),
		cfg:      cfg,
		log:      log,
		metrics:  newMetrics(reg),
	}
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.corsMiddleware)
	r.Use(s.metricsMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	api.HandleFunc("/upload", s.handleUploadOptions).Methods(http.MethodOptions)
	api.HandleFunc("/download/{uuid}", s.handleDownload).Methods(http.MethodGet)
	api.HandleFunc("/list.json", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/whoami", s.handleWhoami).Methods(http.MethodGet)
	api.HandleFunc("/registration_code/{kind}", s.handleRegistrationCode).Methods(http.MethodGet)
	api.HandleFunc("/check_registration_code/{code}", s.handleCheckRegistrationCode).Methods(http.MethodGet)
	api.HandleFunc("/create_account", s.handleCreateAccount).Methods(http.MethodPost)
	api.HandleFunc("/delete/{uuid}", s.handleDelete).Methods(http.MethodDelete)

	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry(), promhttp.HandlerOpts{}))
	return r
}

// corsMiddleware mirrors a request's Origin header back in
// Access-Control-Allow-Origin on every response, per §8.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		next.ServeHTTP(w, r)
	})
}

// handleUploadOptions answers the CORS preflight for /api/upload with the
// explicit four-header allow-list (§8).
func (s *Server) handleUploadOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, POST")
	w.Header().Set("Access-Control-Allow-Headers", joinHeaders(allowedHeaders))
	w.WriteHeader(http.StatusNoContent)
}

func joinHeaders(hs []string) string {
	out := hs[0]
	for _, h := range hs[1:] {
		out += ", " + h
	}
	return out
}

// Save persists the current database state to disk, used by the daemon's
// graceful-shutdown path and its periodic save ticker (§4.2).
func (s *Server) Save(root string) error {
	return snapshot.Save(root, s.db)
}
