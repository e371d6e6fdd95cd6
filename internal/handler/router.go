package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouterOptions carries what the router needs besides the handlers
type RouterOptions struct {
	UploadDir      string
	AllowedOrigins []string
	Metrics        http.Handler
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(imageHandler *ImageHandler, middleware *RequestMiddleware, opts RouterOptions) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "image-text-reader",
		})
	}).Methods(http.MethodGet)

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload", imageHandler.Upload).Methods(http.MethodPost)
	api.HandleFunc("/analyze", imageHandler.Analyze).Methods(http.MethodPost)
	api.HandleFunc("/delete/{filename}", imageHandler.Delete).Methods(http.MethodDelete)

	router.PathPrefix(staticUploadsPath).Handler(
		http.StripPrefix(staticUploadsPath, noDirectoryListing(http.FileServer(http.Dir(opts.UploadDir)))),
	).Methods(http.MethodGet, http.MethodHead)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			requestIDHeader,
		},
		ExposedHeaders: []string{
			requestIDHeader,
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(middleware.Logging(middleware.Recover(router)))
}

// noDirectoryListing hides the upload directory index
func noDirectoryListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}
