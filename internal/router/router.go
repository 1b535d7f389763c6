package router

import (
	"io/fs"
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options configures the router. UploadDir, when set, serves locally stored
// product images under /uploads/.
type Options struct {
	Verifier  middleware.TokenVerifier
	UploadDir string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	opts Options,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Applied in order: Recovery -> Logging -> Metrics -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS)

	authenticate := middleware.Authenticate(opts.Verifier, logger)
	adminOnly := middleware.AdminOnly(logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	if opts.UploadDir != "" {
		files := http.StripPrefix(storage.PublicPrefix, http.FileServer(filesOnly{http.Dir(opts.UploadDir)}))
		r.Handle(storage.PublicPrefix+"*", files)
	}

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", productHandler.List)
		r.Get("/top", productHandler.Top)
		r.Get("/{id}", productHandler.GetByID)

		r.With(authenticate).Post("/reviews/{id}", productHandler.CreateReview)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Post("/", productHandler.Create)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
		})
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/", orderHandler.Create)
		r.Get("/mine", orderHandler.ListMine)
		r.Get("/my-orders", orderHandler.ListMine)
		r.Get("/{id}", orderHandler.GetByID)
		r.Put("/{id}/pay", orderHandler.Pay)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", orderHandler.List)
			r.Put("/{id}/deliver", orderHandler.Deliver)
			r.Delete("/{id}", orderHandler.Delete)
		})
	})

	return r
}

// filesOnly hides directories so the upload root cannot be listed.
type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
