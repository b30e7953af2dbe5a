package httpserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	servertiming "github.com/mitchellh/go-server-timing"
	"golang.org/x/oauth2"

	"github.com/phenrril/cosmetica/internal/domain"
	"github.com/phenrril/cosmetica/internal/usecase"
)

type TokenVerifier interface {
	Verify(raw string) (domain.Principal, error)
}

type Deps struct {
	Categories *usecase.CategoryUC
	Products   *usecase.ProductUC
	Cart       *usecase.CartUC
	Wishlist   *usecase.WishlistUC
	Users      *usecase.UserUC
	CatalogIO  *usecase.CatalogIO
	Tokens     TokenVerifier
	OAuth      *oauth2.Config
	UploadsDir string
	// CORSOrigins defaults to any origin when empty.
	CORSOrigins []string
	Health      func(ctx context.Context) error
}

type Server struct {
	Deps
	router chi.Router
}

func New(d Deps) http.Handler {
	if d.UploadsDir == "" {
		d.UploadsDir = "uploads"
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s := &Server{Deps: d, router: chi.NewRouter()}
	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "If-None-Match"},
			ExposedHeaders: []string{"ETag", "Server-Timing"},
			MaxAge:         300,
		}),
		s.authenticate,
	)
	s.routes()
	return servertiming.Middleware(s.router, nil)
}

func (s *Server) routes() {
	r := s.router

	r.Get("/healthz", s.handleHealth)
	r.Get("/uploads/{kind}/{file}", s.handleUpload)

	r.Route("/api/ProductModel", func(r chi.Router) {
		r.Get("/", s.apiProducts)
		r.Get("/catalog", s.apiCatalog)
		r.Get("/{id}", s.apiProductByID)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/add", s.apiProductCreate)
			r.Put("/{id}", s.apiProductUpdate)
			r.Delete("/{id}", s.apiProductDelete)
			r.Get("/export", s.apiProductsExport)
			r.Post("/import", s.apiProductsImport)
		})
	})

	r.Route("/api/CategoryModel", func(r chi.Router) {
		r.Get("/categories", s.apiCategories)
		r.Get("/categories/{id}", s.apiCategoryByID)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/add-category", s.apiCategoryCreate)
			r.Put("/update-category/{id}", s.apiCategoryUpdate)
			r.Delete("/delete-category/{id}", s.apiCategoryDelete)
		})
	})

	r.Route("/api/CartModel", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Post("/add", s.apiCartAdd)
		r.Put("/update/{cartItemId}", s.apiCartUpdate)
		r.Delete("/remove/{cartItemId}", s.apiCartRemove)
		r.Delete("/clear/{userId}", s.apiCartClear)
		r.Post("/move-to-wishlist/{cartItemId}", s.apiCartMoveToWishlist)
		r.Get("/{userId}/summary", s.apiCartSummary)
		r.Get("/{userId}", s.apiCart)
	})

	r.Route("/api/WishlistModel", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Post("/add", s.apiWishlistAdd)
		r.Delete("/clear/{userId}", s.apiWishlistClear)
		r.Post("/move-all/{userId}", s.apiWishlistMoveAll)
		r.Post("/move-selected/{userId}", s.apiWishlistMoveSelected)
		r.Get("/{userId}", s.apiWishlist)
		r.Delete("/{wishlistItemId}", s.apiWishlistRemove)
	})

	r.Route("/api/UserModel", func(r chi.Router) {
		r.Post("/add-Usermodel", s.apiRegister)
		r.Post("/Usermodel", s.apiLogin)
		r.Get("/google/login", s.handleGoogleLogin)
		r.Get("/google/callback", s.handleGoogleCallback)
		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/user-details/{userId}", s.apiUserDetails)
			r.Put("/change-password/{userId}", s.apiChangePassword)
			r.Put("/{userId}", s.apiUpdateProfile)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.Health != nil {
		if err := s.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "error", "error": "database unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
