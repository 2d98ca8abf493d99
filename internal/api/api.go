package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/btecbytes/bytesapi/internal/api/auth"
	"github.com/btecbytes/bytesapi/internal/api/handler"
	"github.com/btecbytes/bytesapi/internal/config"
	"github.com/btecbytes/bytesapi/internal/database"
	"github.com/btecbytes/bytesapi/internal/gravatar"
	"github.com/btecbytes/bytesapi/internal/images"
	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	db        database.DB
	handler   *handler.Handler
	limiter   *auth.LoginLimiter
	server    *http.Server
}

// New builds the HTTP server and registers all routes.
func New(cfg *config.Config, db database.DB, renderer *images.Renderer, avatars *gravatar.Resolver) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	if log.GetLevel() > log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		ginEngine: gin.New(),
		db:        db,
		handler:   handler.New(db, cfg, renderer, avatars),
		limiter:   auth.NewLoginLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst),
	}
	if err := s.ginEngine.SetTrustedProxies(cfg.Auth.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

func (s *Server) setupRoutes() {
	s.ginEngine.Use(gin.Logger(), gin.Recovery())
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))
	s.ginEngine.Use(auth.Sessions(s.cfg.Auth.SessionKey, s.cfg.Auth.SessionMaxAge))

	h := s.handler

	s.ginEngine.GET("/debug", h.Debug)
	s.ginEngine.POST("/auth", s.limiter.Middleware(), h.Login)

	resources := s.ginEngine.Group("/")
	if s.cfg.Auth.RequireAPIKey {
		resources.Use(auth.RequireAPIKeyForWrites(s.db))
	}

	resources.GET("/user", h.ListUsers)
	resources.POST("/user", h.CreateUser)
	resources.GET("/user/:id", h.GetUser)

	resources.GET("/category", h.ListCategories)
	resources.POST("/category", h.CreateCategory)
	resources.GET("/category/:url_ext", h.GetCategory)
	resources.PATCH("/category/:url_ext", h.UpdateCategory)
	resources.DELETE("/category/:url_ext", h.DeleteCategory)
	resources.GET("/category/:url_ext/image", h.CategoryImage)

	resources.GET("/item", h.ListItems)
	resources.POST("/item", h.CreateItem)
	resources.GET("/item/:id", h.GetItem)
	resources.DELETE("/item/:id", h.DeleteItem)
	resources.GET("/item/:id/image", h.ItemImage)

	resources.GET("/wishlist", h.ListWishlists)
	resources.POST("/wishlist", h.CreateWishlist)
	resources.GET("/wishlist/:id", h.GetWishlist)
}

// Run serves HTTP until ctx is cancelled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "listen", s.cfg.Listen)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("Shutting down HTTP server")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
