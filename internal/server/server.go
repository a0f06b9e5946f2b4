package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mapforge/internal/config"
	"mapforge/internal/workspace"
)

// Server serves one workspace session.
type Server struct {
	cfg     config.ServerConfig
	session *workspace.Session
	log     *slog.Logger
	engine  *gin.Engine
}

// New builds the router. gin runs in release mode unless the caller set
// another mode before.
func New(cfg config.ServerConfig, session *workspace.Session, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{cfg: cfg, session: session, log: log, engine: gin.New()}

	s.engine.Use(RequestID(), Recovery(log), RequestLogger(log))
	s.routes()

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().Format(time.RFC3339)})
	})

	api := r.Group("/api", LimitBody(s.cfg.MaxUploadBytes))
	{
		api.GET("/registry", s.getRegistry)
		api.GET("/rubrics", s.getRubrics)
		api.GET("/statuses", s.getStatuses)
		api.POST("/export", s.exportPayload)
	}

	p := api.Group("/project")
	{
		p.POST("/open", s.openProject)
		p.GET("", s.getProject)
		p.POST("/reset", s.resetProject)

		p.GET("/catalog/:side", s.getCatalog)
		p.PUT("/catalog/:side", s.setCatalog)
		p.POST("/catalog/:side/file", s.importCatalog)

		p.POST("/rubrics/:code", s.enableRubric)
		p.DELETE("/rubrics/:code", s.disableRubric)

		p.POST("/rows", s.addRow)
		p.PATCH("/rows/:id", s.updateRow)
		p.DELETE("/rows/:id", s.deleteRow)

		p.POST("/rounds", s.addRound)
		p.PUT("/rounds/:id/active", s.switchRound)
		p.DELETE("/rounds/:id", s.removeRound)

		p.GET("/export.json", s.exportJSON)
		p.POST("/import.json", s.importJSON)
		p.GET("/export.xlsx", s.exportSpreadsheet)
		p.GET("/analysis.xlsx", s.exportAnalysis)
		p.POST("/import.xlsx", s.importSpreadsheet)
		p.GET("/sheets", s.listSheets)
		p.POST("/sheets/apply", s.applySheet)

		p.GET("/suggest", s.suggest)
		p.GET("/unmatched", s.unmatched)
	}
}

// Run serves on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server starting", slog.String("addr", s.cfg.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}

		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
