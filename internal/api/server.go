package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/fut-harvester/internal/config"
	"github.com/user/fut-harvester/internal/storage"
)

// Server exposes the ops surface (metrics, health, progress) while a
// harvest run is in flight.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	archive    *storage.RecordArchive
	mirror     *storage.PostgresMirror // nil when disabled
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, a *storage.RecordArchive, m *storage.PostgresMirror, l *zap.Logger) *Server {
	s := &Server{
		config:  cfg,
		archive: a,
		mirror:  m,
		logger:  l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
