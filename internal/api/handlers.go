package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	healthStatus := map[string]string{"archive": "healthy"}

	if _, err := s.archive.KnownIDs(); err != nil {
		healthStatus["archive"] = "unhealthy"
		s.logger.Error("health check failed for archive", zap.Error(err))
	}

	if s.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.mirror.Ping(ctx); err != nil {
			healthStatus["postgres"] = "unhealthy"
			s.logger.Error("health check failed for postgres", zap.Error(err))
		} else {
			healthStatus["postgres"] = "healthy"
		}
	}

	for _, v := range healthStatus {
		if v != "healthy" {
			s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
			return
		}
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	known, err := s.archive.KnownIDs()
	if err != nil {
		s.logger.Error("failed to read archive", zap.Error(err))
		s.respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read archive"})
		return
	}
	s.respondWithJSON(w, http.StatusOK, map[string]int{"archived_players": len(known)})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
