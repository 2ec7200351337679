package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"rss-digest/pkg/domain"
	"rss-digest/pkg/draft"
	"rss-digest/pkg/ingest"
)

// CronTokenHeader carries the secret for schedulers that cannot set Authorization.
const CronTokenHeader = "X-Cron-Auth-Token"

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error"`
}

type fetchResponse struct {
	Success      bool                 `json:"success"`
	TotalSources int                  `json:"totalSources"`
	Results      []domain.FetchResult `json:"results"`
}

type cleanupResponse struct {
	Success       bool  `json:"success"`
	DeletedCount  int64 `json:"deletedCount"`
	RetentionDays int   `json:"retentionDays"`
}

type generateResponse struct {
	Post draft.Result `json:"post"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	failed := false
	writeJSON(w, status, errorResponse{Success: &failed, Error: msg})
}

// authorized accepts "Authorization: Bearer <secret>" or the cron token header.
func (s *Server) authorized(r *http.Request) bool {
	if s.secret == "" {
		return false
	}
	secret := []byte(s.secret)

	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		if subtle.ConstantTimeCompare([]byte(token), secret) == 1 {
			return true
		}
	}
	if token := r.Header.Get(CronTokenHeader); token != "" {
		return subtle.ConstantTimeCompare([]byte(token), secret) == 1
	}
	return false
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r) {
			if s.secret == "" {
				s.logger.Error("cron secret is not configured, rejecting request", zap.String("path", r.URL.Path))
			}
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("starting rss fetch batch")
	batch, err := s.deps.Fetcher.FetchAll(r.Context())
	if errors.Is(err, ingest.ErrRunInProgress) {
		writeFailure(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("rss fetch batch failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, fetchResponse{
		Success:      true,
		TotalSources: batch.TotalSources,
		Results:      batch.Results,
	})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("starting old articles cleanup")
	res, days, err := s.deps.Sweeper.SweepWithSettings(r.Context())
	if err != nil {
		s.logger.Error("cleanup failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("cleanup completed", zap.Int64("deleted", res.DeletedCount), zap.Int("retention_days", days))
	writeJSON(w, http.StatusOK, cleanupResponse{
		Success:       true,
		DeletedCount:  res.DeletedCount,
		RetentionDays: days,
	})
}

func (s *Server) handleGeneratePost(w http.ResponseWriter, r *http.Request) {
	if s.deps.Generator == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "post generation is not configured"})
		return
	}

	var in draft.GenerateInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid input"})
		return
	}
	if err := in.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid input: " + err.Error()})
		return
	}

	post, err := s.deps.Generator.Generate(r.Context(), in)
	if err != nil {
		s.logger.Error("post generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Post: post})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
