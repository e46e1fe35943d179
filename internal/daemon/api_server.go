package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dubber/internal/api"
	"dubber/internal/config"
	"dubber/internal/jobs"
	"dubber/internal/logging"
	"dubber/internal/match"
	"dubber/internal/merge"
	"dubber/internal/scheduler"
	"dubber/internal/services"
)

// DefaultOwner is assumed for callers that never identify themselves.
// A single-user deployment is the degenerate case with one fixed owner.
const DefaultOwner = "local"

// defaultJobsLimit caps /api/jobs responses when no limit is given.
const defaultJobsLimit = 20

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		token:  strings.TrimSpace(cfg.Paths.APIToken),
		logger: logging.WithComponent(logger, "api"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/start", srv.auth(srv.handleStart))
	mux.HandleFunc("/api/status", srv.auth(srv.handleStatus))
	mux.HandleFunc("/api/stop", srv.auth(srv.handleStop))
	mux.HandleFunc("/api/find_matches", srv.auth(srv.handleFindMatches))
	mux.HandleFunc("/api/jobs", srv.auth(srv.handleJobs))
	mux.HandleFunc("/api/preferences", srv.auth(srv.handlePreferences))
	mux.HandleFunc("/api/health", srv.handleHealth)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// auth validates bearer tokens. An empty configured token disables
// authentication entirely.
func (s *apiServer) auth(next http.HandlerFunc) http.HandlerFunc {
	if s.token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || strings.TrimPrefix(header, "Bearer ") != s.token {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *apiServer) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	owner := ownerOrDefault(req.OwnerID)
	saved, err := s.daemon.prefs.Get(r.Context(), owner)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	submission := scheduler.Request{
		OwnerID:   owner,
		AudioDir:  firstNonEmpty(req.MP3Dir, saved.AudioDir),
		VideoDir:  firstNonEmpty(req.MKVDir, saved.VideoDir),
		OutputDir: firstNonEmpty(req.OutDir, saved.OutputDir),
		Merge:     req.MergeOptions.Apply(saved.Merge),
	}

	job, err := s.daemon.sched.Submit(r.Context(), submission)
	switch {
	case errors.Is(err, services.ErrConcurrencyLimit):
		s.writeJSON(w, http.StatusTooManyRequests, api.StartResponse{Success: false, Message: err.Error()})
		return
	case errors.Is(err, services.ErrConfiguration):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, api.StartResponse{Success: true, JobID: job.ID, Message: "job started"})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jobID := strings.TrimSpace(r.URL.Query().Get("job"))
	if jobID == "" {
		s.writeError(w, http.StatusBadRequest, "job parameter is required")
		return
	}
	owner := ownerOrDefault(r.URL.Query().Get("owner"))

	job, err := s.daemon.sched.Status(r.Context(), jobID, owner, false)
	if errors.Is(err, jobs.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.StatusFromJob(job))
}

func (s *apiServer) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.StopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.JobID) == "" {
		s.writeError(w, http.StatusBadRequest, "jobId is required")
		return
	}

	ok, err := s.daemon.sched.Stop(r.Context(), req.JobID, ownerOrDefault(req.OwnerID), false)
	if errors.Is(err, jobs.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.StopResponse{Success: ok})
}

func (s *apiServer) handleFindMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.FindMatchesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.MP3Dir) == "" || strings.TrimSpace(req.MKVDir) == "" {
		s.writeError(w, http.StatusBadRequest, "mp3Dir and mkvDir are required")
		return
	}

	cfg := req.MergeOptions.Apply(merge.FromDefaults(s.daemon.cfg.Merge))
	pairs, err := match.Match(req.MP3Dir, req.MKVDir, req.OutDir, cfg)
	if errors.Is(err, match.ErrDirectoryNotFound) || errors.Is(err, match.ErrDirectoryUnreadable) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.MatchesFromPairs(pairs))
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	owner := ownerOrDefault(r.URL.Query().Get("owner"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultJobsLimit
	}

	list, err := s.daemon.sched.List(r.Context(), owner, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := api.JobListResponse{Jobs: make([]api.JobSummary, 0, len(list))}
	for _, job := range list {
		resp.Jobs = append(resp.Jobs, api.SummaryFromJob(job))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		owner := ownerOrDefault(r.URL.Query().Get("owner"))
		saved, err := s.daemon.prefs.Get(r.Context(), owner)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.PreferencesFromStore(saved))

	case http.MethodPost:
		var payload api.PreferencesPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		owner := ownerOrDefault(payload.OwnerID)
		current, err := s.daemon.prefs.Get(r.Context(), owner)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		updated := payload.ApplyToPreferences(current)
		updated.OwnerID = owner
		if err := s.daemon.prefs.Set(r.Context(), updated); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.PreferencesFromStore(updated))

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:          "ok",
		Running:         s.daemon.running.Load(),
		DBPath:          s.daemon.store.Path(),
		FFmpegAvailable: s.daemon.client != nil && s.daemon.client.Available() == nil,
	})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Success: false, Error: message})
}

func ownerOrDefault(owner string) string {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return DefaultOwner
	}
	return owner
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
