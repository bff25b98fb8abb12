// Package api serves the JSON API over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"femwork/internal/app"
	"femwork/internal/checkin"
	"femwork/internal/cycle"
	"femwork/internal/engine"
	"femwork/internal/shared"
	"femwork/internal/task"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Server exposes the App to HTTP clients holding a bearer token.
type Server struct {
	app     *app.App
	secret  string
	logger  *zap.Logger
	started time.Time
}

// NewServer creates a Server. secret signs and verifies bearer tokens.
func NewServer(a *app.App, secret string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{app: a, secret: secret, logger: logger, started: time.Now()}
}

// Register adds the API routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/v1/today", s.authMiddleware(s.handleToday))
	mux.HandleFunc("GET /api/v1/next", s.authMiddleware(s.handleNext))
	mux.HandleFunc("POST /api/v1/checkins", s.authMiddleware(s.handleCheckIn))
	mux.HandleFunc("GET /api/v1/tasks", s.authMiddleware(s.handleListTasks))
	mux.HandleFunc("POST /api/v1/tasks", s.authMiddleware(s.handleCreateTask))
	mux.HandleFunc("POST /api/v1/tasks/{id}/complete", s.authMiddleware(s.handleCompleteTask))
	mux.HandleFunc("GET /api/v1/wins", s.authMiddleware(s.handleWins))
}

// Handler returns a mux with only the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	plan, err := s.app.Today(r.Context(), UserFrom(r.Context()))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	next, err := s.app.Next(r.Context(), UserFrom(r.Context()))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

type checkInRequest struct {
	Energy     string `json:"energy"`
	BrainState string `json:"brain_state"`
	Mood       string `json:"mood"`
	Notes      string `json:"notes"`
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if !decode(w, r, &req) {
		return
	}
	energy, err := engine.ParseEnergy(req.Energy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	brain, err := engine.ParseBrainState(req.BrainState)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.app.CheckIn(r.Context(), UserFrom(r.Context()), app.CheckInInput{
		Energy:     energy,
		BrainState: brain,
		Mood:       req.Mood,
		Notes:      req.Notes,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "true"
	tasks, err := s.app.ListTasks(r.Context(), UserFrom(r.Context()), all)
	if err != nil {
		s.fail(w, err)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

type createTaskRequest struct {
	Name       string   `json:"name"`
	Priority   string   `json:"priority"`
	DueDate    string   `json:"due_date"`
	MicroTasks []string `json:"micro_tasks"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !decode(w, r, &req) {
		return
	}

	in := task.NewTask{Name: req.Name, MicroTasks: req.MicroTasks}
	if req.Priority != "" {
		p, err := engine.ParsePriority(req.Priority)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.Priority = p
	}
	if req.DueDate != "" {
		due, err := shared.ParseDay(req.DueDate, s.app.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.DueDate = &due
	}

	created, err := s.app.AddTask(r.Context(), UserFrom(r.Context()), in)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	res, err := s.app.CompleteTask(r.Context(), UserFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleWins(w http.ResponseWriter, r *http.Request) {
	wins, err := s.app.WeeklyWins(r.Context(), UserFrom(r.Context()))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wins)
}

// fail maps domain errors to status codes. Anything unexpected is logged
// and reported as a 500 without details.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrNoCheckIn):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, task.ErrInvalid),
		errors.Is(err, checkin.ErrInvalid),
		errors.Is(err, cycle.ErrInvalidProfile):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
