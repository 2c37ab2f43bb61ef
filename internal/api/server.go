// Package api exposes the planner over HTTP. The surface is a thin
// invocation boundary: it creates plans, serves them, and records task
// status changes. Plans live in memory only.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/example/settlement-planner/internal/extract"
	"github.com/example/settlement-planner/internal/models"
	"github.com/example/settlement-planner/internal/planner"
)

var (
	errPlanNotFound = errors.New("plan not found")
	errTaskNotFound = errors.New("task not found")
	errNotExtended  = errors.New("only extended suggestions can be removed")
)

// Store keeps finished plans in memory, keyed by plan ID. All task mutation
// goes through it, and every accessor returns a deep copy taken under the
// lock, so handlers never encode shared state while another request is
// mutating it.
type Store struct {
	mu    sync.RWMutex
	plans map[string]*models.Plan
}

func NewStore() *Store {
	return &Store{plans: map[string]*models.Plan{}}
}

func (s *Store) Put(p *models.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.ID] = p.Clone()
}

func (s *Store) Get(id string) (*models.Plan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// SetTaskStatus records a lifecycle transition on one task.
func (s *Store) SetTaskStatus(planID, taskID string, status models.Status) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[planID]
	if !ok {
		return nil, errPlanNotFound
	}
	task := findTask(plan, taskID)
	if task == nil {
		return nil, errTaskNotFound
	}
	task.Status = status
	return task.Clone(), nil
}

// RemoveSuggestion un-accepts an extended suggestion. Essential and core
// tasks cannot be removed this way.
func (s *Store) RemoveSuggestion(planID, taskID string) (*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[planID]
	if !ok {
		return nil, errPlanNotFound
	}
	task := findTask(plan, taskID)
	if task == nil {
		return nil, errTaskNotFound
	}
	if task.Class != models.ClassExtended {
		return nil, errNotExtended
	}
	kept := make([]*models.Task, 0, len(plan.Tasks)-1)
	for _, t := range plan.Tasks {
		if t.ID != taskID {
			kept = append(kept, t)
		}
	}
	plan.Tasks = kept
	plan.ServiceLocations = models.ServiceLocationsOf(plan.Tasks)
	return plan.Clone(), nil
}

func findTask(plan *models.Plan, id string) *models.Task {
	for _, t := range plan.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	Planner *planner.Pipeline
	Store   *Store
	Log     *slog.Logger
}

func NewServer(p *planner.Pipeline, log *slog.Logger) *Server {
	return &Server{Planner: p, Store: NewStore(), Log: log}
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /plans", s.handleCreatePlan)
	mux.HandleFunc("GET /plans/{id}", s.handleGetPlan)
	mux.HandleFunc("PATCH /plans/{id}/tasks/{taskID}/status", s.handleTaskStatus)
	mux.HandleFunc("DELETE /plans/{id}/tasks/{taskID}", s.handleRemoveSuggestion)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createPlanRequest struct {
	Messages     []extract.Message   `json:"messages"`
	CustomerInfo models.CustomerInfo `json:"customer_info"`
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	plan := s.Planner.BuildPlan(r.Context(), req.Messages, req.CustomerInfo)
	s.Store.Put(plan)
	respondJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.Store.Get(r.PathValue("id"))
	if !ok {
		respondError(w, http.StatusNotFound, errPlanNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !models.IsValidStatus(req.Status) {
		respondError(w, http.StatusBadRequest, "unknown status "+req.Status)
		return
	}
	task, err := s.Store.SetTaskStatus(r.PathValue("id"), r.PathValue("taskID"), models.Status(req.Status))
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleRemoveSuggestion(w http.ResponseWriter, r *http.Request) {
	plan, err := s.Store.RemoveSuggestion(r.PathValue("id"), r.PathValue("taskID"))
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errPlanNotFound), errors.Is(err, errTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, errNotExtended):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"error": msg})
}
