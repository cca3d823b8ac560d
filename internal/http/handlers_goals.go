package http

import (
	"net/http"

	"smallledger/internal/core"
)

type goalRequest struct {
	Name          string      `json:"name"`
	TargetAmount  amountField `json:"target_amount"`
	CurrentAmount amountField `json:"current_amount"`
	Period        string      `json:"period"`
	StartDate     dateField   `json:"start_date"`
	EndDate       dateField   `json:"end_date"`
}

type goalAmountRequest struct {
	CurrentAmount amountField `json:"current_amount"`
}

type goalResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Period        string  `json:"period"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type goalProgressResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Percentage    float64 `json:"progress_percentage"`
	DaysLeft      int     `json:"days_left"`
	Status        string  `json:"status"`
}

func toGoalResponse(g core.SavingsGoal) goalResponse {
	return goalResponse{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.Target.Float(),
		CurrentAmount: g.Current.Float(),
		Period:        string(g.Period),
		StartDate:     formatDate(g.StartDate),
		EndDate:       formatDate(g.EndDate),
		Status:        string(g.Status),
		CreatedAt:     formatTimestamp(g.CreatedAt),
		UpdatedAt:     formatTimestamp(g.UpdatedAt),
	}
}

func (req goalRequest) toDomain(userID int64) core.SavingsGoal {
	return core.SavingsGoal{
		UserID:    userID,
		Name:      req.Name,
		Target:    req.TargetAmount.money,
		Current:   req.CurrentAmount.money,
		Period:    core.GoalPeriod(req.Period),
		StartDate: req.StartDate.time,
		EndDate:   req.EndDate.time,
	}
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := s.goals.Create(r.Context(), req.toDomain(currentUser(r).ID))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGoalResponse(created))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.List(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	g, err := s.goals.Get(r.Context(), id, currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req goalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	goal := req.toDomain(currentUser(r).ID)
	goal.ID = id
	updated, err := s.goals.Update(r.Context(), goal)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponse(updated))
}

func (s *Server) handleUpdateGoalAmount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req goalAmountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.CurrentAmount.set {
		writeError(w, http.StatusBadRequest, core.ErrInvalidAmount.Error())
		return
	}

	updated, err := s.goals.UpdateAmount(r.Context(), id, currentUser(r).ID, req.CurrentAmount.money)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponse(updated))
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	progress, err := s.goals.Progress(r.Context(), id, currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goalProgressResponse{
		ID:            progress.ID,
		Name:          progress.Name,
		TargetAmount:  progress.Target.Float(),
		CurrentAmount: progress.Current.Float(),
		Percentage:    progress.Percentage,
		DaysLeft:      progress.DaysLeft,
		Status:        string(progress.Status),
	})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := s.goals.Delete(r.Context(), id, currentUser(r).ID); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
