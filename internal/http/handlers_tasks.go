package http

import (
	"net/http"

	"smallledger/internal/core"
)

type taskRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Importance  int       `json:"importance"`
	Urgency     int       `json:"urgency"`
	TimePeriod  string    `json:"time_period"`
	DueDate     dateField `json:"due_date"`
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

type taskResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Importance  int    `json:"importance"`
	Urgency     int    `json:"urgency"`
	TimePeriod  string `json:"time_period"`
	DueDate     string `json:"due_date,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type quadrantResponse struct {
	UrgentImportant       []taskResponse `json:"urgent_important"`
	NotUrgentImportant    []taskResponse `json:"not_urgent_important"`
	UrgentNotImportant    []taskResponse `json:"urgent_not_important"`
	NotUrgentNotImportant []taskResponse `json:"not_urgent_not_important"`
}

func toTaskResponse(t core.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Importance:  t.Importance,
		Urgency:     t.Urgency,
		TimePeriod:  string(t.TimePeriod),
		CreatedAt:   formatTimestamp(t.CreatedAt),
		UpdatedAt:   formatTimestamp(t.UpdatedAt),
	}
	if !t.DueDate.IsZero() {
		resp.DueDate = formatDate(t.DueDate)
	}
	return resp
}

func toTaskResponses(tasks []core.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func (req taskRequest) toDomain(userID int64) core.Task {
	return core.Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      core.TaskStatus(req.Status),
		Priority:    core.TaskPriority(req.Priority),
		Importance:  req.Importance,
		Urgency:     req.Urgency,
		TimePeriod:  core.TaskPeriod(req.TimePeriod),
		DueDate:     req.DueDate.time,
	}
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := s.tasks.Create(r.Context(), req.toDomain(currentUser(r).ID))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(created))
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	t, err := s.tasks.Get(r.Context(), id, currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(t))
}

func (s *Server) handleTasksByPeriod(w http.ResponseWriter, r *http.Request) {
	period := core.TaskPeriod(r.PathValue("period"))

	tasks, err := s.tasks.ListByPeriod(r.Context(), currentUser(r).ID, period)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (s *Server) handleTaskQuadrant(w http.ResponseWriter, r *http.Request) {
	view, err := s.tasks.Quadrant(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quadrantResponse{
		UrgentImportant:       toTaskResponses(view.UrgentImportant),
		NotUrgentImportant:    toTaskResponses(view.NotUrgentImportant),
		UrgentNotImportant:    toTaskResponses(view.UrgentNotImportant),
		NotUrgentNotImportant: toTaskResponses(view.NotUrgentNotImportant),
	})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req taskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	task := req.toDomain(currentUser(r).ID)
	task.ID = id
	updated, err := s.tasks.Update(r.Context(), task)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(updated))
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req taskStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.tasks.UpdateStatus(r.Context(), id, currentUser(r).ID, core.TaskStatus(req.Status))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(updated))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := s.tasks.Delete(r.Context(), id, currentUser(r).ID); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
