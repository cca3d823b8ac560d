package http

import (
	"net/http"

	"smallledger/internal/core"
)

type transactionRequest struct {
	Type        string      `json:"type"`
	Amount      amountField `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Date        dateField   `json:"date"`
}

type transactionResponse struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type categoryStatResponse struct {
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type statisticsResponse struct {
	TotalIncome  float64                         `json:"total_income"`
	TotalExpense float64                         `json:"total_expense"`
	Balance      float64                         `json:"balance"`
	ByCategory   map[string]categoryStatResponse `json:"category_stats"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      t.Amount.Float(),
		Category:    t.Category,
		Description: t.Description,
		Date:        formatDate(t.Date),
		CreatedAt:   formatTimestamp(t.CreatedAt),
		UpdatedAt:   formatTimestamp(t.UpdatedAt),
	}
}

func (req transactionRequest) toDomain(userID int64) core.Transaction {
	return core.Transaction{
		UserID:      userID,
		Type:        core.TransactionType(req.Type),
		Amount:      req.Amount.money,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date.time,
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := s.ledger.Create(r.Context(), req.toDomain(currentUser(r).ID))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.ledger.List(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	t, err := s.ledger.Get(r.Context(), id, currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tx := req.toDomain(currentUser(r).ID)
	tx.ID = id
	updated, err := s.ledger.Update(r.Context(), tx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := s.ledger.Delete(r.Context(), id, currentUser(r).ID); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ledger.Statistics(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := statisticsResponse{
		TotalIncome:  stats.TotalIncome.Float(),
		TotalExpense: stats.TotalExpense.Float(),
		Balance:      stats.Balance.Float(),
		ByCategory:   make(map[string]categoryStatResponse, len(stats.ByCategory)),
	}
	for key, stat := range stats.ByCategory {
		resp.ByCategory[key] = categoryStatResponse{
			Amount:     stat.Amount.Float(),
			Percentage: stat.Percentage,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
