package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"fintrack/backend/internal/server/middleware"
	"fintrack/backend/internal/transaction/domain"
	transactionrepo "fintrack/backend/internal/transaction/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TransactionHandler exposes the transaction ledger over JSON/HTTP. All
// routes require the auth middleware; every query is scoped to the
// authenticated account.
type TransactionHandler struct {
	transactions transactionrepo.Repository
}

func NewTransactionHandler(transactions transactionrepo.Repository) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// Register mounts the transaction routes on r, which must already sit behind
// the auth middleware.
func (h *TransactionHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/transactions", h.Create).Methods("POST")
	r.HandleFunc("/api/transactions", h.List).Methods("GET")
	r.HandleFunc("/api/transactions/{id}", h.Delete).Methods("DELETE")
}

type createRequest struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"` // RFC 3339 or YYYY-MM-DD; defaults to now
}

type transactionView struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
}

func newTransactionView(t *domain.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		Type:        string(t.Type),
		Description: t.Description,
		Amount:      t.Amount,
		Date:        t.OccurredAt.UTC().Format(time.RFC3339),
	}
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	acct, ok := middleware.GetAccount(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing or invalid authorization"})
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	occurredAt := time.Now().UTC()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid date"})
			return
		}
		occurredAt = parsed
	}
	t := &domain.Transaction{
		ID:          uuid.New().String(),
		AccountID:   acct.ID,
		Type:        domain.Type(req.Type),
		Description: req.Description,
		Amount:      req.Amount,
		OccurredAt:  occurredAt,
		CreatedAt:   time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	if err := h.transactions.Create(r.Context(), t); err != nil {
		log.Printf("transaction handler: create: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, newTransactionView(t))
}

type listResponse struct {
	Transactions []transactionView `json:"transactions"`
	Total        int64             `json:"total"`
	Page         int32             `json:"page"`
	Limit        int32             `json:"limit"`
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	acct, ok := middleware.GetAccount(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing or invalid authorization"})
		return
	}
	f, page, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	items, total, err := h.transactions.ListByAccount(r.Context(), acct.ID, f)
	if err != nil {
		log.Printf("transaction handler: list: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	views := make([]transactionView, 0, len(items))
	for _, t := range items {
		views = append(views, newTransactionView(t))
	}
	writeJSON(w, http.StatusOK, listResponse{
		Transactions: views,
		Total:        total,
		Page:         page,
		Limit:        f.Limit,
	})
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	acct, ok := middleware.GetAccount(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing or invalid authorization"})
		return
	}
	id := mux.Vars(r)["id"]
	deleted, err := h.transactions.Delete(r.Context(), id, acct.ID)
	if err != nil {
		log.Printf("transaction handler: delete: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "transaction not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
}

type badParamError struct{ param string }

func (e *badParamError) Error() string { return "invalid " + e.param }

// parseFilter reads pagination, filter, and sort query parameters. Invalid
// values are rejected rather than silently ignored.
func parseFilter(r *http.Request) (transactionrepo.Filter, int32, error) {
	q := r.URL.Query()
	f := transactionrepo.Filter{Limit: defaultPageSize}
	page := int32(1)

	if v := q.Get("page"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 1 {
			return f, 0, &badParamError{"page"}
		}
		page = int32(n)
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 1 {
			return f, 0, &badParamError{"limit"}
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		f.Limit = int32(n)
	}
	f.Offset = (page - 1) * f.Limit

	if v := q.Get("type"); v != "" {
		typ := domain.Type(v)
		if !typ.Valid() {
			return f, 0, &badParamError{"type"}
		}
		f.Type = typ
	}
	if v := q.Get("startDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, 0, &badParamError{"startDate"}
		}
		f.From = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, 0, &badParamError{"endDate"}
		}
		f.To = &t
	}
	if v := q.Get("minAmount"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, 0, &badParamError{"minAmount"}
		}
		f.MinAmount = &n
	}
	if v := q.Get("maxAmount"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, 0, &badParamError{"maxAmount"}
		}
		f.MaxAmount = &n
	}
	switch v := q.Get("sortBy"); v {
	case "", "date":
		f.SortBy = "occurred_at"
	case "amount":
		f.SortBy = "amount"
	default:
		return f, 0, &badParamError{"sortBy"}
	}
	switch q.Get("sortOrder") {
	case "", "desc":
		f.SortDesc = true
	case "asc":
		f.SortDesc = false
	default:
		return f, 0, &badParamError{"sortOrder"}
	}
	return f, page, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("transaction handler: encode response: %v", err)
	}
}
