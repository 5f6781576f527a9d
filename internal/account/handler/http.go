package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"fintrack/backend/internal/account/domain"
	accountrepo "fintrack/backend/internal/account/repository"
	"fintrack/backend/internal/server/middleware"
)

// ProfileHandler serves the authenticated account's own profile.
type ProfileHandler struct {
	accounts accountrepo.Repository
}

func NewProfileHandler(accounts accountrepo.Repository) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

// Register mounts the profile routes on r, which must already sit behind the
// auth middleware.
func (h *ProfileHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/users/me", h.Get).Methods("GET")
	r.HandleFunc("/api/users/me", h.Update).Methods("PUT")
}

type profileView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Verified  bool   `json:"verified"`
	CreatedAt string `json:"createdAt"`
}

func newProfileView(a *domain.Account) profileView {
	return profileView{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Verified:  a.Verified,
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	acct, ok := middleware.GetAccount(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing or invalid authorization"})
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(acct))
}

type updateProfileRequest struct {
	Username string `json:"username"`
}

// Update changes the account's username. Email is the identity key and cannot
// be changed here.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	acct, ok := middleware.GetAccount(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing or invalid authorization"})
		return
	}
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "username is required"})
		return
	}
	if err := h.accounts.UpdateUsername(r.Context(), acct.ID, username); err != nil {
		log.Printf("profile handler: update username: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	acct.Username = username
	writeJSON(w, http.StatusOK, newProfileView(acct))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("profile handler: encode response: %v", err)
	}
}
