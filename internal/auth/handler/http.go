package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	accountdomain "fintrack/backend/internal/account/domain"
	"fintrack/backend/internal/auth/service"
	"fintrack/backend/internal/server/middleware"
)

// AuthHandler exposes the OTP-gated credential flows over JSON/HTTP.
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler returns an AuthHandler backed by svc.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register mounts the public auth routes on r. The change-password pair is
// registered separately via RegisterProtected behind the auth middleware.
func (h *AuthHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/auth/signup", h.Signup).Methods("POST")
	r.HandleFunc("/api/auth/signup/verify", h.VerifySignup).Methods("POST")
	r.HandleFunc("/api/auth/signin", h.Signin).Methods("POST")
	r.HandleFunc("/api/auth/signin/verify", h.VerifySignin).Methods("POST")
	r.HandleFunc("/api/auth/forgot/request", h.ForgotRequest).Methods("POST")
	r.HandleFunc("/api/auth/forgot/verify", h.ForgotVerify).Methods("POST")
}

// RegisterProtected mounts the routes that require a bearer token on r.
func (h *AuthHandler) RegisterProtected(r *mux.Router) {
	r.HandleFunc("/api/auth/change-password/request", h.ChangeRequest).Methods("POST")
	r.HandleFunc("/api/auth/change-password/verify", h.ChangeVerify).Methods("POST")
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.RequestSignup(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "account created, verification code sent to email",
	})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) VerifySignup(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.VerifySignup(r.Context(), req.Email, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse("signup successful", res))
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.RequestSignin(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "code sent to email"})
}

func (h *AuthHandler) VerifySignin(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.VerifySignin(r.Context(), req.Email, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse("signin successful", res))
}

type forgotRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ForgotRequest(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.RequestReset(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "code sent to email"})
}

type resetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) ForgotVerify(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.VerifyAndReset(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset successful"})
}

func (h *AuthHandler) ChangeRequest(w http.ResponseWriter, r *http.Request) {
	acct, ok := middleware.GetAccount(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing or invalid authorization"})
		return
	}
	if err := h.svc.RequestChange(r.Context(), acct); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "code sent to email"})
}

type changeRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) ChangeVerify(w http.ResponseWriter, r *http.Request) {
	acct, ok := middleware.GetAccount(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing or invalid authorization"})
		return
	}
	var req changeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.VerifyAndSet(r.Context(), acct, req.Code, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}

// accountView is the account shape returned to clients. The credential hash
// never leaves the service layer.
type accountView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

func newAccountView(a *accountdomain.Account) accountView {
	return accountView{ID: a.ID, Username: a.Username, Email: a.Email, Verified: a.Verified}
}

func authResponse(message string, res *service.AuthResult) map[string]any {
	return map[string]any{
		"message": message,
		"token":   res.Token,
		"account": newAccountView(res.Account),
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("auth handler: encode response: %v", err)
	}
}

// writeError maps service errors to HTTP statuses. Unknown errors become a
// generic 500 so internal details never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": ve.Msg})
	case errors.Is(err, service.ErrDuplicateEmail):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email already registered"})
	case errors.Is(err, service.ErrInvalidOTP):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid code"})
	case errors.Is(err, service.ErrExpiredOTP):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "code expired"})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid credentials"})
	case errors.Is(err, service.ErrAccountNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "account not found"})
	default:
		log.Printf("auth handler: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
	}
}
