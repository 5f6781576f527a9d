package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	accountdomain "fintrack/backend/internal/account/domain"
	accountrepo "fintrack/backend/internal/account/repository"
	"fintrack/backend/internal/audit"
	"fintrack/backend/internal/challenge"
	challengedomain "fintrack/backend/internal/challenge/domain"
	challengerepo "fintrack/backend/internal/challenge/repository"
	"fintrack/backend/internal/notify"
	"fintrack/backend/internal/security"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	// ErrDuplicateEmail mirrors the repository sentinel so handlers only
	// depend on this package.
	ErrDuplicateEmail = accountrepo.ErrDuplicateEmail
	// ErrInvalidCredentials is deliberately identical for "no such account"
	// and "wrong password" to avoid account enumeration via error text.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrExpiredOTP         = errors.New("OTP expired")
)

// ValidationError marks input failures rejected before any state mutation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthResult holds the outcome of a successful signup or signin verification.
type AuthResult struct {
	Token   string
	Account *accountdomain.Account
}

// AuthService implements the four OTP-gated credential flows: signup, signin,
// forgot-password, and authenticated change-password. Each step is a single
// stateless request; the only shared mutable state is the account and
// challenge storage.
type AuthService struct {
	accountRepo   accountrepo.Repository
	challengeRepo challengerepo.Repository
	hasher        *security.Hasher
	tokens        *security.TokenProvider
	sink          notify.Sink
	auditLogger   audit.AuditLogger
	otpTTL        time.Duration
}

// NewAuthService returns an AuthService with the given dependencies.
// auditLogger may be nil.
func NewAuthService(
	accountRepo accountrepo.Repository,
	challengeRepo challengerepo.Repository,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	sink notify.Sink,
	auditLogger audit.AuditLogger,
	otpTTL time.Duration,
) *AuthService {
	return &AuthService{
		accountRepo:   accountRepo,
		challengeRepo: challengeRepo,
		hasher:        hasher,
		tokens:        tokens,
		sink:          sink,
		auditLogger:   auditLogger,
		otpTTL:        otpTTL,
	}
}

// RequestSignup creates an unverified account and sends a signup code to its
// email. Email uniqueness is enforced by the storage insert itself, so a
// concurrent duplicate signup loses with ErrDuplicateEmail rather than racing
// a pre-check.
func (s *AuthService) RequestSignup(ctx context.Context, username, email, password string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	if strings.TrimSpace(username) == "" {
		return &ValidationError{Msg: "username is required"}
	}

	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	acct := &accountdomain.Account{
		ID:             uuid.New().String(),
		Username:       strings.TrimSpace(username),
		Email:          email,
		CredentialHash: hashed,
		Verified:       false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := acct.Validate(); err != nil {
		return &ValidationError{Msg: err.Error()}
	}
	if err := s.accountRepo.Create(ctx, acct); err != nil {
		return err
	}
	s.logEvent(ctx, acct.ID, "signup_request", "account", "email="+email)

	return s.issueAndDeliver(ctx, email, challengedomain.PurposeSignup,
		"Your Signup OTP",
		"<p>Your OTP is <b>%s</b>, expires in %d minutes</p>")
}

// VerifySignup checks a signup code, marks the account verified, invalidates
// all outstanding signup codes for the email, and returns a bearer token.
func (s *AuthService) VerifySignup(ctx context.Context, email, code string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if _, err := s.verifyChallenge(ctx, email, challengedomain.PurposeSignup, code); err != nil {
		return nil, err
	}
	acct, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrAccountNotFound
	}
	if err := s.consumeChallenges(ctx, email, challengedomain.PurposeSignup); err != nil {
		return nil, err
	}
	if err := s.accountRepo.SetVerified(ctx, acct.ID); err != nil {
		return nil, err
	}
	acct.Verified = true

	token, _, _, err := s.tokens.Issue(acct.ID)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, acct.ID, "signup_verify", "account", "")
	return &AuthResult{Token: token, Account: acct}, nil
}

// RequestSignin checks the credentials and sends a signin code. The code is
// issued whether or not the account has completed signup verification; the
// signin path does not re-check the verified flag (preserved behavior, see
// DESIGN.md).
func (s *AuthService) RequestSignin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return ErrInvalidCredentials
	}
	acct, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acct == nil {
		s.logEvent(ctx, "", "signin_failure", "account", "email="+email)
		return ErrInvalidCredentials
	}
	if err := s.hasher.Compare(acct.CredentialHash, []byte(password)); err != nil {
		s.logEvent(ctx, acct.ID, "signin_failure", "account", "")
		return ErrInvalidCredentials
	}
	s.logEvent(ctx, acct.ID, "signin_request", "account", "")

	return s.issueAndDeliver(ctx, email, challengedomain.PurposeSignin,
		"Signin OTP",
		"<p>Your signin OTP is <b>%s</b>, expires in %d minutes</p>")
}

// VerifySignin checks a signin code, invalidates all outstanding signin codes
// for the email, and returns a bearer token.
func (s *AuthService) VerifySignin(ctx context.Context, email, code string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if _, err := s.verifyChallenge(ctx, email, challengedomain.PurposeSignin, code); err != nil {
		return nil, err
	}
	acct, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrAccountNotFound
	}
	if err := s.consumeChallenges(ctx, email, challengedomain.PurposeSignin); err != nil {
		return nil, err
	}

	token, _, _, err := s.tokens.Issue(acct.ID)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, acct.ID, "signin_verify", "account", "")
	return &AuthResult{Token: token, Account: acct}, nil
}

// RequestReset sends a password-reset code to the email if an account exists.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	acct, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acct == nil {
		return ErrAccountNotFound
	}
	s.logEvent(ctx, acct.ID, "reset_request", "account", "")

	return s.issueAndDeliver(ctx, email, challengedomain.PurposeForgot,
		"Password Reset OTP",
		"<p>Your password reset OTP is <b>%s</b>, expires in %d minutes</p>")
}

// VerifyAndReset checks a reset code, replaces the account credential, and
// invalidates all outstanding reset codes. No token is issued; the caller must
// sign in afresh.
func (s *AuthService) VerifyAndReset(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if _, err := s.verifyChallenge(ctx, email, challengedomain.PurposeForgot, code); err != nil {
		return err
	}
	acct, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acct == nil {
		return ErrAccountNotFound
	}
	if err := s.consumeChallenges(ctx, email, challengedomain.PurposeForgot); err != nil {
		return err
	}
	hashed, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := s.accountRepo.UpdateCredential(ctx, acct.ID, hashed); err != nil {
		return err
	}
	s.logEvent(ctx, acct.ID, "reset_complete", "account", "")
	return nil
}

// RequestChange sends a change-password code to an already-authenticated
// account's email.
func (s *AuthService) RequestChange(ctx context.Context, acct *accountdomain.Account) error {
	s.logEvent(ctx, acct.ID, "password_change_request", "account", "")
	return s.issueAndDeliver(ctx, acct.Email, challengedomain.PurposeChangePassword,
		"Change Password OTP",
		"<p>Your change password OTP is <b>%s</b>, expires in %d minutes</p>")
}

// VerifyAndSet checks a change-password code for the authenticated account,
// replaces the credential, and invalidates all outstanding change-password
// codes. Already-issued bearer tokens stay valid for their full TTL; there is
// no revocation.
func (s *AuthService) VerifyAndSet(ctx context.Context, acct *accountdomain.Account, code, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if _, err := s.verifyChallenge(ctx, acct.Email, challengedomain.PurposeChangePassword, code); err != nil {
		return err
	}
	if err := s.consumeChallenges(ctx, acct.Email, challengedomain.PurposeChangePassword); err != nil {
		return err
	}
	hashed, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := s.accountRepo.UpdateCredential(ctx, acct.ID, hashed); err != nil {
		return err
	}
	s.logEvent(ctx, acct.ID, "password_change_complete", "account", "")
	return nil
}

// issueAndDeliver persists a fresh challenge and then attempts delivery.
// Ordering is deliberate: the challenge is committed before delivery is tried,
// and a delivery failure is NOT surfaced to the caller. The stored code stays
// usable for its TTL; the failure is logged and audited instead.
// Issuance never invalidates earlier outstanding codes for the same
// (email, purpose); several may coexist until one of them verifies.
func (s *AuthService) issueAndDeliver(ctx context.Context, email string, purpose challengedomain.Purpose, subject, bodyFormat string) error {
	code, err := challenge.GenerateOTP()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	ch := &challengedomain.Challenge{
		ID:        uuid.New().String(),
		Email:     email,
		CodeHash:  challenge.HashOTP(code),
		Purpose:   purpose,
		ExpiresAt: now.Add(s.otpTTL),
		CreatedAt: now,
	}
	if err := s.challengeRepo.Create(ctx, ch); err != nil {
		return err
	}

	body := fmt.Sprintf(bodyFormat, code, int(s.otpTTL.Minutes()))
	if err := s.sink.Deliver(ctx, email, subject, body); err != nil {
		log.Printf("auth: OTP delivery failed for purpose %s: %v", purpose, err)
		s.logEvent(ctx, "", "otp_delivery_failure", "challenge", "purpose="+string(purpose))
	}
	return nil
}

// verifyChallenge maps the repository's verify outcome onto the caller-visible
// OTP error taxonomy.
func (s *AuthService) verifyChallenge(ctx context.Context, email string, purpose challengedomain.Purpose, code string) (*challengedomain.Challenge, error) {
	ch, err := s.challengeRepo.Verify(ctx, email, purpose, code)
	if err != nil {
		switch {
		case errors.Is(err, challengerepo.ErrCodeNotFound):
			return nil, ErrInvalidOTP
		case errors.Is(err, challengerepo.ErrCodeExpired):
			return nil, ErrExpiredOTP
		}
		return nil, err
	}
	return ch, nil
}

// consumeChallenges deletes every outstanding challenge for (email, purpose).
// A zero deleted count means a concurrent verify consumed the codes between
// our Verify and this delete; that caller won and this one fails. This is what
// makes "first verify to complete wins" hold under concurrency.
func (s *AuthService) consumeChallenges(ctx context.Context, email string, purpose challengedomain.Purpose) error {
	n, err := s.challengeRepo.DeleteAll(ctx, email, purpose)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidOTP
	}
	return nil
}

func (s *AuthService) logEvent(ctx context.Context, accountID, action, resource, metadata string) {
	if s.auditLogger == nil {
		return
	}
	s.auditLogger.LogEvent(ctx, accountID, action, resource, metadata)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" {
		return &ValidationError{Msg: "email is required"}
	}
	if !emailRe.MatchString(email) {
		return &ValidationError{Msg: "invalid email format"}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return &ValidationError{Msg: "password must be at least 6 characters"}
	}
	return nil
}
