package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "fintrack-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "fintrack-auth")
	}
	if cfg.JWTAudience != "fintrack-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "fintrack-api")
	}
	if cfg.JWTTTL != "168h" {
		t.Errorf("JWTTTL = %q, want %q", cfg.JWTTTL, "168h")
	}
	if cfg.OTPTTLMinutes != 10 {
		t.Errorf("OTPTTLMinutes = %d, want 10", cfg.OTPTTLMinutes)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.MailFrom != "no-reply@fintrack.local" {
		t.Errorf("MailFrom = %q, want default", cfg.MailFrom)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("OTP_TTL_MINUTES", "5")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.OTPTTLMinutes != 5 {
		t.Errorf("OTPTTLMinutes = %d, want 5", cfg.OTPTTLMinutes)
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("BCRYPT_COST", "99")

	if _, err := Load(); err == nil {
		t.Fatal("Load with BCRYPT_COST=99 should return error")
	}
}

func TestTokenTTL(t *testing.T) {
	cfg := &Config{JWTTTL: "24h"}
	if got := cfg.TokenTTL(); got != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", got)
	}
	cfg = &Config{JWTTTL: "garbage"}
	if got := cfg.TokenTTL(); got != 168*time.Hour {
		t.Errorf("TokenTTL fallback = %v, want 168h", got)
	}
	cfg = &Config{}
	if got := cfg.TokenTTL(); got != 168*time.Hour {
		t.Errorf("TokenTTL unset = %v, want 168h", got)
	}
}

func TestOTPTTL(t *testing.T) {
	cfg := &Config{OTPTTLMinutes: 3}
	if got := cfg.OTPTTL(); got != 3*time.Minute {
		t.Errorf("OTPTTL = %v, want 3m", got)
	}
	cfg = &Config{}
	if got := cfg.OTPTTL(); got != 10*time.Minute {
		t.Errorf("OTPTTL unset = %v, want 10m", got)
	}
}
