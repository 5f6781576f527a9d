package challenge

import (
	"testing"
)

func TestGenerateOTP_ReturnsSixDigits(t *testing.T) {
	otp, err := GenerateOTP()
	if err != nil {
		t.Fatalf("GenerateOTP: %v", err)
	}
	if len(otp) != 6 {
		t.Errorf("OTP length = %d, want 6", len(otp))
	}
	for _, c := range otp {
		if c < '0' || c > '9' {
			t.Errorf("OTP contains non-digit: %c", c)
		}
	}
}

func TestGenerateOTP_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP: %v", err)
		}
		seen[otp] = true
	}
	if len(seen) < 2 {
		t.Error("GenerateOTP returned the same code repeatedly")
	}
}

func TestHashOTP_Consistent(t *testing.T) {
	hash1 := HashOTP("123456")
	hash2 := HashOTP("123456")

	if hash1 != hash2 {
		t.Errorf("HashOTP not consistent: hash1 = %q, hash2 = %q", hash1, hash2)
	}
	if len(hash1) != 64 {
		t.Errorf("hash length = %d, want 64 (SHA-256 hex)", len(hash1))
	}
	if hash1 == HashOTP("654321") {
		t.Error("HashOTP produced same hash for different inputs")
	}
}

func TestOTPEqual(t *testing.T) {
	storedHash := HashOTP("042193")

	if !OTPEqual("042193", storedHash) {
		t.Error("OTPEqual should match correct OTP")
	}
	if OTPEqual("654321", storedHash) {
		t.Error("OTPEqual should reject incorrect OTP")
	}
	if OTPEqual("", storedHash) {
		t.Error("OTPEqual should not match empty OTP")
	}
}
