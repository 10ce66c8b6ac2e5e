package utils

import (
	"strconv"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifySecret(t *testing.T) {
	hash, err := HashSecret("1234", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}
	if hash == "1234" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifySecret(hash, "1234") {
		t.Fatal("correct secret rejected")
	}
	if VerifySecret(hash, "4321") {
		t.Fatal("wrong secret accepted")
	}
}

func TestVerifySecretBadHash(t *testing.T) {
	if VerifySecret("not-a-bcrypt-hash", "1234") {
		t.Fatal("malformed hash accepted")
	}
}

func TestRandomCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := RandomCode(6)
		if err != nil {
			t.Fatalf("RandomCode failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 digits", code)
		}
		if _, err := strconv.Atoi(code); err != nil {
			t.Fatalf("code %q is not numeric", code)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("codes never vary")
	}
}

func TestRandomCodeInvalidLength(t *testing.T) {
	if _, err := RandomCode(0); err == nil {
		t.Fatal("expected error for zero digits")
	}
}
