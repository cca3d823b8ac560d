package auth

import "testing"

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	h1, err := HashPassword("hunter22", DefaultBcryptCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashPassword("hunter22", DefaultBcryptCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if h1 == h2 {
		t.Fatalf("two hashes of the same password must differ (per-call salt)")
	}
	if !CheckPassword(h1, "hunter22") || !CheckPassword(h2, "hunter22") {
		t.Fatalf("both hashes must verify against the original password")
	}
}

func TestCheckPasswordRejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", DefaultBcryptCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if CheckPassword(hash, "battery staple") {
		t.Fatalf("wrong password must not verify")
	}
	if CheckPassword(hash, "") {
		t.Fatalf("empty password must not verify")
	}
	if CheckPassword("not-a-bcrypt-hash", "correct horse") {
		t.Fatalf("garbage hash must not verify")
	}
}

func TestHashPasswordNeverStoresPlaintext(t *testing.T) {
	hash, err := HashPassword("supersecret", DefaultBcryptCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "supersecret" {
		t.Fatalf("hash must not equal the plaintext")
	}
}
