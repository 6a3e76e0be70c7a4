package crypto

import "testing"

func TestHashPassword_SaltedAndOpaque(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("p@ssw0rd")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("p@ssw0rd")
	if err != nil {
		t.Fatalf("HashPassword(2): %v", err)
	}
	if h1 == "" || h2 == "" {
		t.Fatalf("empty hash")
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password are equal, salt missing")
	}
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Fatalf("CheckPassword: expected true for correct password")
	}
	if CheckPassword("wrong", hash) {
		t.Fatalf("CheckPassword: expected false for wrong password")
	}
	if CheckPassword("", hash) {
		t.Fatalf("CheckPassword: expected false for empty password")
	}
	if CheckPassword("correct horse battery staple", "not-a-bcrypt-hash") {
		t.Fatalf("CheckPassword: expected false for malformed hash")
	}
}
