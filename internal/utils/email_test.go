package utils

import "testing"

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  User@Example.COM "); got != "user@example.com" {
		t.Fatalf("got %q", got)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.co", "User.Name+tag@example.org", " padded@example.com "}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v", email, err)
		}
	}

	invalid := []string{"", "plain", "no@tld", "two@@example.com", "spa ce@example.com"}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) accepted", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); err == nil {
		t.Error("short password accepted")
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Errorf("six-character password rejected: %v", err)
	}
}

func TestGenerateTokenUnique(t *testing.T) {
	a, b := GenerateToken(), GenerateToken()
	if len(a) != 64 {
		t.Fatalf("token length %d, want 64 hex characters", len(a))
	}
	if a == b {
		t.Fatal("two tokens collided")
	}
}
