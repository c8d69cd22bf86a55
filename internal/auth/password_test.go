package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("expected a hash, got the plain password")
	}
	if !CheckPassword(hash, "secret123") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password not to match")
	}
}

func TestHashAnswer(t *testing.T) {
	tests := []struct {
		a, b string
		same bool
	}{
		{"Blue", "blue", true},
		{"  blue\t", "blue", true},
		{"blue", "red", false},
		{"dark blue", "darkblue", false},
	}
	for _, tt := range tests {
		if got := HashAnswer(tt.a) == HashAnswer(tt.b); got != tt.same {
			t.Errorf("HashAnswer(%q) == HashAnswer(%q) = %v, want %v", tt.a, tt.b, got, tt.same)
		}
	}
	if len(HashAnswer("x")) != 64 {
		t.Error("expected hex sha-256 digest")
	}
}
