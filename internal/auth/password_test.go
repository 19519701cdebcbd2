package auth

import (
	"strings"
	"testing"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "valid", raw: "Ada@Example.com", want: "ada@example.com"},
		{name: "trim", raw: "  bob@example.org  ", want: "bob@example.org"},
		{name: "missing domain dot", raw: "bob@localhost", wantErr: true},
		{name: "spaces", raw: "bad space@example.com", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeEmail(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeEmail(%q)=%q want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLooksLikeEmail(t *testing.T) {
	if !LooksLikeEmail("a@b.c") {
		t.Fatal("expected email identifier")
	}
	if LooksLikeEmail("42") {
		t.Fatal("expected numeric identifier")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Fatal("expected error for short password")
	}
	if err := ValidatePassword(strings.Repeat("x", 73)); err == nil {
		t.Fatal("expected error for overlong password")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("password-123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "password-123" {
		t.Fatal("expected hash to differ from plaintext")
	}
	if !VerifyPassword(hash, "password-123") {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("expected wrong password to fail")
	}
	if VerifyPassword("", "password-123") {
		t.Fatal("expected empty hash to fail")
	}
}
