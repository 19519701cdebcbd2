package main

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/spitzerl/workshop-b3-api/internal/api"
	"github.com/spitzerl/workshop-b3-api/internal/server"
)

func TestFormatCLIError_NetworkGuidance(t *testing.T) {
	err := &net.DNSError{Err: "dial tcp: connection refused", Name: "127.0.0.1", IsTemporary: true}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: ensure a wsapi server is running at WSAPI_API_URL.") {
		t.Fatalf("expected connectivity guidance, got %v", lines)
	}
	if !containsLine(lines, "hint: start local server manually with: wsapi srv") {
		t.Fatalf("expected manual-start guidance, got %v", lines)
	}
}

func TestFormatCLIError_APIUnknownServiceGuidance(t *testing.T) {
	err := &api.APIError{Status: 404, Message: "api error: 404 Not Found"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: verify WSAPI_API_URL points to a wsapi server.") {
		t.Fatalf("expected api-url guidance, got %v", lines)
	}
}

func TestFormatCLIError_DomainGuidance(t *testing.T) {
	tests := []struct {
		code int
		hint string
	}{
		{server.ErrCodeUnknownOwner, "hint: create the owner first with: wsapi user create"},
		{server.ErrCodeUserHasFiles, "hint: delete the user's files first; see: wsapi file list --owner <id>"},
		{server.ErrCodeRequestTooLarge, "hint: raise the limit with: wsapi config set storage.max_upload_bytes <bytes>"},
	}
	for _, tt := range tests {
		err := &api.APIError{Status: 400, Code: "invalid_argument", ErrorCode: tt.code, Message: "boom"}
		if lines := formatCLIError(err); !containsLine(lines, tt.hint) {
			t.Fatalf("code %d: expected %q, got %v", tt.code, tt.hint, lines)
		}
	}
}

func TestFormatCLIError_APIInternalGuidance(t *testing.T) {
	err := &api.APIError{Status: 500, Code: "internal", Message: "internal error"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: server returned an internal error; check server logs for details.") {
		t.Fatalf("expected internal-error guidance, got %v", lines)
	}
}

func TestFormatCLIError_Timeout(t *testing.T) {
	lines := formatCLIError(fmt.Errorf("download: %w", context.DeadlineExceeded))
	if len(lines) != 2 || lines[1] != "hint: request timed out; check server health or increase WSAPI_HTTP_TIMEOUT." {
		t.Fatalf("unexpected lines %v", lines)
	}
}

func TestUniqueLinesDropsBlanksAndDuplicates(t *testing.T) {
	got := uniqueLines([]string{"a", "", "b", "a"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected lines %v", got)
	}
}

func containsLine(lines []string, expected string) bool {
	for _, line := range lines {
		if line == expected {
			return true
		}
	}
	return false
}
