package main

import (
	"context"
	"errors"
	"net"

	"github.com/spitzerl/workshop-b3-api/internal/api"
	"github.com/spitzerl/workshop-b3-api/internal/server"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode {
		case server.ErrCodeUnknownOwner:
			lines = append(lines, "hint: create the owner first with: wsapi user create")
		case server.ErrCodeUserHasFiles:
			lines = append(lines, "hint: delete the user's files first; see: wsapi file list --owner <id>")
		case server.ErrCodeRequestTooLarge:
			lines = append(lines, "hint: raise the limit with: wsapi config set storage.max_upload_bytes <bytes>")
		case server.ErrCodeBlobMissing:
			lines = append(lines, "hint: the stored content is gone; check storage.upload_dir on the server.")
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify WSAPI_API_URL points to a wsapi server.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase WSAPI_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a wsapi server is running at WSAPI_API_URL.",
			"hint: start local server manually with: wsapi srv",
			"hint: you can increase WSAPI_HTTP_TIMEOUT for slower environments.",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
