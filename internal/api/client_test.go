package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPTimeoutFromEnv(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})

	t.Run("duration format", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "45s")
		if got := httpTimeoutFromEnv(); got != 45*time.Second {
			t.Fatalf("expected 45s timeout, got %v", got)
		}
	})

	t.Run("integer seconds", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "25")
		if got := httpTimeoutFromEnv(); got != 25*time.Second {
			t.Fatalf("expected 25s timeout, got %v", got)
		}
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "invalid")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})
}

func TestClientUploadFileSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/files/upload" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("ownerId"); got != "7" {
			t.Errorf("expected ownerId 7, got %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "report.pdf" || string(data) != "pdf-bytes" {
			t.Errorf("unexpected upload %q %q", header.Filename, string(data))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(FileUploadResponse{ID: 1, VersionID: "v1fabc", VersionNumber: 1, Name: "report.pdf"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.UploadFile(context.Background(), 7, false, "report.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.ID != 1 || resp.VersionID != "v1fabc" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestClientDecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "file not found", Code: "not_found", ErrorCode: 2001})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetFile(context.Background(), 9)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "not_found" || apiErr.ErrorCode != 2001 {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestClientDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/files/3/download" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("content"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	n, err := NewClient(srv.URL).DownloadFile(context.Background(), 3, &buf)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if n != 7 || buf.String() != "content" {
		t.Fatalf("unexpected download %d %q", n, buf.String())
	}
}
