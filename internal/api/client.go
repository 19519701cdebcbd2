package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spitzerl/workshop-b3-api/internal/models"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	httpTimeoutEnvKey  = "WSAPI_HTTP_TIMEOUT"
)

// Client is a simple HTTP client for the wsapi API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

// UploadFile sends content as a new logical file owned by ownerID.
func (c *Client) UploadFile(ctx context.Context, ownerID int64, isPublic bool, filename string, content io.Reader) (FileUploadResponse, error) {
	var resp FileUploadResponse
	fields := map[string]string{
		"ownerId":  strconv.FormatInt(ownerID, 10),
		"isPublic": strconv.FormatBool(isPublic),
	}
	err := c.doMultipart(ctx, http.MethodPost, "/api/files/upload", fields, filename, content, &resp)
	return resp, err
}

// ReplaceFile uploads a new version of an existing file.
func (c *Client) ReplaceFile(ctx context.Context, id int64, filename string, content io.Reader) (FileReplaceResponse, error) {
	var resp FileReplaceResponse
	err := c.doMultipart(ctx, http.MethodPut, "/api/files/"+strconv.FormatInt(id, 10), nil, filename, content, &resp)
	return resp, err
}

// ListFiles lists files. ownerID 0 means every owner.
func (c *Client) ListFiles(ctx context.Context, ownerID int64, publicOnly bool) ([]models.LogicalFile, error) {
	query := url.Values{}
	if ownerID > 0 {
		query.Set("ownerId", strconv.FormatInt(ownerID, 10))
	}
	if publicOnly {
		query.Set("public", "true")
	}
	var resp []models.LogicalFile
	err := c.do(ctx, http.MethodGet, "/api/files", query, nil, &resp)
	return resp, err
}

func (c *Client) GetFile(ctx context.Context, id int64) (models.LogicalFile, error) {
	var resp models.LogicalFile
	err := c.do(ctx, http.MethodGet, "/api/files/"+strconv.FormatInt(id, 10), nil, nil, &resp)
	return resp, err
}

func (c *Client) ListFileVersions(ctx context.Context, id int64) ([]models.FileVersion, error) {
	var resp []models.FileVersion
	err := c.do(ctx, http.MethodGet, "/api/files/"+strconv.FormatInt(id, 10)+"/versions", nil, nil, &resp)
	return resp, err
}

func (c *Client) DeleteFile(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/files/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// DownloadFile streams the current version of a file into w.
func (c *Client) DownloadFile(ctx context.Context, id int64, w io.Writer) (int64, error) {
	return c.download(ctx, "/api/files/"+strconv.FormatInt(id, 10)+"/download", w)
}

// DownloadVersion streams one specific version into w.
func (c *Client) DownloadVersion(ctx context.Context, versionID string, w io.Writer) (int64, error) {
	return c.download(ctx, "/api/files/versions/"+url.PathEscape(versionID)+"/download", w)
}

func (c *Client) CreateUser(ctx context.Context, req UserCreateRequest) (models.User, error) {
	var resp models.User
	err := c.do(ctx, http.MethodPost, "/api/users", nil, req, &resp)
	return resp, err
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var resp []models.User
	err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &resp)
	return resp, err
}

// GetUser fetches a user by numeric id or email.
func (c *Client) GetUser(ctx context.Context, identifier string) (models.User, error) {
	var resp models.User
	err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(identifier), nil, nil, &resp)
	return resp, err
}

func (c *Client) UpdateUser(ctx context.Context, identifier string, req UserUpdateRequest) (models.User, error) {
	var resp models.User
	err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(identifier), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteUser(ctx context.Context, identifier string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(identifier), nil, nil, nil)
}

func (c *Client) CreateResource(ctx context.Context, req ResourceCreateRequest) (models.Resource, error) {
	var resp models.Resource
	err := c.do(ctx, http.MethodPost, "/api/resources", nil, req, &resp)
	return resp, err
}

func (c *Client) ListResources(ctx context.Context, ownerID int64) ([]models.Resource, error) {
	query := url.Values{}
	if ownerID > 0 {
		query.Set("ownerId", strconv.FormatInt(ownerID, 10))
	}
	var resp []models.Resource
	err := c.do(ctx, http.MethodGet, "/api/resources", query, nil, &resp)
	return resp, err
}

func (c *Client) GetResource(ctx context.Context, id int64) (models.Resource, error) {
	var resp models.Resource
	err := c.do(ctx, http.MethodGet, "/api/resources/"+strconv.FormatInt(id, 10), nil, nil, &resp)
	return resp, err
}

func (c *Client) UpdateResource(ctx context.Context, id int64, req ResourceUpdateRequest) (models.Resource, error) {
	var resp models.Resource
	err := c.do(ctx, http.MethodPut, "/api/resources/"+strconv.FormatInt(id, 10), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteResource(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/resources/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// Verify checks an email/password pair.
func (c *Client) Verify(ctx context.Context, req VerifyRequest) (VerifyResponse, error) {
	var resp VerifyResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/verify", nil, req, &resp)
	return resp, err
}

func (c *Client) download(ctx context.Context, path string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return 0, decodeError(resp)
	}
	return io.Copy(w, resp.Body)
}

func (c *Client) doMultipart(ctx context.Context, method, path string, fields map[string]string, filename string, content io.Reader, out any) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return &APIError{
			Status:    resp.StatusCode,
			Code:      errResp.Code,
			ErrorCode: errResp.ErrorCode,
			Message:   errResp.Error,
		}
	}
	return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("api error: %s", resp.Status)}
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
