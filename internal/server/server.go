package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spitzerl/workshop-b3-api/internal/blobstore"
	"github.com/spitzerl/workshop-b3-api/internal/config"
	"github.com/spitzerl/workshop-b3-api/internal/store"
)

const (
	allowRemoteEnvKey = "WSAPI_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 5 * time.Minute
	writeTimeout      = 5 * time.Minute
	idleTimeout       = 60 * time.Second
)

// Backend is the persistence surface the server needs.
type Backend interface {
	store.FileStore
	store.UserStore
	store.ResourceStore
}

// Options configures a Server.
type Options struct {
	MaxUploadBytes     int64
	MultipartMaxMemory int64
	RetainHistory      bool
	Metrics            *Metrics
}

// OptionsFromConfig maps the storage section of the config file.
func OptionsFromConfig(cfg config.StorageConfig) Options {
	return Options{
		MaxUploadBytes:     cfg.MaxUploadBytes,
		MultipartMaxMemory: cfg.MultipartMaxMemory,
		RetainHistory:      cfg.RetainHistory,
	}
}

// Server wraps HTTP handlers for the wsapi API.
type Server struct {
	addr               string
	fileService        *FileService
	userService        *UserService
	resourceService    *ResourceService
	metrics            *Metrics
	logger             *slog.Logger
	maxUploadBytes     int64
	multipartMaxMemory int64

	mu         sync.Mutex
	httpServer *http.Server
}

// New creates a new server instance around an already opened store.
func New(addr string, backend Backend, blobs blobstore.BlobStore, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = config.DefaultMaxUploadBytes
	}
	if opts.MultipartMaxMemory <= 0 {
		opts.MultipartMaxMemory = config.DefaultMultipartMaxMemory
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}

	return &Server{
		addr: addr,
		fileService: NewFileService(backend, backend, blobs, FileServiceOptions{
			RetainHistory: opts.RetainHistory,
			Logger:        logger,
			Metrics:       opts.Metrics,
		}),
		userService:        NewUserService(backend),
		resourceService:    NewResourceService(backend),
		metrics:            opts.Metrics,
		logger:             logger,
		maxUploadBytes:     opts.MaxUploadBytes,
		multipartMaxMemory: opts.MultipartMaxMemory,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// ListenAndServe starts the HTTP server. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.log().Info("starting server", "addr", ln.Addr().String())
	server := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.log().Handler(), slog.LevelWarn),
	}
	s.mu.Lock()
	s.httpServer = server
	s.mu.Unlock()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.httpServer
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	s.log().Info("shutting down server")
	return server.Shutdown(ctx)
}

// FileService exposes the orchestrator for in-process callers such as seeding.
func (s *Server) FileService() *FileService {
	return s.fileService
}

// UserService exposes user operations for in-process callers.
func (s *Server) UserService() *UserService {
	return s.userService
}

// ResourceService exposes resource operations for in-process callers.
func (s *Server) ResourceService() *ResourceService {
	return s.resourceService
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
