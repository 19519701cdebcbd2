package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL        = "http://127.0.0.1:3001"
	DefaultDBFileName    = ".wsapi.db"
	DefaultUploadDirName = "uploads"
	DefaultLogLevel      = "info"

	DefaultMaxUploadBytes     int64 = 100 * 1024 * 1024
	DefaultMultipartMaxMemory int64 = 8 * 1024 * 1024
	DefaultRetainHistory            = true

	configFileName           = ".wsapi.toml"
	configDirEnvKey          = "WSAPI_CONFIG_DIR"
	trustProjectConfigEnvKey = "WSAPI_TRUST_PROJECT_CONFIG"

	apiURLEnvKey        = "WSAPI_API_URL"
	dbPathEnvKey        = "WSAPI_DB"
	uploadDirEnvKey     = "WSAPI_UPLOAD_DIR"
	retainHistoryEnvKey = "WSAPI_RETAIN_HISTORY"
)

// StorageConfig defines where uploaded blobs live and how versions are kept.
type StorageConfig struct {
	UploadDir          string `toml:"upload_dir"`
	MaxUploadBytes     int64  `toml:"max_upload_bytes"`
	MultipartMaxMemory int64  `toml:"multipart_max_memory"`
	// RetainHistory keeps superseded version blobs on disk after a replace.
	RetainHistory bool `toml:"retain_history"`
}

// Config defines runtime configuration for wsapi.
type Config struct {
	APIURL                   string        `toml:"api_url"`
	DBPath                   string        `toml:"db_path"`
	LogLevel                 string        `toml:"log_level"`
	Storage                  StorageConfig `toml:"storage"`
	TrustedProjectConfigPath string        `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		DBPath:   "",
		LogLevel: DefaultLogLevel,
		Storage: StorageConfig{
			UploadDir:          "",
			MaxUploadBytes:     DefaultMaxUploadBytes,
			MultipartMaxMemory: DefaultMultipartMaxMemory,
			RetainHistory:      DefaultRetainHistory,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"api_url",
	"db_path",
	"log_level",
	"storage.upload_dir",
	"storage.max_upload_bytes",
	"storage.multipart_max_memory",
	"storage.retain_history",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "storage.upload_dir":
		return c.Storage.UploadDir, nil
	case "storage.max_upload_bytes":
		return strconv.FormatInt(c.Storage.MaxUploadBytes, 10), nil
	case "storage.multipart_max_memory":
		return strconv.FormatInt(c.Storage.MultipartMaxMemory, 10), nil
	case "storage.retain_history":
		return strconv.FormatBool(c.Storage.RetainHistory), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, configFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		if cfg.DBPath == "" {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
		if cfg.Storage.UploadDir == "" {
			cfg.Storage.UploadDir = filepath.Join(cwd, DefaultUploadDirName)
		}
	}

	if apiURL := os.Getenv(apiURLEnvKey); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath := os.Getenv(dbPathEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if uploadDir := strings.TrimSpace(os.Getenv(uploadDirEnvKey)); uploadDir != "" {
		cfg.Storage.UploadDir = uploadDir
	}
	if raw := strings.TrimSpace(os.Getenv(retainHistoryEnvKey)); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			cfg.Storage.RetainHistory = parsed
		}
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "storage.max_upload_bytes", "storage.multipart_max_memory":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "storage.retain_history":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			return strings.ToLower(value), nil
		}
		return nil, fmt.Errorf("%s must be one of debug, info, warn, error", key)
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func (c *Config) normalizeDefaults() {
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Storage.MaxUploadBytes <= 0 {
		c.Storage.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Storage.MultipartMaxMemory <= 0 {
		c.Storage.MultipartMaxMemory = DefaultMultipartMaxMemory
	}
}
