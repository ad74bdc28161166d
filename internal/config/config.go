package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for riffbox.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Store      StoreConfig      `toml:"store"`
	Encryption EncryptionConfig `toml:"encryption"`
	Search     SearchConfig     `toml:"search"`
	Media      MediaConfig      `toml:"media"`
	Server     ServerConfig     `toml:"server"`
}

// StoreConfig represents configuration for the collection store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", "sqlite" or "s3"

	// Filesystem-specific fields (only used when Type == "filesystem")
	Dir string `toml:"dir,omitempty"`

	// SQLite-specific fields (only used when Type == "sqlite")
	DataDir string `toml:"data_dir,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// EncryptionConfig holds the codec applied to persisted collections.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age" or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// SearchConfig controls the search index.
type SearchConfig struct {
	Language        string `toml:"language"`    // "fr" (default) or "en"
	MaxResults      int    `toml:"max_results"` // capped at 50
	RebuildOnSearch bool   `toml:"rebuild_on_search"`
}

// MediaConfig controls video ingestion.
type MediaConfig struct {
	FFmpegPath     string   `toml:"ffmpeg_path,omitempty"`
	ThumbnailWidth int      `toml:"thumbnail_width"`
	AllowedRoots   []string `toml:"allowed_roots"`
	Extensions     []string `toml:"extensions"`
	Ignore         []string `toml:"ignore"`
}

// ServerConfig controls the HTTP server started by "riffbox serve".
type ServerConfig struct {
	Listen    string   `toml:"listen"`
	WatchDirs []string `toml:"watch_dirs"`
}

// DefaultExtensions are the file extensions treated as videos.
var DefaultExtensions = []string{".mp4", ".mkv", ".mov", ".avi", ".webm", ".m4v"}

// NewConfig creates a new Config rooted at baseDir with a filesystem store
// and default key paths.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Store: StoreConfig{
			Type: "filesystem",
			Dir:  filepath.Join(baseDir, "collections"),
		},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "riffbox.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "riffbox.key"),
		},
		Search: SearchConfig{
			Language:        "fr",
			MaxResults:      50,
			RebuildOnSearch: true,
		},
		Media: MediaConfig{
			ThumbnailWidth: 320,
			Extensions:     append([]string(nil), DefaultExtensions...),
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8420",
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
