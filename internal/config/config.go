// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Downloader DownloaderConfig `toml:"downloader"`
	Cache      CacheConfig      `toml:"cache"`
	Sources    SourcesConfig    `toml:"sources"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// DownloaderConfig holds the options passed through to the yt-dlp binary.
// Retries and FragmentRetries are pointers so that an explicit 0 survives
// defaulting.
type DownloaderConfig struct {
	Binary          string        `toml:"binary"`
	WorkDir         string        `toml:"work_dir"`
	SocketTimeout   time.Duration `toml:"socket_timeout"`
	Retries         *int          `toml:"retries"`
	FragmentRetries *int          `toml:"fragment_retries"`
	ChunkSize       string        `toml:"chunk_size"`
	MergeFormat     string        `toml:"merge_format"`
	AudioFormat     string        `toml:"audio_format"`
	AudioQuality    string        `toml:"audio_quality"`
}

type CacheConfig struct {
	Enabled       bool          `toml:"enabled"`
	TTL           time.Duration `toml:"ttl"`
	PruneInterval time.Duration `toml:"prune_interval"`
}

type SourcesConfig struct {
	ExtraDomains []string `toml:"extra_domains"`
}

// Load reads and parses the configuration file.
// Unresolved environment variables and validation failures are returned
// together as a *ConfigError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	cfg := Default()
	if _, err := toml.Decode(content, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()

	cfgErr := &ConfigError{
		Path:    path,
		Missing: missing,
		Errors:  cfg.Validate(),
	}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}

	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Cache: CacheConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/mediagrab.db"
	}

	d := &c.Downloader
	if d.Binary == "" {
		d.Binary = "yt-dlp"
	}
	if d.WorkDir == "" {
		d.WorkDir = filepath.Join(os.TempDir(), "mediagrab")
	}
	if d.SocketTimeout == 0 {
		d.SocketTimeout = 30 * time.Second
	}
	if d.Retries == nil {
		d.Retries = intPtr(defaultRetries)
	}
	if d.FragmentRetries == nil {
		d.FragmentRetries = intPtr(defaultRetries)
	}
	if d.ChunkSize == "" {
		d.ChunkSize = "10M"
	}
	if d.MergeFormat == "" {
		d.MergeFormat = "mp4"
	}
	if d.AudioFormat == "" {
		d.AudioFormat = "mp3"
	}
	if d.AudioQuality == "" {
		d.AudioQuality = "192K"
	}

	if c.Cache.TTL == 0 {
		c.Cache.TTL = 30 * time.Minute
	}
	if c.Cache.PruneInterval == 0 {
		c.Cache.PruneInterval = 10 * time.Minute
	}
}

const defaultRetries = 10

func intPtr(n int) *int { return &n }

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces variable references with environment values.
// Unresolved references are left in place and reported in missing.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name, op, arg := parts[1], parts[2], parts[3]

		value, ok := os.LookupEnv(name)
		switch op {
		case ":-":
			if !ok || value == "" {
				return arg
			}
			return value
		case ":?":
			if !ok || value == "" {
				missing = append(missing, fmt.Sprintf("%s: %s", name, strings.TrimSpace(arg)))
				return match
			}
			return value
		default:
			if !ok {
				missing = append(missing, name)
				return match
			}
			return value
		}
	})
	return result, missing
}
