// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validMergeFormats = map[string]bool{
	"mp4": true, "mkv": true, "webm": true, "mov": true,
}

var validAudioFormats = map[string]bool{
	"mp3": true, "m4a": true, "opus": true, "aac": true, "flac": true, "wav": true, "vorbis": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	d := c.Downloader
	if d.SocketTimeout < 0 {
		errs = append(errs, fmt.Sprintf("downloader.socket_timeout: must not be negative, got %s", d.SocketTimeout))
	}
	if d.Retries != nil && *d.Retries < 0 {
		errs = append(errs, fmt.Sprintf("downloader.retries: must not be negative, got %d", *d.Retries))
	}
	if d.FragmentRetries != nil && *d.FragmentRetries < 0 {
		errs = append(errs, fmt.Sprintf("downloader.fragment_retries: must not be negative, got %d", *d.FragmentRetries))
	}
	if d.MergeFormat != "" && !validMergeFormats[d.MergeFormat] {
		errs = append(errs, fmt.Sprintf("downloader.merge_format: must be one of mp4, mkv, webm, mov; got %q", d.MergeFormat))
	}
	if d.AudioFormat != "" && !validAudioFormats[d.AudioFormat] {
		errs = append(errs, fmt.Sprintf("downloader.audio_format: unsupported format %q", d.AudioFormat))
	}

	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Sprintf("cache.ttl: must not be negative, got %s", c.Cache.TTL))
	}
	if c.Cache.PruneInterval < 0 {
		errs = append(errs, fmt.Sprintf("cache.prune_interval: must not be negative, got %s", c.Cache.PruneInterval))
	}

	for i, domain := range c.Sources.ExtraDomains {
		if strings.TrimSpace(domain) == "" || strings.ContainsAny(domain, "/:") {
			errs = append(errs, fmt.Sprintf("sources.extra_domains[%d]: %q is not a bare domain", i, domain))
		}
	}

	return errs
}
