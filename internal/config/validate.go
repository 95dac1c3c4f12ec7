package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"auto": true, "text": true, "json": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if strings.TrimSpace(c.Paths.Input) == "" {
		errs = append(errs, "paths.input: required")
	}
	if strings.TrimSpace(c.Paths.Output) == "" {
		errs = append(errs, "paths.output: required")
	}
	if strings.TrimSpace(c.Paths.Cache) == "" {
		errs = append(errs, "paths.cache: required")
	}

	if c.Scraper.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("scraper.timeout: must not be negative, got %s", c.Scraper.Timeout))
	}

	if c.TMDB.CacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.cache_ttl: must not be negative, got %s", c.TMDB.CacheTTL))
	}
	if c.TMDB.BaseURL != "" {
		u, err := url.Parse(c.TMDB.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("tmdb.base_url: must be an absolute URL, got %q", c.TMDB.BaseURL))
		}
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if !validLogFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format: must be one of auto, text, json; got %q", c.Log.Format))
	}

	return errs
}
