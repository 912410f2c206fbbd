// Package config loads the engine defaults from an optional YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"curldeck/pkg/translate/tcurlcmd"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeoutMs = 30000
)

// Config holds the per-user execution defaults. Boolean fields are pointers
// so an explicit `false` in the file is distinguishable from an omission.
type Config struct {
	CurlBinary      string `yaml:"curl_binary"`
	TimeoutMs       int64  `yaml:"timeout_ms"`
	FollowRedirects *bool  `yaml:"follow_redirects"`
	VerifySSL       *bool  `yaml:"verify_ssl"`
}

func Default() Config {
	followRedirects := true
	verifySSL := true
	return Config{
		CurlBinary:      "curl",
		TimeoutMs:       DefaultTimeoutMs,
		FollowRedirects: &followRedirects,
		VerifySSL:       &verifySSL,
	}
}

// Load reads path and merges it over the defaults. A missing file yields the
// defaults without error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML config data, rejecting unknown fields to catch typos
// early, and merges the result over the defaults.
func Parse(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	merged := Default()
	if cfg.CurlBinary != "" {
		merged.CurlBinary = cfg.CurlBinary
	}
	if cfg.TimeoutMs > 0 {
		merged.TimeoutMs = cfg.TimeoutMs
	}
	if cfg.FollowRedirects != nil {
		merged.FollowRedirects = cfg.FollowRedirects
	}
	if cfg.VerifySSL != nil {
		merged.VerifySSL = cfg.VerifySSL
	}
	return merged, nil
}

// Options converts the config into per-execution options.
func (c Config) Options() tcurlcmd.Options {
	opts := tcurlcmd.Options{TimeoutMs: c.TimeoutMs}
	if c.FollowRedirects != nil {
		opts.FollowRedirects = *c.FollowRedirects
	}
	if c.VerifySSL != nil {
		opts.VerifySSL = *c.VerifySSL
	}
	return opts
}
