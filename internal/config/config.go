package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type FetcherConfig struct {
	UserAgent     string `yaml:"userAgent"`
	TimeoutMs     int    `yaml:"timeoutMs"`
	RespectRobots bool   `yaml:"respectRobots"`
}

// BrowserConfig controls the optional rod-backed fetcher for JS-heavy
// recipe sites.
type BrowserConfig struct {
	Enabled   bool   `yaml:"enabled"`
	URL       string `yaml:"url"`
	TimeoutMs int    `yaml:"timeoutMs"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

// RateLimitConfig caps import requests per minute per client so a
// misbehaving caller cannot hammer recipe sites through us. Zero
// disables the limit.
type RateLimitConfig struct {
	ImportPerMinute int `yaml:"importPerMinute"`
}

// DriveConfig holds the remote file store endpoints. The defaults are
// the public Google Drive v3 API; tests and self-hosted stores override
// them.
type DriveConfig struct {
	APIBaseURL    string `yaml:"apiBaseURL"`
	UploadBaseURL string `yaml:"uploadBaseURL"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Fetcher   FetcherConfig   `yaml:"fetcher"`
	Browser   BrowserConfig   `yaml:"browser"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Drive     DriveConfig     `yaml:"drive"`
}

func Load(path string) *Config {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config: %v", err)
	}

	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Fetcher.TimeoutMs == 0 {
		c.Fetcher.TimeoutMs = 15000
	}
	if c.Browser.TimeoutMs == 0 {
		c.Browser.TimeoutMs = c.Fetcher.TimeoutMs
	}
	if c.Database.Path == "" {
		c.Database.Path = "ladle.db"
	}
}
