package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	DefaultScrollThreshold = 500
	DefaultFlashTTL        = 5 * time.Second
	DefaultPageSize        = 20
	MaxPageSize            = 100
	DefaultSessionTTL      = 24 * time.Hour
	DefaultSessionSweep    = "@every 1m"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	ApiBaseURL        string        `yaml:"api_base_url" validate:"required,url"`
	PageSize          int           `yaml:"page_size" validate:"gte=1,lte=100"`
	ScrollThreshold   int           `yaml:"scroll_threshold" validate:"gte=0"` // px from the document bottom that triggers the next page
	FlashTTL          time.Duration `yaml:"flash_ttl"`
	OptimisticToggles bool          `yaml:"optimistic_toggles"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	SessionSweep      string        `yaml:"session_sweep"` // cron spec
	SecureCookies     bool          `yaml:"secure_cookies"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	MemcacheAddr      string        `yaml:"memcache_addr"` // empty disables the render cache
	RenderCacheTTL    time.Duration `yaml:"render_cache_ttl"`
	FormRate          float64       `yaml:"form_rate"` // tokens per second per session, 0 disables
	FormBurst         float64       `yaml:"form_burst"`
	SessionRate       float64       `yaml:"session_rate"` // new sessions per second per client address, 0 disables
	SessionBurst      float64       `yaml:"session_burst"`
	LogLevel          string        `yaml:"log_level"`
	LogJSON           bool          `yaml:"log_json"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key" validate:"required"`
}

func (s *Config) JwtKey() string {
	return s.private.JwtKey
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

// applyEnv lets deployment override the values most likely to differ per host.
func (s *Config) applyEnv() {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		s.Public.ApiBaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		s.private.JwtKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		s.Public.LogLevel = v
	}
}

func (p *Public) applyDefaults() {
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	if p.ScrollThreshold == 0 {
		p.ScrollThreshold = DefaultScrollThreshold
	}
	if p.FlashTTL == 0 {
		p.FlashTTL = DefaultFlashTTL
	}
	if p.SessionTTL == 0 {
		p.SessionTTL = DefaultSessionTTL
	}
	if p.SessionSweep == "" {
		p.SessionSweep = DefaultSessionSweep
	}
	if p.RenderCacheTTL == 0 {
		p.RenderCacheTTL = time.Hour
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
}

func (s *Config) validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(s.Public); err != nil {
		return fmt.Errorf("public config: %w", err)
	}
	if err := validate.Struct(s.private); err != nil {
		return fmt.Errorf("private config: %w", err)
	}
	return nil
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyEnv()
	cfg.Public.applyDefaults()
	if err := cfg.validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}
