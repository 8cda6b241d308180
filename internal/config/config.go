// Package config loads process configuration once at startup from the
// environment using caarlos0/env struct tags.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every environment variable any control-plane binary reads.
// Not every binary uses every field; cmd/* loads this once and passes the
// fields it needs into its own constructors.
type Config struct {
	DatabaseURL      string `env:"DATABASE_URL,required"`
	EventStreamURL   string `env:"EVENT_STREAM_URL"`
	GitOpsRepoURL    string `env:"GITOPS_REPO_URL"`
	GitOpsSSHKeyPath string `env:"GITOPS_SSH_KEY_PATH"`
	GitHubToken      string `env:"GITHUB_TOKEN"`
	OTLPEndpoint     string `env:"OTLP_ENDPOINT"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	StateDir         string `env:"STATE_DIR" envDefault:"/var/lib/orchestrator"`
	APIListenAddr    string `env:"API_LISTEN_ADDR" envDefault:":8443"`
	Organization     string `env:"ORGANIZATION" envDefault:"default"`
	TemplateCacheDir string `env:"TEMPLATE_CACHE_DIR" envDefault:"/var/lib/orchestrator/templates"`
	TemplateCacheMax int    `env:"TEMPLATE_CACHE_MAX_ENTRIES" envDefault:"64"`
	GitOpsBranch     string `env:"GITOPS_BRANCH" envDefault:"main"`
	GitOpsWorkDir    string `env:"GITOPS_WORK_DIR" envDefault:"/var/lib/orchestrator/gitops"`
	JWTSigningKey    string `env:"JWT_SIGNING_KEY"`
}

// Load reads a local .env file if present (dev convenience, ignored if
// missing) and then parses the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
