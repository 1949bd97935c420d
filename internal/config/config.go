package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// The GitHub events API serves a bounded recent window per repository, so a
// large repository list only multiplies fetch latency without improving the
// statistics. Five matches what the service is sized for.
const maxRepositories = 5

// Database holds connection parameters for the event store. Either URL or the
// discrete fields may be set; URL wins when both are present.
type Database struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// DSN assembles a postgres connection string from the configured fields.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	host := d.Host
	if d.Port != 0 {
		host = fmt.Sprintf("%s:%d", d.Host, d.Port)
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   host,
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}
	return u.String()
}

// GitHub tunes the event source client.
type GitHub struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
}

// Config is the runtime configuration loaded once at startup and passed into
// the components that need it.
type Config struct {
	Repositories []string      `yaml:"repositories"`
	Database     Database      `yaml:"database"`
	GitHub       GitHub        `yaml:"github"`
	Window       time.Duration `yaml:"window"`
	IntervalUnit string        `yaml:"interval_unit"`
	Listen       string        `yaml:"listen"`
}

// Load reads and validates the YAML configuration file at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Config{
		GitHub: GitHub{
			BaseURL: "https://api.github.com",
			Timeout: 10 * time.Second,
			Retries: 2,
		},
		Window:       7 * 24 * time.Hour,
		IntervalUnit: "second",
		Listen:       ":5000",
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.Repositories) == 0 {
		return Config{}, errors.New("at least one repository required")
	}
	if len(cfg.Repositories) > maxRepositories {
		return Config{}, fmt.Errorf("at most %d repositories supported, got %d", maxRepositories, len(cfg.Repositories))
	}
	for _, r := range cfg.Repositories {
		if _, _, err := SplitRepo(r); err != nil {
			return Config{}, err
		}
	}

	if cfg.Database.URL == "" && (cfg.Database.Host == "" || cfg.Database.Name == "") {
		return Config{}, errors.New("database: url or host+name required")
	}

	switch cfg.IntervalUnit {
	case "second", "minute", "hour":
	default:
		return Config{}, fmt.Errorf("interval_unit must be second, minute or hour, got %q", cfg.IntervalUnit)
	}

	return cfg, nil
}

// SplitRepo splits an "owner/name" repository identifier.
func SplitRepo(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("repository must be \"owner/name\", got %q", repo)
	}
	return owner, name, nil
}

// IntervalDivisor returns the seconds-per-unit factor for the configured
// interval unit. Validated units only; Load rejects anything else.
func (c Config) IntervalDivisor() float64 {
	switch c.IntervalUnit {
	case "minute":
		return 60
	case "hour":
		return 3600
	default:
		return 1
	}
}
