// Package config loads dashboard settings from the environment, optionally
// layered over an INI file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"gopkg.in/ini.v1"
)

// Config holds every setting the server needs.
type Config struct {
	Port        string
	APIBaseURL  string
	APITimeout  time.Duration
	PageSize    int
	Departments []string
	LogLevel    slog.Level

	// Operator login. Authentication is disabled when AdminPassword is empty.
	AdminUsername string
	AdminPassword string
	JWTSecret     string
	BcryptCost    int
	CookieSecure  bool
}

// AuthEnabled reports whether the dashboard requires an operator login.
func (c *Config) AuthEnabled() bool {
	return c.AdminPassword != ""
}

// Lookup returns the value of a setting and whether it was set.
type Lookup func(key string) (string, bool)

// Load reads settings from the environment. If DASHBOARD_CONFIG names an INI
// file, its keys provide values the environment does not set.
func Load() (*Config, error) {
	lookup := Lookup(os.LookupEnv)
	if path := os.Getenv("DASHBOARD_CONFIG"); path != "" {
		fileLookup, err := iniLookup(path)
		if err != nil {
			return nil, err
		}
		lookup = layered(lookup, fileLookup)
	}
	return Parse(lookup)
}

// Parse builds a Config from lookup, applying defaults and reporting every
// invalid setting at once.
func Parse(lookup Lookup) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	var errs *multierror.Error

	cfg := &Config{
		Port:          get("PORT", "8080"),
		APIBaseURL:    get("API_BASE_URL", "https://jsonplaceholder.typicode.com"),
		AdminUsername: get("ADMIN_USERNAME", "admin"),
		AdminPassword: get("ADMIN_PASSWORD", ""),
		JWTSecret:     get("JWT_SECRET", ""),
		// Default to secure cookies; disable only for local development.
		CookieSecure: get("COOKIE_SECURE", "true") != "false",
	}

	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = multierror.Append(errs, fmt.Errorf("API_BASE_URL %q is not an absolute URL", cfg.APIBaseURL))
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("PORT %q is not a number", cfg.Port))
	}

	pageSize, err := strconv.Atoi(get("PAGE_SIZE", "10"))
	switch {
	case err != nil:
		errs = multierror.Append(errs, fmt.Errorf("PAGE_SIZE: %w", err))
	case pageSize < 1:
		errs = multierror.Append(errs, fmt.Errorf("PAGE_SIZE must be at least 1, got %d", pageSize))
	}
	cfg.PageSize = pageSize

	timeout, err := time.ParseDuration(get("API_TIMEOUT", "10s"))
	switch {
	case err != nil:
		errs = multierror.Append(errs, fmt.Errorf("API_TIMEOUT: %w", err))
	case timeout <= 0:
		errs = multierror.Append(errs, errors.New("API_TIMEOUT must be positive"))
	}
	cfg.APITimeout = timeout

	for _, d := range strings.Split(get("DEPARTMENTS", "HR,Engineering,Sales,Marketing"), ",") {
		if d = strings.TrimSpace(d); d != "" {
			cfg.Departments = append(cfg.Departments, d)
		}
	}
	if len(cfg.Departments) == 0 {
		errs = multierror.Append(errs, errors.New("DEPARTMENTS must list at least one department"))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "INFO"))); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	cost, err := strconv.Atoi(get("BCRYPT_COST", "12"))
	switch {
	case err != nil:
		errs = multierror.Append(errs, fmt.Errorf("BCRYPT_COST: %w", err))
	case cost < 4 || cost > 14:
		errs = multierror.Append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cost))
	}
	cfg.BcryptCost = cost

	if cfg.AuthEnabled() && len(cfg.JWTSecret) < 32 {
		errs = multierror.Append(errs, errors.New("JWT_SECRET must be at least 32 characters when ADMIN_PASSWORD is set"))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// iniLookup reads an INI file and resolves keys from its default section.
// Keys may be written in any case: "page_size" matches PAGE_SIZE.
func iniLookup(path string) (Lookup, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config file %s: %w", path, err)
	}

	values := make(map[string]string)
	for _, key := range file.Section(ini.DefaultSection).Keys() {
		values[strings.ToUpper(key.Name())] = key.String()
	}

	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}, nil
}

// layered returns a Lookup that tries each source in order, skipping blank values.
func layered(sources ...Lookup) Lookup {
	return func(key string) (string, bool) {
		for _, src := range sources {
			if v, ok := src(key); ok && strings.TrimSpace(v) != "" {
				return v, true
			}
		}
		return "", false
	}
}
