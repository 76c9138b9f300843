// Package config handles environment- and dotenv-based configuration loading.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// EnvConfig holds every RSLV_-prefixed setting.
type EnvConfig struct {
	Host               string
	Port               int
	DBConnectionString string
	StaticDir          string
	TemplateDir        string
	LogFilename        string
	ServicePattern     *regexp.Regexp
	AutoIntrospection  bool
	// AccessLog enables per-request identifier logging (the resolved pid,
	// method, and status). Off by default: PID values are the one piece of
	// request data operators may consider sensitive, so logging them is an
	// explicit opt-in rather than the ambient lifecycle logging RSLV always
	// does.
	AccessLog bool
}

// LoadEnvConfig reads RSLV_-prefixed environment variables (falling back to
// values already loaded from a dot-env file by LoadDotEnv) and returns a
// validated EnvConfig.
func LoadEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	var errs []string

	cfg.Host = envStr("RSLV_HOST", "localhost")
	cfg.Port = envInt("RSLV_PORT", 8000, &errs)
	cfg.DBConnectionString = envStr("RSLV_DB_CONNECTION_STRING", "rslv.db")
	cfg.StaticDir = envStr("RSLV_STATIC_DIR", "static")
	cfg.TemplateDir = envStr("RSLV_TEMPLATE_DIR", "templates")
	cfg.LogFilename = envStr("RSLV_LOG_FILENAME", "")
	cfg.AutoIntrospection = envBool("RSLV_AUTO_INTROSPECTION", true, &errs)
	cfg.AccessLog = envBool("RSLV_ACCESS_LOG", false, &errs)

	if pattern := envStr("RSLV_SERVICE_PATTERN", ""); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			errs = append(errs, fmt.Sprintf("RSLV_SERVICE_PATTERN: invalid regexp %q: %v", pattern, err))
		} else {
			cfg.ServicePattern = re
		}
	}

	validatePort("RSLV_PORT", cfg.Port, &errs)
	if strings.TrimSpace(cfg.Host) == "" {
		errs = append(errs, "RSLV_HOST must not be empty")
	}
	if strings.TrimSpace(cfg.DBConnectionString) == "" {
		errs = append(errs, "RSLV_DB_CONNECTION_STRING must not be empty")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return cfg, nil
}

// --- helpers ---

func envStr(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int, errs *[]string) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: invalid integer %q", key, v))
		return defaultVal
	}
	return n
}

func envBool(key string, defaultVal bool, errs *[]string) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: invalid boolean %q", key, v))
		return defaultVal
	}
	return b
}

func validatePort(name string, value int, errs *[]string) {
	if value < 1 || value > 65535 {
		*errs = append(*errs, fmt.Sprintf("%s: port must be 1-65535, got %d", name, value))
	}
}
