package config

import (
	"testing"
)

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoadEnvConfig_Defaults(t *testing.T) {
	cfg, err := LoadEnvConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Host != "localhost" {
		t.Errorf("Host: got %q, want localhost", cfg.Host)
	}
	if cfg.Port != 8000 {
		t.Errorf("Port: got %d, want 8000", cfg.Port)
	}
	if cfg.DBConnectionString != "rslv.db" {
		t.Errorf("DBConnectionString: got %q, want rslv.db", cfg.DBConnectionString)
	}
	if !cfg.AutoIntrospection {
		t.Error("AutoIntrospection: want true by default")
	}
	if cfg.ServicePattern != nil {
		t.Errorf("ServicePattern: want nil by default, got %v", cfg.ServicePattern)
	}
}

func TestLoadEnvConfig_Overrides(t *testing.T) {
	setEnvs(t, map[string]string{
		"RSLV_HOST":               "0.0.0.0",
		"RSLV_PORT":               "9000",
		"RSLV_DB_CONNECTION_STRING": "/var/lib/rslv/catalog.db",
		"RSLV_AUTO_INTROSPECTION": "false",
		"RSLV_SERVICE_PATTERN":    "^/ark:",
	})

	cfg, err := LoadEnvConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host: got %q", cfg.Host)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port: got %d", cfg.Port)
	}
	if cfg.DBConnectionString != "/var/lib/rslv/catalog.db" {
		t.Errorf("DBConnectionString: got %q", cfg.DBConnectionString)
	}
	if cfg.AutoIntrospection {
		t.Error("AutoIntrospection: want false")
	}
	if cfg.ServicePattern == nil || !cfg.ServicePattern.MatchString("/ark:12345") {
		t.Errorf("ServicePattern: got %v", cfg.ServicePattern)
	}
}

func TestLoadEnvConfig_InvalidPort(t *testing.T) {
	setEnvs(t, map[string]string{"RSLV_PORT": "99999"})
	if _, err := LoadEnvConfig(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestLoadEnvConfig_InvalidServicePattern(t *testing.T) {
	setEnvs(t, map[string]string{"RSLV_SERVICE_PATTERN": "(unterminated"})
	if _, err := LoadEnvConfig(); err == nil {
		t.Fatal("expected error for invalid regexp")
	}
}

func TestLoadEnvConfig_InvalidBool(t *testing.T) {
	setEnvs(t, map[string]string{"RSLV_AUTO_INTROSPECTION": "maybe"})
	if _, err := LoadEnvConfig(); err == nil {
		t.Fatal("expected error for invalid boolean")
	}
}
