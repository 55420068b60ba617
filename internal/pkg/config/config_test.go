package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"indengsvc/backend/internal/pkg/errs"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		setting string
	}{
		{"missing db", Config{Auth: Auth{Username: "u", Password: "p"}}, "INDENG_DB_CONN"},
		{"no api credentials", Config{DB: DB{Conn: "postgres://x"}}, ""},
		{"complete", Config{DB: DB{Conn: "postgres://x"}, Auth: Auth{Username: "u", Password: "p"}}, ""},
	}

	for _, tc := range testCases {
		err := tc.cfg.Validate()
		if tc.setting == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}

		var ce *errs.ConfigurationError
		if !errors.As(err, &ce) {
			t.Fatalf("%s: expected ConfigurationError, got %v", tc.name, err)
		}
		if ce.Setting != tc.setting {
			t.Errorf("%s: setting = %q, want %q", tc.name, ce.Setting, tc.setting)
		}
	}
}

func TestMergeFileKeepsExplicitValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
db_conn: postgres://from-file
legacy_endpoint: https://legacy.example.com/employees
auth_username: file-user
auth_password: file-pass
allowed_origins:
  - https://a.example.com
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	c := Config{
		DB:   DB{Conn: "postgres://from-env"},
		Auth: Auth{Username: "env-user"},
	}
	if err := c.mergeFile(path); err != nil {
		t.Fatalf("mergeFile: %v", err)
	}

	if c.DB.Conn != "postgres://from-env" {
		t.Errorf("DB.Conn overwritten: %q", c.DB.Conn)
	}
	if c.Auth.Username != "env-user" {
		t.Errorf("Auth.Username overwritten: %q", c.Auth.Username)
	}
	if c.Auth.Password != "file-pass" {
		t.Errorf("Auth.Password = %q, want file-pass", c.Auth.Password)
	}
	if c.Legacy.Endpoint != "https://legacy.example.com/employees" {
		t.Errorf("Legacy.Endpoint = %q", c.Legacy.Endpoint)
	}
	if len(c.Web.AllowedOrigins) != 1 || c.Web.AllowedOrigins[0] != "https://a.example.com" {
		t.Errorf("AllowedOrigins = %v", c.Web.AllowedOrigins)
	}
}

func TestMergeFileMissing(t *testing.T) {
	var c Config
	if err := c.mergeFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewConfigFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
db_conn: file:from-file.db
manifest_name: staff.xlsx
log_file: svc.log
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INDENG_CONFIG_FILE", path)

	c, err := NewConfig(nil)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	if c.DB.Conn != "file:from-file.db" {
		t.Errorf("DB.Conn = %q", c.DB.Conn)
	}
	if c.Legacy.ManifestName != "staff.xlsx" {
		t.Errorf("Legacy.ManifestName = %q, want staff.xlsx", c.Legacy.ManifestName)
	}
	if c.Log.File != "svc.log" {
		t.Errorf("Log.File = %q, want svc.log", c.Log.File)
	}
}

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("INDENG_DB_CONN", "file:env.db")

	c, err := NewConfig(nil)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	if c.Legacy.ManifestName != DefaultManifestName {
		t.Errorf("Legacy.ManifestName = %q, want %q", c.Legacy.ManifestName, DefaultManifestName)
	}
	if c.Log.File != DefaultLogFile {
		t.Errorf("Log.File = %q, want %q", c.Log.File, DefaultLogFile)
	}
	if c.Legacy.Workers != 1 || c.DB.PoolSize != 40 {
		t.Errorf("tag defaults not applied: workers=%d pool=%d", c.Legacy.Workers, c.DB.PoolSize)
	}
}
