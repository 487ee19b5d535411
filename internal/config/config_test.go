package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.Path != "stationmaster.db" {
		t.Errorf("Path = %q", cfg.Database.Path)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Telegraph.DigestCron != "0 8 * * *" {
		t.Errorf("DigestCron = %q", cfg.Telegraph.DigestCron)
	}
}

func TestParse_MySQL(t *testing.T) {
	yaml := `
database:
  driver: mysql
  host: db.example.com
  name: layout
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("Host = %q", cfg.Database.Host)
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("Port = %d, want default 3306", cfg.Database.Port)
	}
	if cfg.Database.Name != "layout" {
		t.Errorf("Name = %q", cfg.Database.Name)
	}
}

func TestParse_BadDriver(t *testing.T) {
	_, err := Parse([]byte("database:\n  driver: mongo\n"))
	if err == nil {
		t.Fatal("Parse with bad driver: want error")
	}
	if !strings.Contains(err.Error(), "must be mysql or sqlite") {
		t.Errorf("error = %v", err)
	}
}

func TestParse_SlackNeedsChannel(t *testing.T) {
	yaml := `
telegraph:
  slack:
    bot_token: xoxb-test
`
	if _, err := Parse([]byte(yaml)); err == nil {
		t.Fatal("Parse with token but no channel: want error")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
}
