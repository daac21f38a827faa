package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ConfigYAML(t *testing.T) {
	path := filepath.Join("..", "..", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Host == "" {
		t.Fatalf("expected database.host to be set")
	}
	if cfg.RabbitMQ.Port == 0 {
		t.Fatalf("expected rabbitmq.port to be set")
	}
	if cfg.Billing.ServiceChargePercent != 5 {
		t.Errorf("billing.service_charge_percent = %v, want 5", cfg.Billing.ServiceChargePercent)
	}
	if !cfg.Billing.RoundTotals {
		t.Errorf("billing.round_totals = false, want true")
	}
	if cfg.Printer.PollIntervalSeconds != 2 {
		t.Errorf("printer.poll_interval_seconds = %d, want 2", cfg.Printer.PollIntervalSeconds)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	os.Setenv("POS_DB_HOST", "db.internal")
	defer os.Unsetenv("POS_DB_HOST")

	path := filepath.Join("..", "..", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("database.host = %q, want env override %q", cfg.Database.Host, "db.internal")
	}
}

func TestLoad_UnknownSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("bogus:\n  key: value\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown section")
	}
}
