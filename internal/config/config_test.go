package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"surveycast/internal/model"
)

// unsetenv clears keys for the test and restores them afterwards
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADMIN_IDS", "42,7")
	unsetenv(t, "PORT", "EXPORT_FORMAT", "CORRELATION_TTL")

	cfg, err := Load("does-not-exist.env")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if len(cfg.AdminIDs) != 2 || cfg.AdminIDs[0] != 42 || cfg.AdminIDs[1] != 7 {
		t.Errorf("AdminIDs = %v, want [42 7]", cfg.AdminIDs)
	}
	if cfg.ExportFormat != model.ExportXLSX {
		t.Errorf("ExportFormat = %q, want xlsx", cfg.ExportFormat)
	}
	if cfg.CorrelationTTL != 0 {
		t.Errorf("CorrelationTTL = %s, want 0 (no expiry)", cfg.CorrelationTTL)
	}
}

func TestLoadCorrelationTTLOptIn(t *testing.T) {
	t.Setenv("ADMIN_IDS", "1")
	t.Setenv("CORRELATION_TTL", "72h")

	cfg, err := Load("does-not-exist.env")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CorrelationTTL != 72*time.Hour {
		t.Errorf("CorrelationTTL = %s, want 72h", cfg.CorrelationTTL)
	}
}

func TestLoadRequiresAdmins(t *testing.T) {
	unsetenv(t, "ADMIN_IDS")

	_, err := Load("does-not-exist.env")
	if !errors.Is(err, ErrNoAdmins) {
		t.Fatalf("err = %v, want ErrNoAdmins", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{AdminIDs: []int64{1}, ExportFormat: model.ExportCSV, CorrelationTTL: time.Hour}, false},
		{"bad format", Config{AdminIDs: []int64{1}, ExportFormat: "pdf", CorrelationTTL: time.Hour}, true},
		{"zero ttl means no expiry", Config{AdminIDs: []int64{1}, ExportFormat: model.ExportXLSX}, false},
		{"negative ttl", Config{AdminIDs: []int64{1}, ExportFormat: model.ExportXLSX, CorrelationTTL: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
