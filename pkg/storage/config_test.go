package storage_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/binsort/pkg/storage"
)

func TestConfigDefaults(t *testing.T) {
	var cfg storage.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if cfg.Backend != storage.BackendLocal {
		t.Errorf("backend: got %s", cfg.Backend)
	}
	if cfg.Root != "uploads" {
		t.Errorf("root: got %s", cfg.Root)
	}
	if cfg.MaxListSize != 500 {
		t.Errorf("max list size: got %d", cfg.MaxListSize)
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("TEST_STORAGE_BACKEND", "azure")
	t.Setenv("TEST_STORAGE_ACCOUNT_URL", "https://bins.blob.core.windows.net")
	t.Setenv("TEST_STORAGE_MAX_LIST", "999999")

	var cfg storage.Config
	err := cfg.Finalize(&storage.Env{
		Backend:     "TEST_STORAGE_BACKEND",
		AccountURL:  "TEST_STORAGE_ACCOUNT_URL",
		MaxListSize: "TEST_STORAGE_MAX_LIST",
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if cfg.Backend != storage.BackendAzure {
		t.Errorf("backend: got %s", cfg.Backend)
	}
	if cfg.MaxListSize != storage.MaxListCap {
		t.Errorf("max list size: got %d, want cap %d", cfg.MaxListSize, storage.MaxListCap)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr string
	}{
		{"unknown backend", storage.Config{Backend: "s3"}, "unsupported storage backend"},
		{"azure without credentials", storage.Config{Backend: "azure"}, "connection_string or account_url"},
		{"s3 key without secret", storage.Config{Backend: "s3", AccessKeyID: "AKIA"}, "secret_access_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error: got %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := storage.Config{Backend: "local", Root: "uploads", MaxListSize: 500}
	base.Merge(&storage.Config{Root: "/srv/bins"})

	if base.Backend != "local" || base.Root != "/srv/bins" || base.MaxListSize != 500 {
		t.Errorf("merge: got %+v", base)
	}
}
