package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	// Create a temp config file
	content := `
version: v1
regions:
  - eu-west-1
  - us-east-1
member_role: OrgReadRole

delivery:
  sender: inventory@example.com
  transport: ses
  max_attachment_bytes: 1048576

offload:
  bucket: inventory-overflow
  url_expiry: 24h

retry:
  max_attempts: 5
  base_delay: 2s
`
	tmpfile, err := os.CreateTemp("", "orgscan-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = os.Remove(tmpfile.Name())
	}()

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(tmpfile.Name())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Version != "v1" {
		t.Errorf("Version = %v, want v1", cfg.Version)
	}
	if len(cfg.Regions) != 2 || cfg.Regions[0] != "eu-west-1" {
		t.Errorf("Regions = %v, want [eu-west-1 us-east-1]", cfg.Regions)
	}
	if cfg.MemberRole != "OrgReadRole" {
		t.Errorf("MemberRole = %v, want OrgReadRole", cfg.MemberRole)
	}
	if cfg.Delivery.MaxAttachmentBytes != 1048576 {
		t.Errorf("MaxAttachmentBytes = %v, want 1048576", cfg.Delivery.MaxAttachmentBytes)
	}
	if cfg.Offload.Bucket != "inventory-overflow" {
		t.Errorf("Offload.Bucket = %v, want inventory-overflow", cfg.Offload.Bucket)
	}
	if cfg.Offload.URLExpiry != 24*time.Hour {
		t.Errorf("URLExpiry = %v, want 24h", cfg.Offload.URLExpiry)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("Retry.MaxAttempts = %v, want 5", cfg.Retry.MaxAttempts)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	content := `
version: v1
delivery:
  sender: inventory@example.com
`
	tmpfile, err := os.CreateTemp("", "orgscan-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = os.Remove(tmpfile.Name())
	}()
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(tmpfile.Name())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if len(cfg.Regions) != 1 || cfg.Regions[0] != "us-east-1" {
		t.Errorf("Regions = %v, want [us-east-1]", cfg.Regions)
	}
	if cfg.MemberRole != "ResourceReadRole" {
		t.Errorf("MemberRole = %v, want ResourceReadRole", cfg.MemberRole)
	}
	if cfg.Delivery.Transport != "ses" {
		t.Errorf("Transport = %v, want ses", cfg.Delivery.Transport)
	}
	if cfg.Delivery.MaxAttachmentBytes != 35*1024*1024 {
		t.Errorf("MaxAttachmentBytes = %v, want 35MB", cfg.Delivery.MaxAttachmentBytes)
	}
	if cfg.CallTimeout != 60*time.Second {
		t.Errorf("CallTimeout = %v, want 60s", cfg.CallTimeout)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid ses",
			cfg: Config{
				Version:  "v1",
				Delivery: Delivery{Sender: "a@b.com", Transport: "ses"},
			},
			wantErr: false,
		},
		{
			name:    "missing version",
			cfg:     Config{Delivery: Delivery{Sender: "a@b.com", Transport: "ses"}},
			wantErr: true,
		},
		{
			name:    "missing sender",
			cfg:     Config{Version: "v1", Delivery: Delivery{Transport: "ses"}},
			wantErr: true,
		},
		{
			name: "smtp without endpoint",
			cfg: Config{
				Version:  "v1",
				Delivery: Delivery{Sender: "a@b.com", Transport: "smtp"},
			},
			wantErr: true,
		},
		{
			name: "unknown transport",
			cfg: Config{
				Version:  "v1",
				Delivery: Delivery{Sender: "a@b.com", Transport: "pigeon"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
