package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.Port != 8080 || cfg.Metrics.Port != 9090 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Genesis.InitialSupplyGMC != 100_000_000 {
		t.Errorf("InitialSupplyGMC = %d, want 100000000", cfg.Genesis.InitialSupplyGMC)
	}
}

func TestLoadConfigParsesHexIdentities(t *testing.T) {
	hex64 := "01" + repeat("02", 31)
	path := writeTempConfig(t, `
log_level: debug
api:
  port: 8181
genesis:
  initial_supply_gmc: 500000
  admin: "`+hex64+`"
  wallets:
    team: "`+hex64+`"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Genesis.InitialSupplyGMC != 500000 {
		t.Errorf("InitialSupplyGMC = %d, want 500000", cfg.Genesis.InitialSupplyGMC)
	}
	if cfg.Genesis.Admin[0] != 0x01 || cfg.Genesis.Admin[1] != 0x02 {
		t.Errorf("Admin did not decode: %x", cfg.Genesis.Admin)
	}
	if cfg.Genesis.Wallets.Team.Identity() != cfg.Genesis.Admin.Identity() {
		t.Errorf("expected team wallet to equal admin in this fixture (same hex), got mismatch")
	}
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

func TestLoadConfigRejectsShortIdentity(t *testing.T) {
	path := writeTempConfig(t, `
genesis:
  admin: "0102"
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for short identity, got nil")
	}
}
