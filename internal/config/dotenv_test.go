package config

import (
	"os"
	"path/filepath"
	"testing"
)

// withHome points HOME at a fresh temp dir and returns ~/.brewq inside it.
func withHome(t *testing.T, create bool) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".brewq")
	if create {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadDotEnv_NotExist(t *testing.T) {
	withHome(t, false)

	m, err := LoadDotEnv()
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
}

func TestLoadDotEnv_ParsesKeyValue(t *testing.T) {
	dir := withHome(t, true)
	body := "# comment\nA=1\n  B = two\nnoequals\n=orphan\nC=x=y\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := LoadDotEnv()
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if m["A"] != "1" || m["B"] != " two" || m["C"] != "x=y" {
		t.Fatalf("unexpected map: %v", m)
	}
	if len(m) != 3 {
		t.Fatalf("expected 3 keys, got %v", m)
	}
}

func TestGetConfigValue_EnvOverridesDotEnv(t *testing.T) {
	dir := withHome(t, true)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("K=fromdotenv\nL=onlydotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("K", "fromenv")

	v, err := GetConfigValue("K")
	if err != nil {
		t.Fatalf("GetConfigValue: %v", err)
	}
	if v != "fromenv" {
		t.Fatalf("expected env override, got %q", v)
	}
	v, err = GetConfigValue("L")
	if err != nil {
		t.Fatalf("GetConfigValue: %v", err)
	}
	if v != "onlydotenv" {
		t.Fatalf("expected dotenv fallback, got %q", v)
	}
}

func TestEnsureDotEnvTemplate(t *testing.T) {
	dir := withHome(t, true)
	p := filepath.Join(dir, ".env")

	if err := EnsureDotEnvTemplate(); err != nil {
		t.Fatalf("EnsureDotEnvTemplate: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) == 0 {
		t.Fatalf("expected non-empty template")
	}

	if err := os.WriteFile(p, []byte("BREWQ_LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDotEnvTemplate(); err != nil {
		t.Fatalf("EnsureDotEnvTemplate: %v", err)
	}
	b, err = os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "BREWQ_LOG_LEVEL=debug\n" {
		t.Fatalf("template overwrote existing file: %q", string(b))
	}
}
