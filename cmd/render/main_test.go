package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()

	if err := loadEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing file: %v", err)
	}

	good := filepath.Join(dir, "good.env")
	if err := os.WriteFile(good, []byte("RENDER_TEST_BUCKET=nightly\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RENDER_TEST_BUCKET", "")
	os.Unsetenv("RENDER_TEST_BUCKET")
	if err := loadEnv(good); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("RENDER_TEST_BUCKET"); got != "nightly" {
		t.Errorf("RENDER_TEST_BUCKET = %q", got)
	}

	bad := filepath.Join(dir, "bad.env")
	if err := os.WriteFile(bad, []byte("S3_BUCKET=\"unterminated\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := loadEnv(bad); err == nil {
		t.Error("malformed .env accepted")
	}
}
