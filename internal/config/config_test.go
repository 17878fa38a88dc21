package config

import "testing"

func TestLoadImageConfigLocal(t *testing.T) {
	t.Setenv("IMAGE_MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_ROOT_USER", "minio")
	t.Setenv("MINIO_ROOT_PASSWORD", "secret")
	t.Setenv("IMAGE_S3_BUCKET", "")

	cfg := loadImageConfig("local")
	if !cfg.Enabled {
		t.Fatal("expected enabled with endpoint set")
	}
	if cfg.Endpoint != "minio:9000" || cfg.AccessKey != "minio" || cfg.SecretKey != "secret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.UseSSL {
		t.Fatal("local env must not use SSL")
	}
	if cfg.Bucket != "fridgechef-images" {
		t.Fatalf("expected default bucket, got %q", cfg.Bucket)
	}
}

func TestLoadImageConfigDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("IMAGE_MINIO_ENDPOINT", "")
	t.Setenv("IMAGE_S3_ENDPOINT", "")
	cfg := loadImageConfig("production")
	if cfg.Enabled {
		t.Fatal("expected disabled without endpoint")
	}
	if !cfg.UseSSL {
		t.Fatal("non-local env defaults to SSL")
	}
}

func TestResolveImageUseSSLOverride(t *testing.T) {
	t.Setenv("IMAGE_S3_USE_SSL", "false")
	if resolveImageUseSSL("production") {
		t.Fatal("explicit false should disable SSL")
	}
	t.Setenv("IMAGE_S3_USE_SSL", "not-a-bool")
	if !resolveImageUseSSL("production") {
		t.Fatal("unparsable value should default to SSL")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "x", "y"); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
	if got := firstNonEmpty("", "  "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
