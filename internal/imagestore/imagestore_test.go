package imagestore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "session-1/abc", []byte("payload"), "image/jpeg"); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, "session-1/abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("unexpected payload %q", got)
	}

	// Returned slice is a copy.
	got[0] = 'X'
	again, _ := s.Get(ctx, "session-1/abc")
	if string(again) != "payload" {
		t.Fatal("store leaked its internal buffer")
	}
}

func TestMemoryStoreMissAndRemove(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_ = s.Put(ctx, "k", []byte("v"), "")
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected miss after remove, got %v", err)
	}
}

func TestNewS3StoreValidation(t *testing.T) {
	if _, err := NewS3Store(S3Config{}); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
	if _, err := NewS3Store(S3Config{Endpoint: "minio:9000"}); err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if _, err := NewS3Store(S3Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s"}); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}
