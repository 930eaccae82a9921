package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestPutGetDeleteRoundTrip(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemStore: %v", err)
	}
	ctx := context.Background()

	handle, err := store.Put(ctx, "apps/app_1/icon.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if handle != "apps/app_1/icon.png" {
		t.Fatalf("handle = %q, want the logical path back", handle)
	}

	data, err := store.Get(ctx, handle)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("Get returned %q", data)
	}

	if err := store.Delete(ctx, handle); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, handle); err == nil {
		t.Fatal("Get after Delete should fail")
	}
}

func TestDeleteMissingBlobIsNotAnError(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemStore: %v", err)
	}
	if err := store.Delete(context.Background(), "apps/app_1/gone.apk"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestPutContainsTraversalPaths(t *testing.T) {
	root := t.TempDir()
	store, err := NewFilesystemStore(root)
	if err != nil {
		t.Fatalf("NewFilesystemStore: %v", err)
	}

	if _, err := store.Put(context.Background(), "../escape.txt", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "escape.txt")); err == nil {
		t.Fatal("blob escaped the store root")
	}
	if _, err := os.Stat(filepath.Join(root, "escape.txt")); err != nil {
		t.Fatalf("blob was not contained under the root: %v", err)
	}
}

func TestPutRejectsEmptyPath(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemStore: %v", err)
	}
	if _, err := store.Put(context.Background(), "", []byte("x")); err == nil {
		t.Fatal("Put with an empty path should fail")
	}
}

func TestNewFilesystemStoreRequiresRoot(t *testing.T) {
	if _, err := NewFilesystemStore("  "); err == nil {
		t.Fatal("blank root should be rejected")
	}
}
