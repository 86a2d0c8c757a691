package blob

import (
	"context"
	"errors"
	"testing"
)

func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	if _, err := store.Get(ctx, "kegg/hsa_04110.txt"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("get missing: err = %v, want ErrNotExist", err)
	}
	ok, err := store.Exists(ctx, "kegg/hsa_04110.txt")
	if err != nil || ok {
		t.Fatalf("exists missing = %v, %v", ok, err)
	}
	if err := store.Put(ctx, "kegg/hsa_04110.txt", []byte("hsa04110>Cell cycle")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "kegg/hsa_04110.txt", []byte("hsa04110>Cell cycle")); err != nil {
		t.Fatalf("put must overwrite silently: %v", err)
	}
	got, err := store.Get(ctx, "kegg/hsa_04110.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "hsa04110>Cell cycle" {
		t.Fatalf("get = %q", got)
	}
	ok, err = store.Exists(ctx, "kegg/hsa_04110.txt")
	if err != nil || !ok {
		t.Fatalf("exists = %v, %v", ok, err)
	}
	if err := store.Put(ctx, "kegg/hsa_05200.dat", []byte("ENTRY hsa05200")); err != nil {
		t.Fatalf("put second: %v", err)
	}
	keys, err := store.List(ctx, "kegg/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 2 || keys[0] != "kegg/hsa_04110.txt" || keys[1] != "kegg/hsa_05200.dat" {
		t.Fatalf("list = %v", keys)
	}
}

func TestFilesystemStore(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}
	storeContract(t, store)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}
	storeContract(t, store)
}

func TestS3StoreMock(t *testing.T) {
	store := NewS3MockForTests()
	if store.Driver() != DriverS3 {
		t.Fatalf("driver = %s", store.Driver())
	}
	storeContract(t, store)
}

func TestFilesystemRejectsTraversal(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"", "../escape.txt", "/abs.txt"} {
		if err := store.Put(ctx, key, []byte("x")); err == nil {
			t.Errorf("put %q: expected error", key)
		}
	}
}

func TestOpenDefaultsToFilesystem(t *testing.T) {
	store, err := Open(context.Background(), Options{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}
}

func TestOpenSelectsMemory(t *testing.T) {
	store, err := Open(context.Background(), Options{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "tape"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
