package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
)

type record struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

func TestJSONStoreLoad(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
		wantLen int
	}{
		{
			name: "valid records",
			json: `[
				{
					"title": "Test Post",
					"content": "<p>body</p>",
					"author": "Ada"
				}
			]`,
			wantErr: false,
			wantLen: 1,
		},
		{
			name:    "empty array",
			json:    `[]`,
			wantErr: false,
			wantLen: 0,
		},
		{
			name:    "null",
			json:    `null`,
			wantErr: false,
			wantLen: 0,
		},
		{
			name:    "invalid json",
			json:    `{invalid json}`,
			wantErr: true,
		},
		{
			name:    "object instead of array",
			json:    `{"title": "x"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			storePath := filepath.Join(tmpDir, "posts.json")

			if err := os.WriteFile(storePath, []byte(tt.json), 0600); err != nil {
				t.Fatalf("Failed to write test file: %v", err)
			}

			store := NewJSONStore[record](storePath)
			records, err := store.Load()

			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !errors.Is(err, ErrMalformed) {
				t.Errorf("Load() error = %v, want ErrMalformed", err)
			}
			if records == nil {
				t.Error("Load() should never return a nil slice")
			}
			if !tt.wantErr && len(records) != tt.wantLen {
				t.Errorf("Load() records len = %v, want %v", len(records), tt.wantLen)
			}
		})
	}
}

func TestJSONStoreLoadNonExistentCreatesFile(t *testing.T) {
	tmpDir := t.TempDir()
	storePath := filepath.Join(tmpDir, "posts.json")

	store := NewJSONStore[record](storePath)
	records, err := store.Load()
	if err != nil {
		t.Errorf("Load() should not error on non-existent file, got: %v", err)
	}
	if len(records) != 0 {
		t.Error("Load() should return no records for non-existent file")
	}

	data, err := os.ReadFile(storePath)
	if err != nil {
		t.Fatalf("Load() did not create the file: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("initialised file = %q, want []", data)
	}
}

func TestJSONStoreLoadQuarantinesMalformedFile(t *testing.T) {
	tmpDir := t.TempDir()
	storePath := filepath.Join(tmpDir, "posts.json")
	garbage := []byte(`[{"title": "half written`)
	if err := os.WriteFile(storePath, garbage, 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	store := NewJSONStore[record](storePath)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }

	if _, err := store.Load(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("Load() error = %v, want ErrMalformed", err)
	}

	backup := storePath + ".corrupt-1700000000000"
	data, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("backup not written: %v", err)
	}
	if string(data) != string(garbage) {
		t.Errorf("backup = %q, want %q", data, garbage)
	}
}

func TestJSONStoreSave(t *testing.T) {
	tmpDir := t.TempDir()
	storePath := filepath.Join(tmpDir, "posts.json")

	store := NewJSONStore[record](storePath)

	records := []record{
		{Title: "First", Content: "<p>one</p>", Author: "Ada"},
		{Title: "Second", Content: "<p>two</p>", Author: "Grace"},
	}

	if err := store.Save(records); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() after Save() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Load() after Save() len = %v, want 2", len(loaded))
	}
	for i := range records {
		if loaded[i] != records[i] {
			t.Errorf("Load()[%d] = %+v, want %+v", i, loaded[i], records[i])
		}
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Save() left temporary files behind: %v", entries)
	}
}

func TestJSONStoreSaveNil(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "posts.json")
	store := NewJSONStore[record](storePath)

	if err := store.Save(nil); err != nil {
		t.Fatalf("Save(nil) error = %v", err)
	}

	data, err := os.ReadFile(storePath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "[]\n" {
		t.Errorf("Save(nil) wrote %q, want %q", data, "[]\n")
	}
}

func TestJSONStoreSaveFormat(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "posts.json")
	store := NewJSONStore[record](storePath)

	err := store.Save([]record{
		{Title: "Hello World", Content: "<p>line one</p><p>line two</p>", Author: "A"},
		{Title: "Fish & Chips", Content: "<p>salt & vinegar</p>", Author: "B"},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(storePath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "posts", data)
}

func TestJSONStoreSaveUnwritableDir(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "missing", "posts.json")
	store := NewJSONStore[record](storePath)

	if err := store.Save([]record{{Title: "x"}}); err == nil {
		t.Error("Save() into a missing directory should fail")
	}
}

func TestLock(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "posts.json")

	lock, err := Lock(storePath)
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if lock.Path() != storePath+".lock" {
		t.Errorf("Path() = %v, want %v", lock.Path(), storePath+".lock")
	}

	data, err := os.ReadFile(lock.Path())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.TrimSpace(string(data)) != strconv.Itoa(os.Getpid()) {
		t.Errorf("lock file holds %q, want this pid", data)
	}

	_, err = Lock(storePath)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("second Lock() error = %v, want ErrLocked", err)
	}
	if !strings.Contains(err.Error(), strconv.Itoa(os.Getpid())) {
		t.Errorf("error %q should name the owner pid", err)
	}

	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := lock.Unlock(); err != nil {
		t.Errorf("second Unlock() error = %v", err)
	}

	again, err := Lock(storePath)
	if err != nil {
		t.Fatalf("Lock() after Unlock error = %v", err)
	}
	_ = again.Unlock()
}

func TestLockMissingDir(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "missing", "posts.json")

	_, err := Lock(storePath)
	if err == nil {
		t.Fatal("Lock() in a missing directory should fail")
	}
	if errors.Is(err, ErrLocked) {
		t.Errorf("error = %v, should not be ErrLocked", err)
	}
}
