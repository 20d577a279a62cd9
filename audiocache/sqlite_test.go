package audiocache

import (
	"bytes"
	"path/filepath"
	"testing"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	c, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLitePutGet(t *testing.T) {
	c := newTestSQLite(t)

	if _, ok := c.Get("m1", 0); ok {
		t.Error("empty cache should miss")
	}

	c.Put("m1", 0, []byte{1, 2, 3}, 3)
	c.Put("m1", 2, []byte{7, 8, 9}, 3)

	data, ok := c.Get("m1", 0)
	if !ok || !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("Get(m1, 0) = %v, %t", data, ok)
	}
	if !c.Has("m1", 2) {
		t.Error("Has(m1, 2) = false after Put")
	}
	if c.Has("m1", 1) {
		t.Error("Has(m1, 1) = true for a part never stored")
	}
	if got := c.PartCount("m1"); got != 3 {
		t.Errorf("PartCount(m1) = %d, want 3", got)
	}
	if got := c.PartCount("missing"); got != 0 {
		t.Errorf("PartCount(missing) = %d, want 0", got)
	}
}

func TestSQLiteOverwrite(t *testing.T) {
	c := newTestSQLite(t)
	c.Put("m1", 0, []byte{1}, 1)
	c.Put("m1", 0, []byte{2}, 1)

	data, _ := c.Get("m1", 0)
	if !bytes.Equal(data, []byte{2}) {
		t.Errorf("Get after overwrite = %v, want [2]", data)
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	c.Put("m1", 0, []byte{1, 2, 3}, 1)
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	c, err = NewSQLite(path)
	if err != nil {
		t.Fatalf("reopening cache failed: %v", err)
	}
	defer c.Close()

	data, ok := c.Get("m1", 0)
	if !ok || !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("Get after reopen = %v, %t, want cached audio back", data, ok)
	}
}
