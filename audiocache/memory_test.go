package audiocache

import (
	"bytes"
	"sync"
	"testing"
)

func TestMemoryPutGet(t *testing.T) {
	c := NewMemory()

	if _, ok := c.Get("m1", 0); ok {
		t.Error("empty cache should miss")
	}

	c.Put("m1", 0, []byte{1, 2, 3}, 2)
	c.Put("m1", 1, []byte{4, 5, 6}, 2)

	data, ok := c.Get("m1", 0)
	if !ok || !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("Get(m1, 0) = %v, %t", data, ok)
	}
	if !c.Has("m1", 1) {
		t.Error("Has(m1, 1) = false after Put")
	}
	if c.Has("m1", 2) {
		t.Error("Has(m1, 2) = true for a part never stored")
	}
	if c.Has("m2", 0) {
		t.Error("Has(m2, 0) = true for a message never stored")
	}
	if got := c.PartCount("m1"); got != 2 {
		t.Errorf("PartCount(m1) = %d, want 2", got)
	}
	if got := c.PartCount("m2"); got != 0 {
		t.Errorf("PartCount(m2) = %d, want 0", got)
	}
}

func TestMemoryOverwrite(t *testing.T) {
	c := NewMemory()
	c.Put("m1", 0, []byte{1}, 1)
	c.Put("m1", 0, []byte{2}, 1)

	data, _ := c.Get("m1", 0)
	if !bytes.Equal(data, []byte{2}) {
		t.Errorf("Get after overwrite = %v, want [2]", data)
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	c := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(part int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Put("m1", part, []byte{byte(j)}, 8)
				c.Get("m1", part)
				c.Has("m1", part)
				c.PartCount("m1")
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		if !c.Has("m1", i) {
			t.Errorf("part %d missing after concurrent writes", i)
		}
	}
}
