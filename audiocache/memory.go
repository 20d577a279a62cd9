package audiocache

import "sync"

// Memory is an in-process Cache. Safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]map[int][]byte
	totals map[string]int
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		data:   make(map[string]map[int][]byte),
		totals: make(map[string]int),
	}
}

// Get implements Cache.
func (m *Memory) Get(messageID string, part int) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[messageID][part]
	return data, ok
}

// Put implements Cache.
func (m *Memory) Put(messageID string, part int, data []byte, totalParts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[messageID] == nil {
		m.data[messageID] = make(map[int][]byte)
	}
	m.data[messageID][part] = data
	m.totals[messageID] = totalParts
}

// Has implements Cache.
func (m *Memory) Has(messageID string, part int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[messageID][part]
	return ok
}

// PartCount implements Cache.
func (m *Memory) PartCount(messageID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totals[messageID]
}
