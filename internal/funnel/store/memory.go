package store

import (
	"context"
	"sync"
)

// MemorySlot keeps records in process memory.
type MemorySlot struct {
	mu   sync.Mutex
	data map[SlotKey][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[SlotKey][]byte)}
}

func (m *MemorySlot) Load(_ context.Context, key SlotKey) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), data...), nil
}

func (m *MemorySlot) Save(_ context.Context, key SlotKey, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemorySlot) Clear(_ context.Context, key SlotKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Put stores raw bytes, bypassing the record encoder.
func (m *MemorySlot) Put(key SlotKey, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
}
