// Package store provides Registry implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/uom-engine/scale"
)

// =============================================================================
// MEMORY REGISTRY - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	converters map[string]*scale.Converter
}

func NewMemory() *Memory {
	return &Memory{converters: make(map[string]*scale.Converter)}
}

// Save stores a converter. Names are unique; a second Save with the same
// name is rejected with ErrDuplicateName.
func (m *Memory) Save(_ context.Context, c *scale.Converter) error {
	if err := c.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.converters[c.Name]; exists {
		return scale.ErrDuplicateName
	}
	m.converters[c.Name] = c
	return nil
}

// Replace stores a converter, overwriting any existing one with the name.
func (m *Memory) Replace(_ context.Context, c *scale.Converter) error {
	if err := c.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.converters[c.Name] = c
	return nil
}

func (m *Memory) Get(_ context.Context, name string) (*scale.Converter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.converters[name]
	if !ok {
		return nil, scale.ErrConverterNotFound
	}
	return c, nil
}

func (m *Memory) List(_ context.Context) ([]*scale.Converter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*scale.Converter, 0, len(m.converters))
	for _, c := range m.converters {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.converters[name]; !ok {
		return scale.ErrConverterNotFound
	}
	delete(m.converters, name)
	return nil
}

var _ scale.Registry = (*Memory)(nil)
