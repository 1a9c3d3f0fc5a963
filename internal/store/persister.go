package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Persister reads and writes the serialized document as one opaque blob,
// the way the original kept it under a single browser storage key.
type Persister interface {
	// Load returns the stored bytes and whether anything was stored.
	Load() ([]byte, bool, error)
	// Save replaces the stored bytes wholesale.
	Save(data []byte) error
}

// FilePersister keeps the document in a single JSON file on disk.
type FilePersister struct {
	path string
}

// NewFilePersister builds a persister for the given path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Load reads the document file. A missing file is not an error.
func (p *FilePersister) Load() ([]byte, bool, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read document: %w", err)
	}
	return data, true, nil
}

// Save rewrites the document file.
func (p *FilePersister) Save(data []byte) error {
	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prepare document directory: %w", err)
		}
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// MemoryPersister keeps the blob in memory, for tests and throwaway hosts.
type MemoryPersister struct {
	mu    sync.Mutex
	data  []byte
	saved bool
}

// NewMemoryPersister builds an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load returns the last saved bytes.
func (p *MemoryPersister) Load() ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.saved {
		return nil, false, nil
	}
	out := make([]byte, len(p.data))
	copy(out, p.data)
	return out, true, nil
}

// Save stores a copy of the bytes.
func (p *MemoryPersister) Save(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = make([]byte, len(data))
	copy(p.data, data)
	p.saved = true
	return nil
}

// Seed preloads the persister with raw bytes, bypassing Save bookkeeping in
// tests that need a corrupt or handcrafted stored document.
func (p *MemoryPersister) SeedRaw(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = data
	p.saved = true
}
