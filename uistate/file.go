package uistate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// fileData is the on-disk layout: scope → section → state.
type fileData struct {
	Scopes map[string]map[string]SectionState `json:"scopes"`
}

// FileStore keeps all states in one JSON file, rewritten atomically on every
// change.
type FileStore struct {
	mu       sync.RWMutex
	filePath string
	data     fileData
}

// NewFileStore loads filePath, or starts empty if the file does not exist.
// Returns an error only on unexpected I/O or decode failures.
func NewFileStore(filePath string) (*FileStore, error) {
	f := &FileStore{filePath: filePath}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.data.Scopes = map[string]map[string]SectionState{}
			return f, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(raw, &f.data); err != nil {
		return nil, err
	}
	if f.data.Scopes == nil {
		f.data.Scopes = map[string]map[string]SectionState{}
	}
	return f, nil
}

func (f *FileStore) Get(scope, section string) (SectionState, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	st, ok := f.data.Scopes[scope][section]
	return st, ok, nil
}

// Set stores state and writes the file before updating memory.
func (f *FileStore) Set(scope, section string, state SectionState) error {
	if _, err := ParseSectionState(string(state)); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	next := fileData{Scopes: make(map[string]map[string]SectionState, len(f.data.Scopes)+1)}
	for k, v := range f.data.Scopes {
		next.Scopes[k] = v
	}
	sc := copyScope(f.data.Scopes[scope])
	sc[section] = state
	next.Scopes[scope] = sc

	if err := f.writeAtomic(next); err != nil {
		return err
	}
	f.data = next
	return nil
}

func (f *FileStore) All(scope string) (map[string]SectionState, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return copyScope(f.data.Scopes[scope]), nil
}

func (f *FileStore) Close() error { return nil }

// writeAtomic writes to a temp file then renames it over filePath.
// Caller must hold f.mu.
func (f *FileStore) writeAtomic(data fileData) error {
	dir := filepath.Dir(f.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp := f.filePath + ".tmp"
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, f.filePath)
}
