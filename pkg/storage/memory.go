package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// MemoryFolder keeps files in-process. It counts Open calls per id so tests
// can assert how often content was downloaded.
type MemoryFolder struct {
	mu      sync.Mutex
	order   []string
	files   map[string]memoryFile // key: id
	byName  map[string]string     // name -> id
	opens   map[string]int
	nextID  int
	listErr error
}

type memoryFile struct {
	name        string
	contentType string
	data        []byte
}

// NewMemoryFolder initializes an empty folder.
func NewMemoryFolder() *MemoryFolder {
	return &MemoryFolder{
		files:  make(map[string]memoryFile),
		byName: make(map[string]string),
		opens:  make(map[string]int),
	}
}

// Add stores a file and returns its id. Adding an existing name keeps both
// files, mirroring backends that allow duplicate names.
func (m *MemoryFolder) Add(name, contentType string, data []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addLocked(name, contentType, data)
}

func (m *MemoryFolder) addLocked(name, contentType string, data []byte) string {
	m.nextID++
	id := "mem-" + strconv.Itoa(m.nextID)
	m.files[id] = memoryFile{name: name, contentType: contentType, data: append([]byte(nil), data...)}
	m.byName[name] = id
	m.order = append(m.order, id)
	return id
}

// FailList makes subsequent List calls return err. Pass nil to reset.
func (m *MemoryFolder) FailList(err error) {
	m.mu.Lock()
	m.listErr = err
	m.mu.Unlock()
}

// Opens reports how many times id was opened.
func (m *MemoryFolder) Opens(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens[id]
}

// Content returns the current bytes stored under name.
func (m *MemoryFolder) Content(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), m.files[id].data...), true
}

func (m *MemoryFolder) List(_ context.Context) ([]FileRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]FileRef, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, FileRef{ID: id, Name: m.files[id].name})
		if len(out) == DefaultPageSize {
			break
		}
	}
	return out, nil
}

func (m *MemoryFolder) FindByName(_ context.Context, name string) (FileRef, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byName[name]
	if !ok {
		return FileRef{}, false, nil
	}
	return FileRef{ID: id, Name: name}, true, nil
}

func (m *MemoryFolder) Open(_ context.Context, id string) (*Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", id, ErrNotFound)
	}
	m.opens[id]++
	return &Object{
		Body:        io.NopCloser(bytes.NewReader(f.data)),
		ContentType: f.contentType,
		Size:        int64(len(f.data)),
	}, nil
}

func (m *MemoryFolder) Put(_ context.Context, name string, r io.Reader, _ int64, contentType string) (FileRef, bool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return FileRef{}, false, fmt.Errorf("read upload: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byName[name]; ok {
		m.files[id] = memoryFile{name: name, contentType: contentType, data: data}
		return FileRef{ID: id, Name: name}, false, nil
	}
	id := m.addLocked(name, contentType, data)
	return FileRef{ID: id, Name: name}, true, nil
}

// Unavailable is a Folder whose every call fails with Err. It stands in for
// a backend that could not be constructed at startup.
type Unavailable struct {
	Err error
}

func (u Unavailable) List(context.Context) ([]FileRef, error) { return nil, u.Err }

func (u Unavailable) FindByName(context.Context, string) (FileRef, bool, error) {
	return FileRef{}, false, u.Err
}

func (u Unavailable) Open(context.Context, string) (*Object, error) { return nil, u.Err }

func (u Unavailable) Put(context.Context, string, io.Reader, int64, string) (FileRef, bool, error) {
	return FileRef{}, false, u.Err
}
