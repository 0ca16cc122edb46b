// Package archivetest provides in-memory archives for tests.
package archivetest

import (
	"bytes"
	"io/fs"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"
)

// Entry is one file (or directory, when Name ends in "/") inside a test archive.
type Entry struct {
	Name string
	Body []byte
}

// File is a shorthand for a text entry.
func File(name, body string) Entry {
	return Entry{Name: name, Body: []byte(body)}
}

// Dir is a shorthand for a directory entry.
func Dir(name string) Entry {
	return Entry{Name: name}
}

// Zip encodes entries as a zip archive, in order.
func Zip(entries ...Entry) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			panic(err)
		}
		if len(e.Body) > 0 {
			if _, err := w.Write(e.Body); err != nil {
				panic(err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// MockSource implements archive.Source over an in-memory map.
type MockSource struct {
	mu    sync.Mutex
	files map[string][]byte
	reads map[string]int
}

// NewMockSource creates an empty MockSource.
func NewMockSource() *MockSource {
	return &MockSource{
		files: make(map[string][]byte),
		reads: make(map[string]int),
	}
}

// AddFile stores content under name.
func (m *MockSource) AddFile(name string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = content
}

// Reads returns how many times name was read.
func (m *MockSource) Reads(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads[name]
}

// ReadFile returns the stored content or fs.ErrNotExist.
func (m *MockSource) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	m.reads[name]++
	return content, nil
}

// ReadDir lists the files whose parent directory is name.
func (m *MockSource) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []fs.DirEntry
	for filePath := range m.files {
		if path.Dir(filePath) == path.Clean(name) {
			entries = append(entries, mockDirEntry{name: path.Base(filePath)})
		}
	}
	if len(entries) == 0 {
		return nil, fs.ErrNotExist
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

type mockDirEntry struct {
	name string
}

func (e mockDirEntry) Name() string               { return e.name }
func (e mockDirEntry) IsDir() bool                { return false }
func (e mockDirEntry) Type() fs.FileMode          { return 0 }
func (e mockDirEntry) Info() (fs.FileInfo, error) { return mockFileInfo{name: e.name}, nil }

type mockFileInfo struct {
	name string
}

func (i mockFileInfo) Name() string       { return i.name }
func (i mockFileInfo) Size() int64        { return 0 }
func (i mockFileInfo) Mode() fs.FileMode  { return 0 }
func (i mockFileInfo) ModTime() time.Time { return time.Time{} }
func (i mockFileInfo) IsDir() bool        { return false }
func (i mockFileInfo) Sys() interface{}   { return nil }
