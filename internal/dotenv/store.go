package dotenv

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"unicode/utf8"
)

const FilePerm = 0600 // Mode for files created by Create

// Entry locates one declaration inside the buffer
type Entry struct {
	Key        string
	LineStart  int
	ValueStart int
	ValueEnd   int
}

// Store owns an env file's bytes, its key index and the open file handle
type Store struct {
	path  string
	file  *os.File
	buf   []byte
	index map[string]*Entry
	log   *slog.Logger
}

// Open opens an existing file for reading and writing and indexes it
func Open(path string) (*Store, error) {
	return open(path, os.O_RDWR)
}

// Create is like Open but creates the file if it does not exist
func Create(path string) (*Store, error) {
	return open(path, os.O_RDWR|os.O_CREATE)
}

func open(path string, flag int) (*Store, error) {
	file, err := os.OpenFile(path, flag, FilePerm)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}

	buf, err := io.ReadAll(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
	}

	s := Load(buf)
	s.path = path
	s.file = file
	s.log.Debug("loaded env file", "path", path, "bytes", len(buf), "keys", len(s.index))
	return s, nil
}

// Load indexes data without a backing file. The Store takes ownership of
// data; its mutations are never persisted.
func Load(data []byte) *Store {
	s := &Store{
		buf: data,
		log: slog.Default(),
	}
	s.reindex()
	return s
}

// Close releases the backing file, if any
func (s *Store) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, s.path, err)
	}
	return nil
}

// SetLogger replaces the logger used for debug output
func (s *Store) SetLogger(log *slog.Logger) {
	s.log = log
}

// Path returns the backing file path, empty for detached stores
func (s *Store) Path() string {
	return s.path
}

// Len returns the buffer length
func (s *Store) Len() int {
	return len(s.buf)
}

// Bytes returns a copy of the buffer
func (s *Store) Bytes() []byte {
	return append([]byte(nil), s.buf...)
}

func (s *Store) reindex() {
	s.index = make(map[string]*Entry)
	for _, line := range Lines(s.buf) {
		if line.Kind != Declaration {
			continue
		}
		// Later declarations of the same key win
		entry := line.Entry()
		s.index[line.Key] = &entry
	}
}

// Lookup returns the entry for key
func (s *Store) Lookup(key string) (Entry, bool) {
	e, ok := s.index[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns all indexed entries in file order
func (s *Store) Entries() []Entry {
	entries := make([]Entry, 0, len(s.index))
	for _, e := range s.index {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LineStart < entries[j].LineStart
	})
	return entries
}

// Value returns the raw value bytes of an entry
func (s *Store) Value(e Entry) []byte {
	return s.buf[e.ValueStart:e.ValueEnd]
}

// Get returns the value of key as a string
func (s *Store) Get(key string) (string, error) {
	e, ok := s.index[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	value := s.buf[e.ValueStart:e.ValueEnd]
	if !utf8.Valid(value) {
		return "", fmt.Errorf("%w: %s", ErrInvalidEncoding, key)
	}
	return string(value), nil
}

// Disabled reports whether key's line starts with '#'
func (s *Store) Disabled(key string) (bool, error) {
	e, ok := s.index[key]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return s.buf[e.LineStart] == '#', nil
}

// Save writes the buffer over the backing file from offset 0 and
// truncates the file to the buffer length. Detached stores skip it.
func (s *Store) Save() error {
	if s.file == nil {
		return nil
	}
	if _, err := s.file.WriteAt(s.buf, 0); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, s.path, err)
	}
	if err := s.file.Truncate(int64(len(s.buf))); err != nil {
		return fmt.Errorf("%w: truncate %s: %w", ErrIO, s.path, err)
	}
	s.log.Debug("persisted env file", "path", s.path, "bytes", len(s.buf))
	return nil
}
