package history

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Snapshot describes one recorded pre-edit state of a file
type Snapshot struct {
	Seq    uint64    `json:"seq"`
	File   string    `json:"file"`
	Op     string    `json:"op"`
	Key    string    `json:"key,omitempty"`
	Time   time.Time `json:"time"`
	Size   int       `json:"size"`
	Digest string    `json:"digest"`

	Data []byte `json:"-"` // Only populated by Get and Latest
}

// NewSnapshot creates a snapshot record for data. Seq is assigned on Record.
func NewSnapshot(file, op, key string, data []byte) *Snapshot {
	return &Snapshot{
		File:   file,
		Op:     op,
		Key:    key,
		Time:   time.Now(),
		Size:   len(data),
		Digest: Digest(data),
		Data:   data,
	}
}

// Summary returns a short description such as "set DB_HOST"
func (s *Snapshot) Summary() string {
	if s.Key == "" {
		return s.Op
	}
	return fmt.Sprintf("%s %s", s.Op, s.Key)
}

// Digest returns the hex BLAKE2b-256 digest of data
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FileKey returns the absolute, cleaned form of path used to group snapshots
func FileKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}

func encodeSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func decodeSeq(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
