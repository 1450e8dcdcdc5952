package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket    = []byte("config")    // Schema version, timestamps
	SnapshotsBucket = []byte("snapshots") // One nested bucket per env file
	BlobsBucket     = []byte("blobs")     // File contents by digest
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
)

var (
	ErrNoHistory        = errors.New("no history for file")
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

const (
	DBPerm        = 0600 // Journal file: owner rw only
	DirPerm       = 0700 // Journal directory: owner rwx only
	schemaVersion = "1"
	openTimeout   = time.Second
)

// History is the BBolt-backed snapshot journal
type History struct {
	db *bolt.DB
}

// Open opens or creates the journal at path, creating parent directories
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := bolt.Open(path, DBPerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the database
func (h *History) Close() error {
	return h.db.Close()
}

// Path returns the database file path
func (h *History) Path() string {
	return h.db.Path()
}

// Initialize creates the bucket structure. It is safe to call on an
// already initialized journal.
func (h *History) Initialize() error {
	return h.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, SnapshotsBucket, BlobsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}
		if err := config.Put(ConfigVersion, []byte(schemaVersion)); err != nil {
			return err
		}

		created, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// GetModified retrieves the time of the last journal change
func (h *History) GetModified() (time.Time, error) {
	var modified time.Time
	err := h.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

func touchModified(tx *bolt.Tx) error {
	modified, _ := time.Now().MarshalBinary()
	return tx.Bucket(ConfigBucket).Put(ConfigModified, modified)
}

// Record stores data as the newest snapshot of snap.File and assigns its
// sequence number
func (h *History) Record(snap *Snapshot) error {
	return h.db.Update(func(tx *bolt.Tx) error {
		blobs := tx.Bucket(BlobsBucket)
		if len(snap.Data) > 0 && blobs.Get([]byte(snap.Digest)) == nil {
			if err := blobs.Put([]byte(snap.Digest), snap.Data); err != nil {
				return fmt.Errorf("failed to store snapshot data: %w", err)
			}
		}

		file, err := tx.Bucket(SnapshotsBucket).CreateBucketIfNotExists([]byte(snap.File))
		if err != nil {
			return fmt.Errorf("failed to create snapshot bucket: %w", err)
		}
		seq, err := file.NextSequence()
		if err != nil {
			return err
		}
		snap.Seq = seq

		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		if err := file.Put(encodeSeq(seq), data); err != nil {
			return err
		}
		return touchModified(tx)
	})
}

// List returns the snapshots of file, newest first, without data
func (h *History) List(file string) ([]Snapshot, error) {
	var snaps []Snapshot
	err := h.db.View(func(tx *bolt.Tx) error {
		bucket := fileBucket(tx, file)
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return fmt.Errorf("corrupt snapshot %d: %w", decodeSeq(k), err)
			}
			snaps = append(snaps, snap)
		}
		return nil
	})
	return snaps, err
}

// Get returns one snapshot of file including its data
func (h *History) Get(file string, seq uint64) (*Snapshot, error) {
	var snap *Snapshot
	err := h.db.View(func(tx *bolt.Tx) error {
		bucket := fileBucket(tx, file)
		if bucket == nil {
			return fmt.Errorf("%w: %s", ErrNoHistory, file)
		}
		v := bucket.Get(encodeSeq(seq))
		if v == nil {
			return fmt.Errorf("%w: %d", ErrSnapshotNotFound, seq)
		}
		var err error
		snap, err = loadSnapshot(tx, v)
		return err
	})
	return snap, err
}

// Latest returns the newest snapshot of file including its data
func (h *History) Latest(file string) (*Snapshot, error) {
	var snap *Snapshot
	err := h.db.View(func(tx *bolt.Tx) error {
		bucket := fileBucket(tx, file)
		if bucket == nil {
			return fmt.Errorf("%w: %s", ErrNoHistory, file)
		}
		_, v := bucket.Cursor().Last()
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNoHistory, file)
		}
		var err error
		snap, err = loadSnapshot(tx, v)
		return err
	})
	return snap, err
}

func loadSnapshot(tx *bolt.Tx, v []byte) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := json.Unmarshal(v, snap); err != nil {
		return nil, fmt.Errorf("corrupt snapshot: %w", err)
	}
	if snap.Size == 0 {
		snap.Data = []byte{}
		return snap, nil
	}
	data := tx.Bucket(BlobsBucket).Get([]byte(snap.Digest))
	if data == nil {
		return nil, fmt.Errorf("snapshot %d: data %s missing", snap.Seq, snap.Digest)
	}
	// Make a copy since the slice is only valid during the transaction
	snap.Data = append([]byte(nil), data...)
	return snap, nil
}

// Drop removes one snapshot of file
func (h *History) Drop(file string, seq uint64) error {
	return h.db.Update(func(tx *bolt.Tx) error {
		bucket := fileBucket(tx, file)
		if bucket == nil || bucket.Get(encodeSeq(seq)) == nil {
			return fmt.Errorf("%w: %d", ErrSnapshotNotFound, seq)
		}
		if err := bucket.Delete(encodeSeq(seq)); err != nil {
			return err
		}
		if err := collectBlobs(tx); err != nil {
			return err
		}
		return touchModified(tx)
	})
}

// Prune keeps the newest keep snapshots of file and removes the rest.
// It returns the number of removed snapshots.
func (h *History) Prune(file string, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	removed := 0
	err := h.db.Update(func(tx *bolt.Tx) error {
		bucket := fileBucket(tx, file)
		if bucket == nil {
			return nil
		}

		var keys [][]byte
		c := bucket.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		if len(keys) <= keep {
			return nil
		}

		for _, k := range keys[:len(keys)-keep] {
			if err := bucket.Delete(k); err != nil {
				return err
			}
			removed++
		}
		if err := collectBlobs(tx); err != nil {
			return err
		}
		return touchModified(tx)
	})
	return removed, err
}

// Files returns every file path that has a snapshot bucket
func (h *History) Files() ([]string, error) {
	var files []string
	err := h.db.View(func(tx *bolt.Tx) error {
		snapshots := tx.Bucket(SnapshotsBucket)
		if snapshots == nil {
			return nil
		}
		return snapshots.ForEach(func(k, v []byte) error {
			if v == nil {
				files = append(files, string(k))
			}
			return nil
		})
	})
	return files, err
}

func fileBucket(tx *bolt.Tx, file string) *bolt.Bucket {
	snapshots := tx.Bucket(SnapshotsBucket)
	if snapshots == nil {
		return nil
	}
	return snapshots.Bucket([]byte(file))
}

// collectBlobs deletes blobs no snapshot refers to anymore
func collectBlobs(tx *bolt.Tx) error {
	live := make(map[string]bool)
	err := tx.Bucket(SnapshotsBucket).ForEach(func(name, v []byte) error {
		if v != nil {
			return nil
		}
		return tx.Bucket(SnapshotsBucket).Bucket(name).ForEach(func(_, rec []byte) error {
			var snap Snapshot
			if err := json.Unmarshal(rec, &snap); err != nil {
				return err
			}
			live[snap.Digest] = true
			return nil
		})
	})
	if err != nil {
		return err
	}

	var dead [][]byte
	blobs := tx.Bucket(BlobsBucket)
	err = blobs.ForEach(func(k, _ []byte) error {
		if !live[string(k)] {
			dead = append(dead, append([]byte(nil), k...))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range dead {
		if err := blobs.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after pruning to reclaim disk space.
func (h *History) Compact() error {
	srcPath := h.db.Path()
	tmpPath := srcPath + ".compact"

	// Create new database
	dst, err := bolt.Open(tmpPath, DBPerm, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets, nested ones included
	err = h.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return copyBucket(srcBucket, dstBucket)
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := h.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	// Reopen database
	h.db, err = bolt.Open(srcPath, DBPerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}

// copyBucket copies keys and nested buckets, keeping sequence counters so
// snapshot numbers keep increasing after compaction
func copyBucket(src, dst *bolt.Bucket) error {
	if err := dst.SetSequence(src.Sequence()); err != nil {
		return err
	}
	return src.ForEach(func(k, v []byte) error {
		if v != nil {
			return dst.Put(k, v)
		}
		child, err := dst.CreateBucketIfNotExists(k)
		if err != nil {
			return err
		}
		return copyBucket(src.Bucket(k), child)
	})
}
