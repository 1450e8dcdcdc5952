package history

import (
	"errors"
	"path/filepath"
	"testing"
)

func openHistory(t *testing.T) (*History, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "state", "history.db")

	h, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	if err := h.Initialize(); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	return h, dbPath
}

func record(t *testing.T, h *History, file, op, key, data string) *Snapshot {
	t.Helper()
	snap := NewSnapshot(file, op, key, []byte(data))
	if err := h.Record(snap); err != nil {
		t.Fatalf("Failed to record snapshot: %v", err)
	}
	return snap
}

func TestOpenAndInitialize(t *testing.T) {
	h, _ := openHistory(t)

	created, err := h.GetModified()
	if err != nil {
		t.Fatalf("Failed to get modified time: %v", err)
	}

	// Second Initialize is a no-op
	if err := h.Initialize(); err != nil {
		t.Fatalf("Second initialize failed: %v", err)
	}
	modified, err := h.GetModified()
	if err != nil {
		t.Fatalf("Failed to get modified time: %v", err)
	}
	if !modified.Equal(created) {
		t.Errorf("Initialize changed the modified time: %v -> %v", created, modified)
	}

	record(t, h, "/work/.env", "set", "A", "A=1\n")
	modified, err = h.GetModified()
	if err != nil {
		t.Fatalf("Failed to get modified time: %v", err)
	}
	if modified.Before(created) {
		t.Errorf("Record should move the modified time forward: %v -> %v", created, modified)
	}
}

func TestRecordAndList(t *testing.T) {
	h, _ := openHistory(t)
	file := "/work/app/.env"

	first := record(t, h, file, "set", "FOO", "FOO=1\n")
	second := record(t, h, file, "disable", "FOO", "FOO=2\n")
	record(t, h, "/other/.env", "delete", "BAR", "BAR=1\n")

	if first.Seq != 1 || second.Seq != 2 {
		t.Errorf("Sequence mismatch: got %d, %d, want 1, 2", first.Seq, second.Seq)
	}

	snaps, err := h.List(file)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[0].Seq != 2 || snaps[0].Op != "disable" {
		t.Errorf("Newest snapshot mismatch: got %+v", snaps[0])
	}
	if snaps[1].Summary() != "set FOO" {
		t.Errorf("Summary mismatch: got %q", snaps[1].Summary())
	}
	if snaps[0].Data != nil {
		t.Error("List should not load data")
	}

	files, err := h.Files()
	if err != nil {
		t.Fatalf("Failed to list files: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 files, got %v", files)
	}
}

func TestLatestAndGet(t *testing.T) {
	h, _ := openHistory(t)
	file := "/work/.env"

	if _, err := h.Latest(file); !errors.Is(err, ErrNoHistory) {
		t.Errorf("Expected ErrNoHistory, got %v", err)
	}

	record(t, h, file, "set", "A", "A=1\n")
	record(t, h, file, "set", "A", "A=2\n")

	latest, err := h.Latest(file)
	if err != nil {
		t.Fatalf("Failed to get latest: %v", err)
	}
	if string(latest.Data) != "A=2\n" {
		t.Errorf("Data mismatch: got %q", latest.Data)
	}

	snap, err := h.Get(file, 1)
	if err != nil {
		t.Fatalf("Failed to get snapshot: %v", err)
	}
	if string(snap.Data) != "A=1\n" || snap.Digest != Digest([]byte("A=1\n")) {
		t.Errorf("Snapshot mismatch: got %+v", snap)
	}

	if _, err := h.Get(file, 99); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("Expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestDropCollectsBlobs(t *testing.T) {
	h, _ := openHistory(t)
	file := "/work/.env"

	// Identical content shares one blob
	record(t, h, file, "set", "A", "same")
	second := record(t, h, file, "set", "B", "same")

	if err := h.Drop(file, second.Seq); err != nil {
		t.Fatalf("Failed to drop: %v", err)
	}
	latest, err := h.Latest(file)
	if err != nil {
		t.Fatalf("Blob shared with remaining snapshot was lost: %v", err)
	}
	if latest.Seq != 1 || string(latest.Data) != "same" {
		t.Errorf("Latest mismatch: got %+v", latest)
	}

	if err := h.Drop(file, 1); err != nil {
		t.Fatalf("Failed to drop: %v", err)
	}
	if err := h.Drop(file, 1); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("Expected ErrSnapshotNotFound, got %v", err)
	}
	if _, err := h.Latest(file); !errors.Is(err, ErrNoHistory) {
		t.Errorf("Expected ErrNoHistory, got %v", err)
	}
}

func TestPrune(t *testing.T) {
	h, _ := openHistory(t)
	file := "/work/.env"

	for _, v := range []string{"1", "2", "3", "4", "5"} {
		record(t, h, file, "set", "A", "A="+v)
	}

	removed, err := h.Prune(file, 2)
	if err != nil {
		t.Fatalf("Failed to prune: %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected 3 removed, got %d", removed)
	}

	snaps, err := h.List(file)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(snaps) != 2 || snaps[0].Seq != 5 || snaps[1].Seq != 4 {
		t.Errorf("Unexpected snapshots after prune: %+v", snaps)
	}

	removed, err = h.Prune(file, 10)
	if err != nil || removed != 0 {
		t.Errorf("Prune above size: removed %d, err %v", removed, err)
	}
}

func TestCompactKeepsSnapshots(t *testing.T) {
	h, dbPath := openHistory(t)
	file := "/work/.env"

	record(t, h, file, "set", "A", "A=1\n")
	record(t, h, file, "set", "A", "A=2\n")
	if _, err := h.Prune(file, 1); err != nil {
		t.Fatalf("Failed to prune: %v", err)
	}

	if err := h.Compact(); err != nil {
		t.Fatalf("Failed to compact: %v", err)
	}
	if h.Path() != dbPath {
		t.Errorf("Path changed after compaction: %s", h.Path())
	}

	latest, err := h.Latest(file)
	if err != nil {
		t.Fatalf("Failed to get latest after compaction: %v", err)
	}
	if string(latest.Data) != "A=2\n" {
		t.Errorf("Data mismatch after compaction: got %q", latest.Data)
	}

	// Sequence counter survives compaction
	next := record(t, h, file, "set", "A", "A=3\n")
	if next.Seq != 3 {
		t.Errorf("Expected seq 3 after compaction, got %d", next.Seq)
	}
}

func TestPersistence(t *testing.T) {
	h, dbPath := openHistory(t)
	record(t, h, "/work/.env", "set", "A", "A=1\n")
	h.Close()

	h2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer h2.Close()

	latest, err := h2.Latest("/work/.env")
	if err != nil {
		t.Fatalf("Failed to get latest: %v", err)
	}
	if string(latest.Data) != "A=1\n" {
		t.Error("Snapshot not persisted correctly")
	}
}

func TestFileKey(t *testing.T) {
	key, err := FileKey("sub/../.env")
	if err != nil {
		t.Fatalf("FileKey failed: %v", err)
	}
	if !filepath.IsAbs(key) || filepath.Base(key) != ".env" {
		t.Errorf("Unexpected key %q", key)
	}
}

func TestEmptySnapshot(t *testing.T) {
	h, _ := openHistory(t)
	file := "/work/new.env"

	record(t, h, file, "set", "A", "")

	latest, err := h.Latest(file)
	if err != nil {
		t.Fatalf("Failed to get empty snapshot: %v", err)
	}
	if latest.Data == nil || len(latest.Data) != 0 {
		t.Errorf("Expected empty non-nil data, got %q", latest.Data)
	}
}
