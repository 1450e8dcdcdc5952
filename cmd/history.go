package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/envedit/internal/history"
)

const timeFormat = "2006-01-02 15:04:05"

// historyRow is one snapshot with the size of the change that followed it
type historyRow struct {
	Snapshot history.Snapshot
	Change   string // "+N -M"
}

// HistoryList shows the snapshots of the env file, newest first
func HistoryList(_ context.Context, env *Env) {
	var rows []historyRow
	err := withHistory(env, func(h *history.History, file string) error {
		var err error
		rows, err = historyRows(h, file, env.Path)
		return err
	})
	if err != nil {
		HandleError(err)
	}

	if len(rows) == 0 {
		fmt.Printf("No history for %s\n", env.Path)
		return
	}

	fmt.Printf("History of %s:\n", env.Path)
	for _, row := range rows {
		snap := row.Snapshot
		fmt.Printf("  #%-4d %s  %-20s %-9s (%s)\n", snap.Seq, snap.Time.Format(timeFormat), snap.Summary(), row.Change, formatSize(int64(snap.Size)))
	}
}

// historyRows lists the snapshots of file newest first, each with the
// line counts of the change from it to the state that followed it
func historyRows(h *history.History, file, path string) ([]historyRow, error) {
	snaps, err := h.List(file)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}

	after, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	rows := make([]historyRow, 0, len(snaps))
	for _, s := range snaps {
		full, err := h.Get(file, s.Seq)
		if err != nil {
			return nil, err
		}
		rows = append(rows, historyRow{Snapshot: s, Change: changeSummary(full.Data, after)})
		after = full.Data
	}
	return rows, nil
}

// fileHistory summarizes the snapshots of one env file
type fileHistory struct {
	File   string
	Count  int
	Latest history.Snapshot
}

// HistoryListAll shows every env file that has snapshots
func HistoryListAll(_ context.Context, env *Env) {
	var files []fileHistory
	err := withHistory(env, func(h *history.History, _ string) error {
		var err error
		files, err = historyFiles(h)
		return err
	})
	if err != nil {
		HandleError(err)
	}

	if len(files) == 0 {
		fmt.Println("No history recorded")
		return
	}

	fmt.Printf("Files with history (%d):\n", len(files))
	for _, f := range files {
		fmt.Printf("  %s: %d snapshot(s), last %s at %s\n", f.File, f.Count, f.Latest.Summary(), f.Latest.Time.Format(timeFormat))
	}
}

func historyFiles(h *history.History) ([]fileHistory, error) {
	names, err := h.Files()
	if err != nil {
		return nil, err
	}

	var files []fileHistory
	for _, name := range names {
		snaps, err := h.List(name)
		if err != nil {
			return nil, err
		}
		// Pruning can leave an empty bucket behind
		if len(snaps) == 0 {
			continue
		}
		files = append(files, fileHistory{File: name, Count: len(snaps), Latest: snaps[0]})
	}
	return files, nil
}

// HistoryShow prints one snapshot and the change that followed it
func HistoryShow(_ context.Context, env *Env, seq uint64) {
	var (
		snap  *history.Snapshot
		after []byte
	)
	err := withHistory(env, func(h *history.History, file string) error {
		var err error
		if snap, err = h.Get(file, seq); err != nil {
			return err
		}
		after, err = stateAfter(h, file, seq, env.Path)
		return err
	})
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Snapshot #%d\n", snap.Seq)
	fmt.Printf("  Operation: %s\n", snap.Summary())
	fmt.Printf("  Recorded:  %s\n", snap.Time.Format(timeFormat))
	fmt.Printf("  Size:      %s\n", formatSize(int64(snap.Size)))
	fmt.Printf("  Digest:    %s\n", snap.Digest)
	fmt.Println()
	printDiff(env.Path, snap.Data, after)
}

// stateAfter returns the content that followed snapshot seq: the next
// snapshot's content, or the current file for the newest one
func stateAfter(h *history.History, file string, seq uint64, path string) ([]byte, error) {
	snaps, err := h.List(file)
	if err != nil {
		return nil, err
	}

	// List is newest first: the closest newer snapshot precedes seq
	var next uint64
	for _, s := range snaps {
		if s.Seq > seq {
			next = s.Seq
		}
	}
	if next == 0 {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, nil
		}
		return data, err
	}

	snap, err := h.Get(file, next)
	if err != nil {
		return nil, err
	}
	return snap.Data, nil
}

// HistoryPrune keeps the newest keep snapshots of the env file
func HistoryPrune(_ context.Context, env *Env, keep int) {
	var removed int
	err := withHistory(env, func(h *history.History, file string) error {
		var err error
		removed, err = h.Prune(file, keep)
		return err
	})
	if err != nil {
		HandleError(err)
	}
	fmt.Printf("Removed %d snapshot(s), kept at most %d\n", removed, keep)
}

// HistoryCompact compacts the history database to reclaim unused space
func HistoryCompact(_ context.Context, env *Env) {
	var sizeBefore, sizeAfter int64
	err := withHistory(env, func(h *history.History, _ string) error {
		// Get file size before
		info, err := os.Stat(h.Path())
		if err != nil {
			return err
		}
		sizeBefore = info.Size()

		if err := h.Compact(); err != nil {
			return err
		}

		// Get file size after
		info, err = os.Stat(h.Path())
		if err != nil {
			return err
		}
		sizeAfter = info.Size()
		return nil
	})
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
