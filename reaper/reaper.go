// Package reaper prunes stale sibling files after a completed upload.
//
// WebDAV clients in the wild upload in two phases: create a zero-byte file,
// lock it, then PUT the content. The reaper runs after the second PUT and
// removes files in the same directory that nothing has touched for MaxAge,
// leaving the just-written file and any concurrent in-flight upload alone.
package reaper

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DefaultMaxAge is how long a sibling file may go untouched before the
// reaper removes it.
const DefaultMaxAge = 24 * time.Hour

// Reaper deletes stale files from an upload's containing directory.
// The sweep is best effort: the directory is shared across concurrent
// writers and there is no transactional guarantee between listing and
// deleting.
type Reaper struct {
	maxAge time.Duration
	now    func() time.Time
}

// New returns a Reaper with the given maximum sibling age. A non-positive
// maxAge falls back to DefaultMaxAge.
func New(maxAge time.Duration) *Reaper {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Reaper{maxAge: maxAge, now: time.Now}
}

// AfterUpload runs the housekeeping pass for a file just written by a PUT.
//
// A zero-length file is the first phase of a two-phase upload and is left
// alone entirely. For a content-bearing file the access time is reset to
// now first (a noatime mount would otherwise starve the age check), then
// every other regular file in the directory whose last access is older
// than MaxAge is removed. The just-written file is never inspected or
// deleted; deletion by name inequality keeps concurrent uploads from other
// clients safe.
//
// Failures on individual siblings are logged and do not stop the sweep. A
// sibling vanishing between listing and removal counts as already reaped.
func (rp *Reaper) AfterUpload(fullPath string) error {
	info, err := os.Stat(fullPath)
	if err != nil {
		return fmt.Errorf("stat uploaded file: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}

	now := rp.now()
	if err := os.Chtimes(fullPath, now, info.ModTime()); err != nil {
		return fmt.Errorf("touch uploaded file: %w", err)
	}

	dir := filepath.Dir(fullPath)
	keep := filepath.Base(fullPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list upload directory: %w", err)
	}

	cutoff := now.Add(-rp.maxAge)
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == keep {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("reaper: stat sibling", "dir", dir, "name", entry.Name(), "err", err)
			}
			continue
		}
		if !accessTime(fi).Before(cutoff) {
			continue
		}

		stale := filepath.Join(dir, entry.Name())
		if err := os.Remove(stale); err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("reaper: remove stale file", "path", stale, "err", err)
			}
			continue
		}
		slog.Debug("reaper: removed stale file", "path", stale)
	}

	return nil
}
