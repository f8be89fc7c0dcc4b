//go:build !linux && !darwin

package reaper

import (
	"os"
	"time"
)

// Platforms without a portable access-time accessor fall back to the
// modification time, which the age check tolerates: the reaper itself only
// ever moves timestamps forward.
func accessTime(fi os.FileInfo) time.Time {
	return fi.ModTime()
}
