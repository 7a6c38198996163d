//go:build !linux && !darwin

package fsrow

import (
	"os"
	"time"

	"github.com/alexandershov/lsql/internal/errs"
)

// Fallback for platforms without a syscall.Stat_t this package knows how
// to read (e.g. Windows): every raw-stat-derived column degrades to the
// best available os.FileInfo data instead of failing outright, except
// birthtime, which has no FileInfo-level equivalent at all.
func devOf(os.FileInfo) uint64     { return 0 }
func inoOf(os.FileInfo) uint64     { return 0 }
func nlinkOf(os.FileInfo) uint64   { return 0 }
func uidOf(os.FileInfo) uint32     { return 0 }
func gidOf(os.FileInfo) uint32     { return 0 }
func rawModeOf(info os.FileInfo) uint32 { return uint32(info.Mode().Perm()) }
func atimeOf(info os.FileInfo) time.Time { return info.ModTime() }
func ctimeOf(info os.FileInfo) time.Time { return info.ModTime() }

func birthtimeOf(os.FileInfo) (time.Time, error) {
	return time.Time{}, &errs.UnsupportedPlatform{Feature: "birthtime"}
}
