//go:build linux

package search

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseDontNeed tells the kernel the file's pages will not be reused by this run
func adviseDontNeed(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_DONTNEED)
}
