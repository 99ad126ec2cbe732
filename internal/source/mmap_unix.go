//go:build unix

package source

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile maps path read-only and returns its bytes plus an unmap closer.
// ok is false when the file is empty or mapping otherwise fails, in which
// case the caller falls back to a buffered read.
func mmapFile(path string) (data []byte, closer func() error, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return nil, nil, false
	}

	mapped, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, false
	}
	_ = unix.Madvise(mapped, unix.MADV_SEQUENTIAL)

	return mapped, func() error { return unix.Munmap(mapped) }, true
}
