package jvm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// exposeArchive copies jar into an anonymous memory file. The returned
// file stays open for the lifetime of the VM, which reads it by path.
func exposeArchive(jar []byte) (*os.File, error) {
	fd, err := unix.MemfdCreate("pte.jar", 0)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}
	f := os.NewFile(uintptr(fd), "pte.jar")
	if _, err := f.Write(jar); err != nil {
		f.Close()
		return nil, fmt.Errorf("write jar to memfd: %w", err)
	}
	return f, nil
}

// archivePath is the path under which the VM finds the memory file.
func archivePath(f *os.File) string {
	return fmt.Sprintf("/proc/%d/fd/%d", os.Getpid(), f.Fd())
}
