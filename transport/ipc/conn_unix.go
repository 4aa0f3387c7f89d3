//go:build !windows

package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// vendorDirs are the sandboxed locations Flatpak and Snap builds of Discord
// create their socket in, relative to the IPC directory.
var vendorDirs = []string{
	filepath.Join("app", "com.discordapp.Discord"),
	"snap.discord",
}

// ipcDir resolves the directory holding the Discord sockets.
func ipcDir() string {
	for _, key := range []string{"XDG_RUNTIME_DIR", "TMPDIR"} {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
	}
	if tmp := os.TempDir(); tmp != "" {
		return tmp
	}
	return "/tmp"
}

// socketPaths lists the candidate paths for socket index n, the bare path
// first.
func socketPaths(n int) []string {
	name := fmt.Sprintf("discord-ipc-%d", n)
	dir := ipcDir()
	paths := []string{filepath.Join(dir, name)}
	for _, vendor := range vendorDirs {
		paths = append(paths, filepath.Join(dir, vendor, name))
	}
	return paths
}

// DefaultDir returns the directory Dial searches for sockets.
func DefaultDir() string {
	return ipcDir()
}

func dialStream(path string) (Stream, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return net.DialTimeout("unix", path, ReadWriteTimeout)
}

func isWouldBlockErrno(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

func isPlatformTimeout(err error) bool {
	return errors.Is(err, unix.ETIMEDOUT)
}
