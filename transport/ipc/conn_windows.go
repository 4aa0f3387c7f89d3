//go:build windows

package ipc

import (
	"errors"
	"fmt"
	"os"

	"github.com/Microsoft/go-winio"
	"golang.org/x/sys/windows"
)

const pipeNamespace = `\\.\pipe\`

func socketPaths(n int) []string {
	return []string{fmt.Sprintf(`%sdiscord-ipc-%d`, pipeNamespace, n)}
}

// DefaultDir returns the directory Dial searches for sockets.
func DefaultDir() string {
	return os.TempDir()
}

func dialStream(path string) (Stream, error) {
	timeout := ReadWriteTimeout
	return winio.DialPipe(path, &timeout)
}

func isWouldBlockErrno(err error) bool {
	return errors.Is(err, windows.ERROR_IO_PENDING) || errors.Is(err, windows.ERROR_IO_INCOMPLETE)
}

func isPlatformTimeout(err error) bool {
	return errors.Is(err, winio.ErrTimeout) || errors.Is(err, windows.ERROR_SEM_TIMEOUT)
}
