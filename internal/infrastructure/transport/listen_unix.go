//go:build unix

package transport

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlSocket lets a restarted server rebind while probe sockets from a
// previous run are still in TIME_WAIT
func controlSocket(network, address string, c syscall.RawConn) error {
	var serr error
	err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return serr
}
