//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly && !windows

package term

import "os"

// Without a termios ioctl, fall back to the character device bit.
func isTerminal(fd uintptr) bool {
	stat, err := os.NewFile(fd, "").Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
