//go:build linux

package cli

import "golang.org/x/sys/unix"

// Echo control ioctls for Linux.
const (
	ioctlGetTermios = unix.TCGETS
	ioctlSetTermios = unix.TCSETS
)
