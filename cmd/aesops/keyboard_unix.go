//go:build linux || darwin

package main

import "golang.org/x/sys/unix"

// enableCbreak turns off line buffering and echo so single key presses are
// delivered. Output processing stays on so log lines keep their newlines.
func enableCbreak(fd int) (func(), error) {
	oldState, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, err
	}

	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &newState); err != nil {
		return nil, err
	}

	return func() { unix.IoctlSetTermios(fd, ioctlWriteTermios, oldState) }, nil
}
