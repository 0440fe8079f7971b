// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build aix || darwin || dragonfly || freebsd || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd netbsd openbsd solaris

package interrupt

import "golang.org/x/sys/unix"

// Without eventfd the token is a non-blocking pipe pair: the write side
// is signalled with a single byte, the read side is drained to reset.
func newTokenFDs() (r, w int, err error) {
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return 0, 0, err
	}
	for _, fd := range p {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(p[0])
			unix.Close(p[1])
			return 0, 0, err
		}
	}
	return p[0], p[1], nil
}

func signalTokenFD(fd int) {
	one := [1]byte{1}
	_, _ = unix.Write(fd, one[:])
}

func closeTokenFDs(r, w int) error {
	err := unix.Close(r)
	if cerr := unix.Close(w); err == nil {
		err = cerr
	}
	return err
}
