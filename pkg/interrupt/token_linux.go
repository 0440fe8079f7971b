// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interrupt

import "golang.org/x/sys/unix"

// On Linux the token is an eventfd: a single descriptor, readable while
// its counter is non-zero, reset by reading it.
func newTokenFDs() (r, w int, err error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return 0, 0, err
	}
	return fd, fd, nil
}

func signalTokenFD(fd int) {
	// Any non-zero 8-byte counter increment makes the eventfd readable;
	// the exact value is irrelevant to the waiter.
	var one [8]byte
	one[0] = 1
	_, _ = unix.Write(fd, one[:])
}

func closeTokenFDs(r, _ int) error {
	return unix.Close(r)
}
