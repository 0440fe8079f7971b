// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package fdready

import "golang.org/x/sys/unix"

// kind classifies the descriptor from its stat mode. On the Unixes the
// classification only labels metrics, every kind shares the poll path.
func (w *Waiter) kind(fd int, isSock bool) DescriptorKind {
	if isSock {
		return KindSocket
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return KindGeneric
	}
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFSOCK:
		return KindSocket
	case unix.S_IFIFO:
		return KindPipe
	case unix.S_IFCHR:
		return KindConsole
	case unix.S_IFREG, unix.S_IFBLK:
		return KindDisk
	default:
		return KindGeneric
	}
}
