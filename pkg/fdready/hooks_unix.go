// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package fdready

import "golang.org/x/sys/unix"

// sysHooks carries the syscall entry points of the wait path so the
// deadline and interruption arithmetic can be tested without a live
// descriptor.
type sysHooks struct {
	poll func(fds []unix.PollFd, timeout int) (int, error)
}

func defaultSysHooks() sysHooks {
	return sysHooks{
		poll: unix.Poll,
	}
}
