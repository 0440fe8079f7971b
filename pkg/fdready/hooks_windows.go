// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdready

import (
	"time"

	"golang.org/x/sys/windows"
)

// sysHooks carries the syscall entry points of the wait path so the
// deadline, drain and interruption arithmetic can be tested without a
// live console or pipe.
type sysHooks struct {
	waitMulti   func(handles []windows.Handle, ms uint32) (uint32, error)
	peekConsole func(h windows.Handle) (inputRecord, bool, error)
	readConsole func(h windows.Handle) error
	peekPipe    func(h windows.Handle) (uint32, error)
	wsaPoll     func(fds []wsaPollFd, timeout int32) (int, error)
	fileType    func(h windows.Handle) (uint32, error)
	sleep       func(d time.Duration)
}

func defaultSysHooks() sysHooks {
	return sysHooks{
		waitMulti: func(handles []windows.Handle, ms uint32) (uint32, error) {
			return windows.WaitForMultipleObjects(handles, false, ms)
		},
		peekConsole: peekConsoleInput,
		readConsole: readConsoleInput,
		peekPipe:    peekNamedPipe,
		wsaPoll:     wsaPoll,
		fileType:    windows.GetFileType,
		sleep:       time.Sleep,
	}
}
