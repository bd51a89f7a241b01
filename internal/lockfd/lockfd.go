/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package lockfd resolves and manipulates the pod lock file descriptor
// passed down through the RKT_LOCK_FD environment variable. The lock fd
// is held by the outer orchestrator across the container manager's
// lifetime; nothing in stage1 may close it, only toggle its
// close-on-exec bit.
package lockfd

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// EnvVar is the name of the environment variable carrying the decimal fd.
const EnvVar = "RKT_LOCK_FD"

// Lookup reads EnvVar from the process environment and parses it. It
// returns -1, nil when the variable is unset, matching the preload
// shim's constructor (lock_fd defaults to -1).
func Lookup() (int, error) {
	v, ok := os.LookupEnv(EnvVar)
	if !ok || v == "" {
		return -1, nil
	}
	fd, err := strconv.Atoi(v)
	if err != nil {
		return -1, fmt.Errorf("%s=%q is not a valid fd: %w", EnvVar, v, err)
	}
	return fd, nil
}

// SetCloseOnExec sets or clears FD_CLOEXEC on fd without closing it. It
// is the Go counterpart of what the preload shim's close() interceptor
// does in C (set); stage1ctl's lockfd subcommand uses it to set or clear
// the bit on request.
func SetCloseOnExec(fd int, on bool) error {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	if err != nil {
		return fmt.Errorf("fcntl F_GETFD on fd %d: %w", fd, err)
	}
	if on {
		flags |= unix.FD_CLOEXEC
	} else {
		flags &^= unix.FD_CLOEXEC
	}
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFD, flags); err != nil {
		return fmt.Errorf("fcntl F_SETFD on fd %d: %w", fd, err)
	}
	return nil
}

// IsCloseOnExec reports whether FD_CLOEXEC is currently set on fd, the
// observable left by the preload shim's close() interceptor (spec.md §8
// scenario 5); stage1ctl's lockfd subcommand reports it.
func IsCloseOnExec(fd int) (bool, error) {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	if err != nil {
		return false, fmt.Errorf("fcntl F_GETFD on fd %d: %w", fd, err)
	}
	return flags&unix.FD_CLOEXEC != 0, nil
}
