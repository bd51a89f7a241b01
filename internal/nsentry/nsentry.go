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

// Package nsentry implements the namespace entrant: given a running
// pod leader's pid, it joins that pod's namespaces, chroots into its
// root, and hands off to the in-pod diagnostic exec helper.
package nsentry

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"
)

// nsOrder is the fixed join order spec.md §4.B mandates. PID must be
// entered before MNT doesn't actually matter for correctness here (the
// kernel enforces a partial order on its own for some combinations),
// but this is the order the reference performs it in and there is no
// reason to deviate.
var nsOrder = []string{"ipc", "uts", "net", "pid", "mnt"}

// diagexecPath is the fixed in-pod entry binary spec.md §6 names.
const diagexecPath = "/diagexec"

// Options describes one entrant invocation: `enter <pid> <imageid> <cmd> [args...]`.
type Options struct {
	Pid     int
	ImageID string
	Cmd     string
	Args    []string

	// NewUserNamespace is an unwired seam: the reference entrant never
	// creates a user namespace (the container manager it targets
	// doesn't either). A future redesign that does must add USER to
	// nsOrder *and* revisit the diagexec privilege-drop order (diagexec
	// calls setresgid before setresuid, an order chosen for the initial
	// namespace, not for a new namespace's uid/gid maps). No flag sets
	// this true.
	NewUserNamespace bool
}

// Run performs the full namespace-entry sequence: open the pod root,
// join each namespace in order, chroot, fork, and exec diagexec in the
// child. The parent waits for the child, transparently propagating
// stop/continue between itself and the child, and either returns the
// child's exit code or terminates itself by the same signal that
// killed the child.
func Run(opts Options) (int, error) {
	rootPath := fmt.Sprintf("/proc/%d/root", opts.Pid)
	rootfd, err := syscall.Open(rootPath, syscall.O_DIRECTORY, 0)
	if err != nil {
		return 0, fmt.Errorf("open %q: %w", rootPath, err)
	}

	for _, ns := range nsOrder {
		if err := joinNamespace(opts.Pid, ns); err != nil {
			syscall.Close(rootfd)
			return 0, err
		}
	}

	if err := syscall.Fchdir(rootfd); err != nil {
		syscall.Close(rootfd)
		return 0, fmt.Errorf("fchdir to pod root: %w", err)
	}
	if err := syscall.Chroot("."); err != nil {
		syscall.Close(rootfd)
		return 0, fmt.Errorf("chroot: %w", err)
	}
	syscall.Close(rootfd)

	stage2Rootfs := filepath.Join("/opt/stage2", opts.ImageID, "rootfs")
	envFile := filepath.Join("/rkt/env", opts.ImageID)

	argv := append([]string{diagexecPath, stage2Rootfs, "/", envFile, "0", "0", opts.Cmd}, opts.Args...)

	pid, err := syscall.ForkExec(diagexecPath, argv, &syscall.ProcAttr{
		Dir:   "/",
		Env:   os.Environ(),
		Files: []uintptr{0, 1, 2},
	})
	if err != nil {
		return 0, fmt.Errorf("fork/exec %q: %w", diagexecPath, err)
	}

	return wait(pid)
}

func joinNamespace(pid int, name string) error {
	path := fmt.Sprintf("/proc/%d/ns/%s", pid, name)
	fd, err := syscall.Open(path, syscall.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer syscall.Close(fd)
	if err := unix.Setns(fd, 0); err != nil {
		return fmt.Errorf("setns %q: %w", path, err)
	}
	return nil
}

// wait implements the parent side of spec.md §4.B step 6: forward
// stop/continue transparently, and on normal exit return the child's
// exit code. On signal death it re-raises the same signal on the
// current process (after restoring default disposition) so whatever is
// waiting on *this* process observes the identical disposition the
// child had; that branch does not return.
func wait(pid int) (int, error) {
	for {
		var ws syscall.WaitStatus
		if _, err := syscall.Wait4(pid, &ws, syscall.WUNTRACED, nil); err != nil {
			if err == syscall.EINTR {
				continue
			}
			return 0, fmt.Errorf("wait4: %w", err)
		}

		switch {
		case ws.Stopped():
			sig := ws.StopSignal()
			syscall.Kill(os.Getpid(), sig)
			syscall.Kill(pid, syscall.SIGCONT)

		case ws.Exited():
			return ws.ExitStatus(), nil

		case ws.Signaled():
			sig := ws.Signal()
			signal.Reset(sig)
			syscall.Kill(os.Getpid(), sig)
			// The signal above is expected to terminate this process
			// before execution reaches here for any signal whose
			// default disposition is terminal. This is a fallback for
			// the unlikely case it wasn't (e.g. a disposition this
			// process's environment has altered).
			os.Exit(128 + int(sig))
		}
	}
}
